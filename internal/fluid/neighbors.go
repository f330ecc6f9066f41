package fluid

import "math"

// NeighborSolver builds the grid and the contact list in a single sweep.
//
// Particles are visited in index order. Each one first queries the cells
// around it as they are populated so far, then inserts itself into its own
// cell. A pair {i, j} with j < i is therefore found exactly once, when i is
// visited and j is already resident. Swapping query and insert breaks that.
type NeighborSolver struct {
	diameter  float64
	diameter2 float64
}

func NewNeighborSolver(diameter float64) *NeighborSolver {
	return &NeighborSolver{diameter: diameter, diameter2: diameter * diameter}
}

func (n *NeighborSolver) FindContacts(ps *ParticleStore, grid *SpatialGrid, pool *ContactPool) {
	pool.Reset()
	lastCol, lastRow := grid.Cols()-1, grid.Rows()-1

	for i := 0; i < ps.Len(); i++ {
		gx, gy := grid.CellCoord(ps.PosX[i], ps.PosY[i], n.diameter)

		minx := gx != 0
		miny := gy != 0
		maxx := gx != lastCol
		maxy := gy != lastRow

		if minx {
			n.scan(ps, pool, i, grid.CellAt(gx-1, gy))
		}
		if maxx {
			n.scan(ps, pool, i, grid.CellAt(gx+1, gy))
		}
		if miny {
			n.scan(ps, pool, i, grid.CellAt(gx, gy-1))
		}
		if maxy {
			n.scan(ps, pool, i, grid.CellAt(gx, gy+1))
		}
		if minx && miny {
			n.scan(ps, pool, i, grid.CellAt(gx-1, gy-1))
		}
		if minx && maxy {
			n.scan(ps, pool, i, grid.CellAt(gx-1, gy+1))
		}
		if maxx && miny {
			n.scan(ps, pool, i, grid.CellAt(gx+1, gy-1))
		}
		if maxx && maxy {
			n.scan(ps, pool, i, grid.CellAt(gx+1, gy+1))
		}
		n.scan(ps, pool, i, grid.CellAt(gx, gy))

		grid.Insert(gx, gy, i)
	}
}

func (n *NeighborSolver) scan(ps *ParticleStore, pool *ContactPool, i int, c *Cell) {
	xi, yi := ps.PosX[i], ps.PosY[i]
	for _, j := range c.Indices() {
		dx := xi - ps.PosX[j]
		dy := yi - ps.PosY[j]
		distSq := dx*dx + dy*dy
		if !(distSq < n.diameter2) { // also rejects NaN
			continue
		}
		dist := math.Sqrt(distSq)
		nx, ny := 1.0, 0.0 // coincident particles separate along +x
		if dist > 0 {
			nx, ny = dx/dist, dy/dist
		}
		pool.Add(ps, i, j, dist, nx, ny)
	}
}
