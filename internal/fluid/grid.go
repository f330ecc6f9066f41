package fluid

// Cell is one grid bucket: particle indices inserted this tick, in index
// order, up to a fixed capacity.
type Cell struct {
	Particles []int
	Count     int
}

// Indices returns the resident particle indices.
func (c *Cell) Indices() []int { return c.Particles[:c.Count] }

// SpatialGrid is a uniform grid of fixed-capacity buckets stored in one flat
// slice. Inserts into a full bucket are dropped and counted.
type SpatialGrid struct {
	cols, rows int
	bucketCap  int
	cells      []Cell
	dropped    uint64
}

func NewSpatialGrid(cols, rows, bucketCap int) *SpatialGrid {
	g := &SpatialGrid{bucketCap: bucketCap}
	g.Reshape(cols, rows)
	return g
}

// Reshape resizes the grid and empties every bucket. Bucket storage is
// reallocated only when the cell count changes; the drop counter is kept.
func (g *SpatialGrid) Reshape(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	g.cols, g.rows = cols, rows
	n := cols * rows
	if len(g.cells) != n {
		g.cells = make([]Cell, n)
		// one backing array for every bucket
		backing := make([]int, n*g.bucketCap)
		for i := range g.cells {
			lo, hi := i*g.bucketCap, (i+1)*g.bucketCap
			g.cells[i].Particles = backing[lo:hi:hi]
		}
	}
	g.Clear()
}

// GridDims returns the grid size for a viewport, never smaller than 1x1.
func GridDims(width, height, cellSize float64) (int, int) {
	cols, rows := int(width/cellSize), int(height/cellSize)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func (g *SpatialGrid) Cols() int { return g.cols }
func (g *SpatialGrid) Rows() int { return g.rows }

// Dropped counts inserts rejected by full buckets since creation.
func (g *SpatialGrid) Dropped() uint64 { return g.dropped }

func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].Count = 0
	}
}

func (g *SpatialGrid) CellAt(col, row int) *Cell {
	return &g.cells[row*g.cols+col]
}

// CellCoord maps a position to its cell, clamping strays into the grid.
func (g *SpatialGrid) CellCoord(x, y, cellSize float64) (int, int) {
	col, row := int(x/cellSize), int(y/cellSize)
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// Insert appends particle i to the bucket at (col, row). It reports false
// when the bucket is already full.
func (g *SpatialGrid) Insert(col, row, i int) bool {
	c := g.CellAt(col, row)
	if c.Count >= g.bucketCap {
		g.dropped++
		return false
	}
	c.Particles[c.Count] = i
	c.Count++
	return true
}
