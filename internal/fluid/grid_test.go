package fluid

import "testing"

func TestGridDims(t *testing.T) {
	tests := []struct {
		w, h       float64
		cols, rows int
	}{
		{800, 600, 26, 20},
		{95, 61, 3, 2},
		{30, 30, 1, 1},
		{10, 10, 1, 1},
		{29.9, 900, 1, 30},
	}

	for _, tt := range tests {
		cols, rows := GridDims(tt.w, tt.h, 30)
		if cols != tt.cols || rows != tt.rows {
			t.Errorf("GridDims(%v, %v) = %dx%d, want %dx%d", tt.w, tt.h, cols, rows, tt.cols, tt.rows)
		}
	}
}

func TestCellCoordClamps(t *testing.T) {
	g := NewSpatialGrid(4, 3, 10)

	tests := []struct {
		name     string
		x, y     float64
		col, row int
	}{
		{"inside", 45, 75, 1, 2},
		{"origin", 0, 0, 0, 0},
		{"negative", -50, -1, 0, 0},
		{"past right", 500, 10, 3, 0},
		{"past bottom", 10, 500, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row := g.CellCoord(tt.x, tt.y, 30)
			if col != tt.col || row != tt.row {
				t.Errorf("got (%d, %d), want (%d, %d)", col, row, tt.col, tt.row)
			}
		})
	}
}

func TestGridBucketOverflowDrops(t *testing.T) {
	g := NewSpatialGrid(2, 2, 10)

	for i := 0; i < 10; i++ {
		if !g.Insert(1, 1, i) {
			t.Fatalf("insert %d rejected below capacity", i)
		}
	}
	if g.Insert(1, 1, 10) {
		t.Error("expected 11th insert to be rejected")
	}

	c := g.CellAt(1, 1)
	if c.Count != 10 {
		t.Errorf("expected 10 residents, got %d", c.Count)
	}
	for i, idx := range c.Indices() {
		if idx != i {
			t.Errorf("bucket slot %d holds %d", i, idx)
		}
	}
	if g.Dropped() != 1 {
		t.Errorf("expected 1 dropped insert, got %d", g.Dropped())
	}

	// neighbouring buckets share a backing array
	if g.CellAt(0, 1).Count != 0 {
		t.Error("overflow leaked into a neighbouring cell")
	}
}

func TestGridClearAndReshape(t *testing.T) {
	g := NewSpatialGrid(3, 3, 4)
	g.Insert(0, 0, 1)
	g.Insert(2, 2, 2)

	g.Clear()
	if g.CellAt(0, 0).Count != 0 || g.CellAt(2, 2).Count != 0 {
		t.Error("clear left residents behind")
	}

	g.Insert(1, 1, 5)
	g.Reshape(5, 2)
	if g.Cols() != 5 || g.Rows() != 2 {
		t.Errorf("expected 5x2 after reshape, got %dx%d", g.Cols(), g.Rows())
	}
	if g.CellAt(4, 1).Count != 0 {
		t.Error("reshape did not clear buckets")
	}

	g.Reshape(0, -3)
	if g.Cols() != 1 || g.Rows() != 1 {
		t.Errorf("expected 1x1 minimum, got %dx%d", g.Cols(), g.Rows())
	}
}
