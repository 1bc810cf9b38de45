package tileterm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewLayerStack(t *testing.T) {
	s := NewLayerStack(12)
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", s.Depth())
	}
	if s.Size() != 12 {
		t.Errorf("Size() = %d, want 12", s.Size())
	}
	l := s.Layer(0)
	if l == nil || l.Len() != 12 {
		t.Fatalf("Layer(0) = %v, want 12 cells", l)
	}
	for i := 0; i < l.Len(); i++ {
		if l.Cell(i) != defaultCell {
			t.Fatalf("cell %d = %+v, want default", i, l.Cell(i))
		}
	}
	if defaultCell.Color != Black || !defaultCell.Empty() {
		t.Errorf("default cell = %+v, want empty opaque black", defaultCell)
	}
}

func TestEnsureDepth(t *testing.T) {
	s := NewLayerStack(4)
	if s.EnsureDepth(0) {
		t.Error("EnsureDepth(0) grew a one-layer stack")
	}
	if !s.EnsureDepth(3) {
		t.Error("EnsureDepth(3) did not grow")
	}
	if s.Depth() != 4 {
		t.Errorf("Depth() = %d, want 4", s.Depth())
	}
	if s.EnsureDepth(1) {
		t.Error("EnsureDepth(1) grew a four-layer stack")
	}
	if s.Depth() != 4 {
		t.Errorf("Depth() = %d after lower EnsureDepth, want 4", s.Depth())
	}
	for z := 0; z < 4; z++ {
		if l := s.Layer(z); l == nil || l.Len() != 4 {
			t.Errorf("Layer(%d) = %v, want 4 cells", z, l)
		}
	}
	if s.Layer(4) != nil || s.Layer(-1) != nil {
		t.Error("Layer() out of range should be nil")
	}
}

func TestClearLayer(t *testing.T) {
	s := NewLayerStack(3)
	s.EnsureDepth(1)
	for z := 0; z < 2; z++ {
		for i := 0; i < 3; i++ {
			c := s.cell(z, i)
			c.Code = 9
			c.Color = Red
			c.DX = 0.5
		}
	}

	s.ClearLayer(1)
	s.ClearLayer(7)

	for i := 0; i < 3; i++ {
		if c, _ := s.Cell(0, i); c.Code != 9 {
			t.Errorf("layer 0 cell %d code = %d, want 9", i, c.Code)
		}
		want := Cell{Color: Red, DX: 0.5}
		if c, _ := s.Cell(1, i); c != want {
			t.Errorf("layer 1 cell %d = %+v, want %+v", i, c, want)
		}
	}

	s.ClearAll()
	for i := 0; i < 3; i++ {
		if c, _ := s.Cell(0, i); c.Code != 0 || c.Color != Red {
			t.Errorf("ClearAll cell %d = %+v", i, c)
		}
	}
	if s.Depth() != 2 {
		t.Errorf("Depth() = %d after ClearAll, want 2", s.Depth())
	}
}

func TestStackCellBounds(t *testing.T) {
	s := NewLayerStack(2)
	for _, tc := range []struct{ z, i int }{{-1, 0}, {1, 0}, {0, -1}, {0, 2}} {
		if _, ok := s.Cell(tc.z, tc.i); ok {
			t.Errorf("Cell(%d, %d) ok, want out of range", tc.z, tc.i)
		}
	}
}

func TestSnapshotInto(t *testing.T) {
	s := NewLayerStack(4)
	s.EnsureDepth(2)
	*s.cell(2, 3) = Cell{Color: Blue, DX: 1, DY: -1, Code: 7}

	dst := NewLayerStack(1)
	s.SnapshotInto(dst)

	if dst.Depth() != 3 || dst.Size() != 4 {
		t.Fatalf("snapshot depth %d size %d, want 3 and 4", dst.Depth(), dst.Size())
	}
	for z := 0; z < 3; z++ {
		if diff := cmp.Diff(s.Layer(z).cells, dst.Layer(z).cells); diff != "" {
			t.Errorf("layer %d mismatch (-src +dst):\n%s", z, diff)
		}
	}

	// The snapshot is independent of the source.
	s.cell(2, 3).Code = 8
	if c, _ := dst.Cell(2, 3); c.Code != 7 {
		t.Errorf("snapshot changed with source: code %d", c.Code)
	}

	// Reusing a deeper destination trims it to the source depth.
	small := NewLayerStack(4)
	small.SnapshotInto(dst)
	if dst.Depth() != 1 {
		t.Errorf("reused snapshot depth = %d, want 1", dst.Depth())
	}
}
