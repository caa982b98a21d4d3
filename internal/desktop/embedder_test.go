package desktop

import (
	"testing"

	"github.com/weizlogy/desktop-grouping/internal/group"
)

func TestToScreen_AppliesOffset(t *testing.T) {
	g := group.Geometry{Top: 100, Left: 30, Width: 300, Height: 200}
	off := Offset{X: 0, Y: 40}

	got := ToScreen(g, off)
	if got.Top != 140 || got.Left != 30 {
		t.Fatalf("ToScreen = top %v left %v, want 140/30", got.Top, got.Left)
	}
	if got.Width != 300 || got.Height != 200 {
		t.Fatalf("size changed: %vx%v", got.Width, got.Height)
	}
}

func TestToDesktop_InvertsToScreen(t *testing.T) {
	g := group.Geometry{Top: 140, Left: 30, Width: 300, Height: 200}
	off := Offset{X: 0, Y: 40}

	got := ToDesktop(g, off)
	if got.Top != 100 || got.Left != 30 {
		t.Fatalf("ToDesktop = top %v left %v, want 100/30", got.Top, got.Left)
	}
	if back := ToScreen(got, off); back != g {
		t.Fatalf("round trip = %+v, want %+v", back, g)
	}
}

func TestToScreen_UnsetPassesThrough(t *testing.T) {
	g := group.UnsetGeometry()
	off := Offset{X: 15, Y: 40}

	if got := ToScreen(g, off); got != g {
		t.Fatalf("unset geometry changed: %+v", got)
	}
	if got := ToDesktop(g, off); got != g {
		t.Fatalf("unset geometry changed: %+v", got)
	}
}

func TestToScreen_NegativeOffset(t *testing.T) {
	g := group.Geometry{Top: 50, Left: 50, Width: 300, Height: 200}
	off := Offset{X: -1920, Y: 0}

	got := ToScreen(g, off)
	if got.Left != -1870 {
		t.Fatalf("Left = %v, want -1870", got.Left)
	}
}
