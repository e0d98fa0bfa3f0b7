package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNewFitsField(t *testing.T) {
	// 512x256 panel at (10, 20) showing a 256x256 field
	cam := New(10, 20, 512, 256, 256, 256)

	if cam.X != 128 || cam.Y != 128 {
		t.Errorf("expected center (128, 128), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1 || cam.MinZoom != 1 {
		t.Errorf("expected fit zoom 1, got zoom %f min %f", cam.Zoom, cam.MinZoom)
	}

	// Field origin lands in the middle of the wide panel
	sx, sy := cam.WorldToScreen(0, 0)
	if !near(sx, 10+128) || !near(sy, 20) {
		t.Errorf("field origin at (%f, %f), want (138, 20)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(100, 50, 400, 400, 200, 200)
	cam.SetZoom(4)
	cam.Pan(37, -12)

	for _, tc := range []struct{ sx, sy float32 }{
		{300, 250},
		{101, 51},
		{499, 449},
	} {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)", tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClampsToField(t *testing.T) {
	cam := New(0, 0, 256, 256, 256, 256)

	// Fully zoomed out: panning does nothing
	cam.Pan(1000, 1000)
	if cam.X != 128 || cam.Y != 128 {
		t.Errorf("pan at fit zoom moved center to (%f, %f)", cam.X, cam.Y)
	}

	cam.SetZoom(4) // 64x64 cells visible
	cam.Pan(10000, -10000)
	if !near(cam.X, 256-32) || !near(cam.Y, 32) {
		t.Errorf("pan past the edge left center at (%f, %f), want (224, 32)", cam.X, cam.Y)
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if !near(minX, 192) || !near(maxX, 256) || !near(minY, 0) || !near(maxY, 64) {
		t.Errorf("visible bounds = (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestZoomClamping(t *testing.T) {
	cam := New(0, 0, 256, 256, 128, 128)

	cam.SetZoom(0.01)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("zoom %f below min %f", cam.Zoom, cam.MinZoom)
	}
	cam.SetZoom(1000)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("zoom %f above max %f", cam.Zoom, cam.MaxZoom)
	}

	cam.Reset()
	if cam.Zoom != cam.MinZoom || cam.X != 64 || cam.Y != 64 {
		t.Errorf("Reset left zoom %f center (%f, %f)", cam.Zoom, cam.X, cam.Y)
	}
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	cam := New(0, 0, 256, 256, 256, 256)
	const sx, sy = 100, 60

	wx, wy := cam.ScreenToWorld(sx, sy)
	cam.ZoomAt(sx, sy, 2)
	nx, ny := cam.ScreenToWorld(sx, sy)
	if !near(wx, nx) || !near(wy, ny) {
		t.Errorf("point under cursor moved from (%f,%f) to (%f,%f)", wx, wy, nx, ny)
	}
}

func TestContainsAndVisibility(t *testing.T) {
	cam := New(50, 50, 100, 100, 100, 100)

	if !cam.Contains(50, 50) || cam.Contains(150, 100) || cam.Contains(49, 60) {
		t.Error("Contains disagrees with panel rectangle")
	}

	cam.SetZoom(4) // 25x25 cells around (50, 50)
	if !cam.IsVisible(50, 50, 0) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(10, 10, 1) {
		t.Error("far corner should be culled")
	}
	if !cam.IsVisible(36, 50, 2) {
		t.Error("circle overlapping the edge should be visible")
	}
}

func TestFollow(t *testing.T) {
	a := New(0, 0, 256, 256, 256, 256)
	b := New(300, 0, 256, 256, 256, 256)

	a.ZoomAt(40, 40, 4)
	b.Follow(a)
	if b.X != a.X || b.Y != a.Y || b.Zoom != a.Zoom {
		t.Errorf("follower at (%f,%f) zoom %f, leader at (%f,%f) zoom %f", b.X, b.Y, b.Zoom, a.X, a.Y, a.Zoom)
	}

	// Leader's view is mapped to the same cells in the follower's panel
	ax, ay := a.ScreenToWorld(128, 128)
	bx, by := b.ScreenToWorld(300+128, 128)
	if !near(ax, bx) || !near(ay, by) {
		t.Errorf("panel centers show (%f,%f) and (%f,%f)", ax, ay, bx, by)
	}
}
