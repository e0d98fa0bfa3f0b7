package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/psiscout/camera"
	"github.com/pthm-cable/psiscout/renderer/palette"
	"github.com/pthm-cable/psiscout/systems"
)

// DrawScouts draws active scouts of the visible types over a field panel as
// squares centered on their positions.
func DrawScouts(scouts []systems.Scout, vis *palette.Visibility, cam *camera.Camera) {
	for i := range scouts {
		s := &scouts[i]
		if !vis.Shown(s.Type) {
			continue
		}
		c, size, ok := palette.ScoutStyle(s.Type, s.Activation)
		if !ok || !cam.IsVisible(s.X, s.Y, size/2) {
			continue
		}
		sx, sy := cam.WorldToScreen(s.X-size/2, s.Y-size/2)
		side := size * cam.Zoom
		rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: side, Y: side}, c)
	}
}

// DrawPanelFrame outlines a camera panel and labels it.
func DrawPanelFrame(cam *camera.Camera, label string) {
	x, y := int32(cam.ViewportX), int32(cam.ViewportY)
	w, h := int32(cam.ViewportW), int32(cam.ViewportH)
	rl.DrawRectangleLines(x-1, y-1, w+2, h+2, rl.Color{R: 60, G: 70, B: 80, A: 255})
	rl.DrawText(label, x+4, y+4, 14, rl.RayWhite)
}
