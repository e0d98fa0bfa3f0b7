package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/psiscout/ui"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	// Window resize propagation
	v.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.state.Paused = !v.state.Paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.pending.Reset = true
	}
	if rl.IsKeyPressed(rl.KeyV) {
		v.pending.NextView = true
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyI) {
		v.showInspector = !v.showInspector
	}

	// Steps-per-frame control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.state.StepsPerFrame > 1 {
		v.state.StepsPerFrame--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.state.StepsPerFrame < ui.MaxStepsPerFrame {
		v.state.StepsPerFrame++
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and re-lays out the panels.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW = w
	v.screenH = h
	v.layout()
}

// handleCameraInput processes pan/zoom controls. The panel under the cursor
// leads and the others follow, so all four show the same cells.
func (v *Viewer) handleCameraInput() {
	mouse := rl.GetMousePosition()
	lead := v.panelAt(mouse.X, mouse.Y)
	if lead == nil {
		lead = v.panels[0]
	}
	cam := lead.cam
	moved := false

	// Arrow key panning in screen pixels
	const panSpeed = 8
	if rl.IsKeyDown(rl.KeyRight) {
		cam.Pan(panSpeed, 0)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		cam.Pan(-panSpeed, 0)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyDown) {
		cam.Pan(0, panSpeed)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyUp) {
		cam.Pan(0, -panSpeed)
		moved = true
	}

	// Drag to pan
	if rl.IsMouseButtonDown(rl.MouseButtonRight) || rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		if d.X != 0 || d.Y != 0 {
			cam.Pan(-d.X, -d.Y)
			moved = true
		}
	}

	// Wheel zooms toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 && cam.Contains(mouse.X, mouse.Y) {
		cam.ZoomAt(mouse.X, mouse.Y, 1+wheel*0.1)
		moved = true
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cam.ZoomBy(1.25)
		moved = true
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cam.ZoomBy(0.8)
		moved = true
	}

	// Home key to fit the field
	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
		moved = true
	}

	if moved {
		v.syncCameras(cam)
	}
}
