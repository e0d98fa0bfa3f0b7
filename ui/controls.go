package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/psiscout/components"
	"github.com/pthm-cable/psiscout/renderer/palette"
)

// MaxStepsPerFrame bounds the steps slider.
const MaxStepsPerFrame = 10

// ControlState is the viewer state the controls edit in place.
type ControlState struct {
	Paused        bool
	StepsPerFrame int
	ViewName      string
	Visibility    palette.Visibility
}

// ControlActions reports one-shot button presses from a frame.
type ControlActions struct {
	Reset    bool
	NextView bool
}

// ControlsPanel is the bottom bar: run buttons, a steps slider and one
// visibility checkbox per scout type.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// ControlsHeight is the height of the bar.
const ControlsHeight = 78

// NewControlsPanel creates a controls bar at (x, y).
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetBounds moves and resizes the bar.
func (c *ControlsPanel) SetBounds(x, y, width int32) {
	c.x, c.y, c.width = x, y, width
}

// Draw renders the bar and applies toggles to st.
func (c *ControlsPanel) Draw(st *ControlState) ControlActions {
	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, ControlsHeight)

	var act ControlActions
	bx := float32(c.x + padding)
	by := float32(c.y + padding)

	pauseLabel := "Pause"
	if st.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: bx, Y: by, Width: 90, Height: 24}, pauseLabel) {
		st.Paused = !st.Paused
	}
	bx += 98
	if gui.Button(rl.Rectangle{X: bx, Y: by, Width: 110, Height: 24}, "Reset Scouts") {
		act.Reset = true
	}
	bx += 118
	if gui.Button(rl.Rectangle{X: bx, Y: by, Width: 150, Height: 24}, "View: "+st.ViewName) {
		act.NextView = true
	}
	bx += 158

	rl.DrawText("Steps", int32(bx), int32(by)+6, r.Theme.FontSize, r.Theme.LabelColor)
	bx += 40
	steps := gui.SliderBar(
		rl.Rectangle{X: bx, Y: by + 4, Width: 120, Height: 16},
		"", fmt.Sprintf("%dx", st.StepsPerFrame),
		float32(st.StepsPerFrame), 1, MaxStepsPerFrame,
	)
	st.StepsPerFrame = max(1, min(MaxStepsPerFrame, int(steps+0.5)))

	// Type toggles, six per row
	types := components.AllScoutTypes()
	colW := float32(c.width-padding*2) / 6
	for i, t := range types {
		col, row := i%6, i/6
		x := float32(c.x+padding) + float32(col)*colW
		y := by + 32 + float32(row)*18
		rl.DrawRectangle(int32(x), int32(y)+1, 10, 10, t.Color())
		st.Visibility[t] = gui.CheckBox(
			rl.Rectangle{X: x + 16, Y: y, Width: 12, Height: 12},
			t.String(), st.Visibility[t],
		)
	}

	return act
}
