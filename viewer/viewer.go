// Package viewer runs the interactive window: four synchronized field
// panels, the HUD, the scout controls and the cell inspector.
package viewer

import (
	"context"
	"fmt"
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/psiscout/camera"
	"github.com/pthm-cable/psiscout/game"
	"github.com/pthm-cable/psiscout/renderer"
	"github.com/pthm-cable/psiscout/renderer/palette"
	"github.com/pthm-cable/psiscout/source"
	"github.com/pthm-cable/psiscout/systems"
	"github.com/pthm-cable/psiscout/ui"
)

const (
	panelGap = 6
	legendH  = 20

	controlsLegend = "[Space] Pause  [R] Reset  [V] View  [,/.] Speed  [Wheel] Zoom  [RMB drag/Arrows] Pan  [Home] Fit  [I] Inspect  [P] Perf"
)

// panelKind selects what a panel paints.
type panelKind int

const (
	panelInput panelKind = iota
	panelFeatures
	panelScouts
	panelAttractor
	numPanels
)

type panel struct {
	kind  panelKind
	layer *renderer.FieldLayer // nil for the scouts panel
	cam   *camera.Camera
}

// Viewer owns all graphics state for one game. Create it after the raylib
// window is open.
type Viewer struct {
	game       *game.Game
	src        source.Source
	sourceName string

	panels [numPanels]*panel
	frame  *image.RGBA

	hud       *ui.HUD
	controls  *ui.ControlsPanel
	perf      *ui.PerfPanel
	inspector *ui.Inspector

	state   ui.ControlState
	pending ui.ControlActions

	showPerf      bool
	showInspector bool
	dirty         bool

	screenW, screenH int32
}

// New creates a viewer for g fed by src.
func New(g *game.Game, src source.Source, sourceName string) *Viewer {
	v := &Viewer{
		game:          g,
		src:           src,
		sourceName:    sourceName,
		hud:           ui.NewHUD(),
		controls:      ui.NewControlsPanel(0, 0, 0),
		perf:          ui.NewPerfPanel(0, 0),
		inspector:     ui.NewInspector(230),
		showInspector: true,
		dirty:         true,
		screenW:       int32(rl.GetScreenWidth()),
		screenH:       int32(rl.GetScreenHeight()),
		state: ui.ControlState{
			StepsPerFrame: 1,
			ViewName:      renderer.ViewFeatures.String(),
			Visibility:    palette.DefaultVisibility(),
		},
	}

	f := g.Field()
	v.panels[panelInput] = &panel{kind: panelInput, layer: renderer.NewFieldLayer(renderer.ViewLuminance)}
	v.panels[panelFeatures] = &panel{kind: panelFeatures, layer: renderer.NewFieldLayer(renderer.ViewFeatures)}
	v.panels[panelScouts] = &panel{kind: panelScouts}
	v.panels[panelAttractor] = &panel{kind: panelAttractor, layer: renderer.NewFieldLayer(renderer.ViewAttractor)}
	for _, p := range v.panels {
		if p.layer != nil {
			p.layer.Init(f.W, f.H)
		}
	}
	v.layout()
	return v
}

// Paused reports whether stepping is suspended.
func (v *Viewer) Paused() bool {
	return v.state.Paused
}

// SetPaused suspends or resumes stepping.
func (v *Viewer) SetPaused(paused bool) {
	v.state.Paused = paused
}

// layout places the panels in a 2x2 grid between the HUD and the controls.
func (v *Viewer) layout() {
	f := v.game.Field()
	top := float32(ui.HUDHeight + panelGap)
	bottom := float32(v.screenH - ui.ControlsHeight - legendH - panelGap)
	pw := (float32(v.screenW) - 3*panelGap) / 2
	ph := (bottom - top - panelGap) / 2

	for i, p := range v.panels {
		col, row := i%2, i/2
		x := panelGap + float32(col)*(pw+panelGap)
		y := top + float32(row)*(ph+panelGap)
		if p.cam == nil {
			p.cam = camera.New(x, y, pw, ph, float32(f.W), float32(f.H))
			continue
		}
		p.cam.Move(x, y)
		p.cam.Resize(pw, ph)
	}
	v.syncCameras(v.panels[0].cam)

	v.controls.SetBounds(0, v.screenH-ui.ControlsHeight-legendH, v.screenW)
	v.perf.SetPosition(v.screenW-270, ui.HUDHeight+panelGap+4)
}

// Update handles input and advances the simulation by the configured number
// of steps unless paused.
func (v *Viewer) Update(ctx context.Context) error {
	v.handleInput()

	if v.pending.Reset {
		v.game.ResetPopulation()
	}
	if v.pending.NextView {
		v.cycleView()
	}
	v.pending = ui.ControlActions{}

	if !v.state.Paused {
		for range v.state.StepsPerFrame {
			frame, err := v.src.Next(ctx)
			if err != nil {
				return fmt.Errorf("next frame: %w", err)
			}
			if err := v.game.Step(frame); err != nil {
				return err
			}
			v.frame = frame
			v.dirty = true
		}
	}

	if v.dirty {
		v.refreshLayers()
		v.dirty = false
	}
	return nil
}

func (v *Viewer) cycleView() {
	l := v.panels[panelFeatures].layer
	l.View = l.View.Next()
	v.state.ViewName = l.View.String()
	v.dirty = true
}

func (v *Viewer) refreshLayers() {
	f := v.game.Field()
	for _, p := range v.panels {
		switch {
		case p.layer == nil:
		case p.kind == panelInput && v.frame != nil:
			p.layer.UpdateImage(v.frame)
		default:
			p.layer.Update(f)
		}
	}
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 10, G: 12, B: 15, A: 255})

	scouts := v.game.Scouts()
	for _, p := range v.panels {
		v.drawPanel(p, scouts)
	}

	stats := v.game.Stats()
	v.hud.Draw(ui.HUDData{
		Title:         "Stigmergic Scout Field",
		Stats:         stats,
		StepsPerFrame: v.state.StepsPerFrame,
		FPS:           rl.GetFPS(),
		Paused:        v.state.Paused,
		Source:        v.sourceName,
	}, v.screenW)

	v.pending = v.controls.Draw(&v.state)
	v.hud.DrawControls(v.screenH, controlsLegend)

	if v.showPerf {
		v.perf.Draw(v.game.PerfStats())
	}
	if v.showInspector {
		v.drawInspector(scouts)
	}

	rl.EndDrawing()
	v.game.RecordFrame()
}

func (v *Viewer) drawPanel(p *panel, scouts []systems.Scout) {
	cam := p.cam
	rl.DrawRectangle(int32(cam.ViewportX), int32(cam.ViewportY), int32(cam.ViewportW), int32(cam.ViewportH), rl.Black)

	rl.BeginScissorMode(int32(cam.ViewportX), int32(cam.ViewportY), int32(cam.ViewportW), int32(cam.ViewportH))
	if p.layer != nil {
		p.layer.Draw(cam)
	}
	if p.kind == panelScouts {
		renderer.DrawScouts(scouts, &v.state.Visibility, cam)
	}
	rl.EndScissorMode()

	renderer.DrawPanelFrame(cam, v.panelLabel(p))
}

func (v *Viewer) panelLabel(p *panel) string {
	switch p.kind {
	case panelInput:
		return "Visual Input"
	case panelFeatures:
		if p.layer.View == renderer.ViewFeatures {
			return "Feature Field  R=Edge G=Motion B=Texture"
		}
		return "Feature Field: " + p.layer.View.String()
	case panelScouts:
		return "Scout Population"
	case panelAttractor:
		return "Attractor Field"
	}
	return ""
}

func (v *Viewer) drawInspector(scouts []systems.Scout) {
	mouse := rl.GetMousePosition()
	p := v.panelAt(mouse.X, mouse.Y)
	if p == nil {
		return
	}
	wx, wy := p.cam.ScreenToWorld(mouse.X, mouse.Y)
	if wx < 0 || wy < 0 {
		return
	}
	cell, ok := v.game.Field().Sample(int(wx), int(wy))
	if !ok {
		return
	}
	threshold := float32(v.game.Config().Telemetry.ActiveThreshold)
	v.inspector.Draw(ui.SummarizeCell(cell, scouts, threshold), int32(mouse.X), int32(mouse.Y), v.screenW, v.screenH)
}

// panelAt returns the panel under the screen point, or nil.
func (v *Viewer) panelAt(sx, sy float32) *panel {
	for _, p := range v.panels {
		if p.cam.Contains(sx, sy) {
			return p
		}
	}
	return nil
}

// syncCameras makes every panel show what leader shows.
func (v *Viewer) syncCameras(leader *camera.Camera) {
	for _, p := range v.panels {
		if p.cam != leader {
			p.cam.Follow(leader)
		}
	}
}

// Unload frees GPU resources.
func (v *Viewer) Unload() {
	for _, p := range v.panels {
		if p.layer != nil {
			p.layer.Unload()
		}
	}
}
