package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/psiscout/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Stats         telemetry.TickStats
	StepsPerFrame int
	FPS           int32
	Paused        bool
	Source        string
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// HUDHeight is the height of the header strip.
const HUDHeight = 48

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the header strip across the top of the screen.
func (h *HUD) Draw(data HUDData, screenWidth int32) {
	r := h.renderer
	r.DrawPanel(0, 0, screenWidth, HUDHeight)

	rl.DrawText(data.Title, 10, 6, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("%d scouts | Source: %s", data.Stats.Population, data.Source),
		10, 28, 14, rl.Gray,
	)

	s := data.Stats
	x := int32(360)
	x = drawStat(x, "Active", fmt.Sprintf("%d", s.Active), rl.Green)
	x = drawStat(x, "Clusters", fmt.Sprintf("%d", s.Clusters), rl.Yellow)
	x = drawStat(x, "Field Energy", fmt.Sprintf("%.2f", s.FieldEnergy), rl.Red)
	drawStat(x, "Coherence", fmt.Sprintf("%.3f", s.Coherence), rl.SkyBlue)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", s.Tick, data.StepsPerFrame, data.FPS),
		360, 28, 14, rl.LightGray,
	)

	statusText := "Running"
	statusColor := rl.Green
	if data.Paused {
		statusText = "PAUSED"
		statusColor = rl.Yellow
	}
	w := rl.MeasureText(statusText, 16)
	rl.DrawText(statusText, screenWidth-w-10, 16, 16, statusColor)
}

// drawStat draws "label: value" with a colored value and returns the next x.
func drawStat(x int32, label, value string, color rl.Color) int32 {
	text := label + ": "
	rl.DrawText(text, x, 10, 16, rl.LightGray)
	x += rl.MeasureText(text, 16)
	rl.DrawText(value, x, 10, 16, color)
	return x + rl.MeasureText(value, 16) + 20
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-18, 12, rl.Gray)
}

// PerfPanel renders the per-phase timing breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel, phases in tick order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	phases := telemetry.Phases()
	height := int32(len(phases))*14 + 52
	p.renderer.DrawPanel(p.x, p.y, 260, height)

	x := p.x + 10
	y := p.y + 8

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s | %.0f ticks/s",
		stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 18

	for _, ph := range phases {
		name := ph.String()
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
