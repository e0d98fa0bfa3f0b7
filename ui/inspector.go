package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/psiscout/components"
	"github.com/pthm-cable/psiscout/renderer/palette"
	"github.com/pthm-cable/psiscout/systems"
)

// CellData is what the inspector shows for the cell under the cursor.
type CellData struct {
	Cell systems.Cell

	Scouts   int // Scouts whose position floors to this cell
	Active   int
	Dominant components.ScoutType // Most active type in the cell; valid when Scouts > 0
}

// SummarizeCell counts the scouts standing on cell (x, y).
func SummarizeCell(cell systems.Cell, scouts []systems.Scout, activeThreshold float32) CellData {
	d := CellData{Cell: cell}
	var perType [components.NumScoutTypes]float32
	for i := range scouts {
		s := &scouts[i]
		if int(s.X) != cell.X || int(s.Y) != cell.Y {
			continue
		}
		d.Scouts++
		if s.Activation > activeThreshold {
			d.Active++
		}
		if s.Type.Valid() {
			perType[s.Type] += s.Activation
		}
	}
	best := float32(-1)
	for t, a := range perType {
		if a > best {
			best = a
			d.Dominant = components.ScoutType(t)
		}
	}
	return d
}

var inspectorSections = []SectionDescriptor{
	{
		ID:    "cell",
		Title: "Cell",
		Fields: []FieldDescriptor{
			{ID: "pos", Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
				c := d.(*CellData).Cell
				return fmt.Sprintf("%d, %d", c.X, c.Y)
			}},
			{ID: "lum", Label: "Luminance", Widget: WidgetBar, Range: DefaultRange(),
				Getter: func(d any) float32 { return d.(*CellData).Cell.Luminance }},
			{ID: "color", Label: "Color", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color {
				return palette.Gray(d.(*CellData).Cell.Color)
			}},
		},
	},
	{
		ID:    "features",
		Title: "Features",
		Fields: []FieldDescriptor{
			{ID: "edge", Label: "Edge", Widget: WidgetBar, Range: FieldRange{Max: 1.0 / palette.EdgeGain},
				Getter: func(d any) float32 { return d.(*CellData).Cell.Edge }},
			{ID: "motion", Label: "Motion", Widget: WidgetBar, Range: FieldRange{Max: 1.0 / palette.MotionGain},
				Getter: func(d any) float32 { return d.(*CellData).Cell.Motion }},
			{ID: "texture", Label: "Texture", Widget: WidgetBar, Range: FieldRange{Max: 1.0 / palette.TextureGain},
				Getter: func(d any) float32 { return d.(*CellData).Cell.Texture }},
			{ID: "attractor", Label: "Attractor", Widget: WidgetBar, Range: FieldRange{Max: 1.0 / palette.AttractorGain},
				Getter: func(d any) float32 { return d.(*CellData).Cell.Attractor }},
		},
	},
	{
		ID:    "scouts",
		Title: "Scouts",
		Fields: []FieldDescriptor{
			{ID: "count", Label: "Here", Widget: WidgetText, TextGetter: func(d any) string {
				cd := d.(*CellData)
				return fmt.Sprintf("%d (%d active)", cd.Scouts, cd.Active)
			}},
			{ID: "dominant", Label: "Dominant", Widget: WidgetText,
				Visible:    func(d any) bool { return d.(*CellData).Scouts > 0 },
				TextGetter: func(d any) string { return d.(*CellData).Dominant.String() }},
			{ID: "dominant_color", Label: "Type color", Widget: WidgetColorSwatch,
				Visible:     func(d any) bool { return d.(*CellData).Scouts > 0 },
				ColorGetter: func(d any) rl.Color { return d.(*CellData).Dominant.Color() }},
		},
	},
}

// Inspector renders the cell inspection panel.
type Inspector struct {
	renderer *Renderer
	width    int32
}

// NewInspector creates an inspector panel of the given width.
func NewInspector(width int32) *Inspector {
	return &Inspector{renderer: NewRenderer(), width: width}
}

// Draw renders the panel next to the cursor at (mx, my), kept on screen.
func (ins *Inspector) Draw(data CellData, mx, my, screenW, screenH int32) {
	r := ins.renderer
	padding := r.Theme.Padding

	height := padding * 2
	for _, sd := range inspectorSections {
		height += r.SectionHeight(sd, &data)
	}

	x, y := mx+16, my+16
	if x+ins.width > screenW {
		x = mx - ins.width - 16
	}
	if y+height > screenH {
		y = screenH - height
	}
	x, y = max(0, x), max(0, y)

	r.DrawPanel(x, y, ins.width, height)
	cy := y + padding
	for _, sd := range inspectorSections {
		cy = r.DrawSection(x+padding, cy, sd, &data, ins.width-padding*2)
	}
}
