// Package palette maps perception field values to display colors. It has no
// graphics dependency so the mappings can be tested headless.
package palette

import (
	"image/color"

	"github.com/pthm-cable/psiscout/components"
	"github.com/pthm-cable/psiscout/systems"
)

// Channel gains for the feature view.
const (
	EdgeGain      = 2
	MotionGain    = 10
	TextureGain   = 5
	AttractorGain = 10
)

// MinVisibleActivation is the activation below which scouts are not drawn.
const MinVisibleActivation = 0.1

// channel scales v into [0, 255].
func channel(v, gain float32) uint8 {
	c := v * 255 * gain
	if c <= 0 {
		return 0
	}
	if c >= 255 {
		return 255
	}
	return uint8(c)
}

// Feature is the combined view: edge in red, motion in green, texture in blue.
func Feature(edge, motion, texture float32) color.RGBA {
	return color.RGBA{
		R: channel(edge, EdgeGain),
		G: channel(motion, MotionGain),
		B: channel(texture, TextureGain),
		A: 255,
	}
}

// Attractor shows attractor intensity as yellow.
func Attractor(v float32) color.RGBA {
	c := channel(v, AttractorGain)
	return color.RGBA{R: c, G: c, B: 0, A: 255}
}

// Gray shows a [0, 1] value as a gray level.
func Gray(v float32) color.RGBA {
	c := channel(v, 1)
	return color.RGBA{R: c, G: c, B: c, A: 255}
}

// FillFeatures writes the feature view of f into dst (len W*H).
func FillFeatures(dst []color.RGBA, f *systems.PerceptionField) {
	for i := range dst {
		dst[i] = Feature(f.Edge[i], f.Motion[i], f.Texture[i])
	}
}

// FillAttractor writes the attractor view of f into dst.
func FillAttractor(dst []color.RGBA, f *systems.PerceptionField) {
	for i := range dst {
		dst[i] = Attractor(f.Attractor[i])
	}
}

// FillGrid writes a single map of f as gray levels into dst.
func FillGrid(dst []color.RGBA, f *systems.PerceptionField, m systems.Map) {
	grid := f.Grid(m)
	for i := range dst {
		dst[i] = Gray(grid[i])
	}
}

// ScoutStyle returns how a scout is drawn: a square whose alpha and side
// length (in cells) scale with activation. ok is false for scouts too quiet
// to draw.
func ScoutStyle(t components.ScoutType, activation float32) (c color.RGBA, size float32, ok bool) {
	if activation < MinVisibleActivation {
		return color.RGBA{}, 0, false
	}
	c = t.Color()
	c.A = uint8(min(1, activation*2) * 255)
	return c, 1 + activation*2, true
}

// Visibility is the per-type draw toggle set.
type Visibility [components.NumScoutTypes]bool

// DefaultVisibility returns the initial toggles for every type.
func DefaultVisibility() Visibility {
	var v Visibility
	for _, t := range components.AllScoutTypes() {
		v[t] = t.DefaultVisible()
	}
	return v
}

// Shown reports whether scouts of type t are drawn.
func (v *Visibility) Shown(t components.ScoutType) bool {
	return t.Valid() && v[t]
}
