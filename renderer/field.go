package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/psiscout/camera"
	"github.com/pthm-cable/psiscout/renderer/palette"
	"github.com/pthm-cable/psiscout/systems"
)

// View selects what a FieldLayer paints.
type View int

const (
	ViewFeatures  View = iota // Edge/motion/texture composite
	ViewAttractor             // Attractor intensity
	ViewLuminance             // Raw input luminance
	ViewEdge
	ViewMotion
	ViewTexture
	numViews
)

var viewNames = [numViews]string{
	ViewFeatures:  "Features",
	ViewAttractor: "Attractor",
	ViewLuminance: "Luminance",
	ViewEdge:      "Edge",
	ViewMotion:    "Motion",
	ViewTexture:   "Texture",
}

func (v View) String() string {
	if v >= 0 && v < numViews {
		return viewNames[v]
	}
	return "unknown"
}

// Next cycles to the following view.
func (v View) Next() View {
	return (v + 1) % numViews
}

// FieldLayer owns one GPU texture holding a view of the perception field.
// Nearest filtering keeps individual cells visible when zoomed in.
type FieldLayer struct {
	View View

	tex         rl.Texture2D
	pixels      []color.RGBA
	texW, texH  int
	initialized bool
}

// NewFieldLayer creates a layer for the given view.
func NewFieldLayer(view View) *FieldLayer {
	return &FieldLayer{View: view}
}

// Init allocates the texture (must be called after the raylib window is created).
func (l *FieldLayer) Init(gridW, gridH int) {
	if l.initialized {
		return
	}
	l.texW = gridW
	l.texH = gridH
	l.pixels = make([]color.RGBA, gridW*gridH)

	img := rl.GenImageColor(gridW, gridH, rl.Black)
	l.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(l.tex, rl.FilterPoint)
	rl.SetTextureWrap(l.tex, rl.WrapClamp)
	rl.UnloadImage(img)

	l.initialized = true
}

// Update converts the current field state and uploads it.
func (l *FieldLayer) Update(f *systems.PerceptionField) {
	if !l.initialized {
		l.Init(f.W, f.H)
	}
	if f.W != l.texW || f.H != l.texH {
		return
	}

	switch l.View {
	case ViewFeatures:
		palette.FillFeatures(l.pixels, f)
	case ViewAttractor:
		palette.FillAttractor(l.pixels, f)
	case ViewLuminance:
		palette.FillGrid(l.pixels, f, systems.MapLuminance)
	case ViewEdge:
		palette.FillGrid(l.pixels, f, systems.MapEdge)
	case ViewMotion:
		palette.FillGrid(l.pixels, f, systems.MapMotion)
	case ViewTexture:
		palette.FillGrid(l.pixels, f, systems.MapTexture)
	}

	rl.UpdateTexture(l.tex, l.pixels)
}

// UpdateImage uploads a raw input frame, ignoring View. Frames of another
// size are skipped.
func (l *FieldLayer) UpdateImage(img *image.RGBA) {
	b := img.Bounds()
	if !l.initialized {
		l.Init(b.Dx(), b.Dy())
	}
	if b.Dx() != l.texW || b.Dy() != l.texH {
		return
	}
	for y := 0; y < l.texH; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < l.texW; x++ {
			o := x * 4
			l.pixels[y*l.texW+x] = color.RGBA{R: row[o], G: row[o+1], B: row[o+2], A: 255}
		}
	}
	rl.UpdateTexture(l.tex, l.pixels)
}

// Draw paints the visible part of the field into the camera panel.
func (l *FieldLayer) Draw(cam *camera.Camera) {
	if !l.initialized {
		return
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	sx0, sy0 := cam.WorldToScreen(minX, minY)
	sx1, sy1 := cam.WorldToScreen(maxX, maxY)

	src := rl.Rectangle{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	dst := rl.Rectangle{X: sx0, Y: sy0, Width: sx1 - sx0, Height: sy1 - sy0}
	rl.DrawTexturePro(l.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (l *FieldLayer) Unload() {
	if !l.initialized {
		return
	}
	rl.UnloadTexture(l.tex)
	l.initialized = false
}
