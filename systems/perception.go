package systems

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrFrameSize is returned when a frame's dimensions differ from the field's.
	ErrFrameSize = errors.New("frame size does not match field")
	// ErrFieldSize is returned for non-positive field dimensions.
	ErrFieldSize = errors.New("field dimensions must be positive")
)

// Luminance weights (NTSC).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Map names one of the field's grids.
type Map uint8

const (
	MapLuminance Map = iota
	MapEdge
	MapMotion
	MapColor
	MapTexture
	MapAttractor
)

// PerceptionField is the shared retina every scout reads: the current and
// previous luminance frames, the feature maps derived from them, and the
// attractor field aggregated from scout activations.
//
// All grids are row-major W*H. The feature maps are rewritten on interior
// cells only; the one-cell border keeps whatever it last held (zero unless
// written directly).
type PerceptionField struct {
	W, H int

	// Luminance in [0,1]
	Current  []float32
	Previous []float32

	// Feature maps, recomputed from Current/Previous every frame
	Edge    []float32 // Sobel magnitude
	Motion  []float32 // |Current - Previous|
	Color   []float32 // Luminance passthrough
	Texture []float32 // Variance of the 3x3 neighborhood around the center value

	// Attractor field, rebuilt from scouts every tick
	Attractor   []float32
	DepositRate float32

	frames int
	lum    []float32 // conversion scratch
	tmp    []float32 // smoothing scratch
}

// NewPerceptionField creates an all-zero field of w x h cells.
func NewPerceptionField(w, h int) (*PerceptionField, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrFieldSize, w, h)
	}
	n := w * h
	return &PerceptionField{
		W: w, H: h,
		Current:     make([]float32, n),
		Previous:    make([]float32, n),
		Edge:        make([]float32, n),
		Motion:      make([]float32, n),
		Color:       make([]float32, n),
		Texture:     make([]float32, n),
		Attractor:   make([]float32, n),
		DepositRate: 0.1,
		lum:         make([]float32, n),
		tmp:         make([]float32, n),
	}, nil
}

// UpdateFromImage archives Current into Previous, converts frame to
// luminance and recomputes the feature maps. A frame whose bounds are not
// exactly W x H is rejected before any state changes.
func (f *PerceptionField) UpdateFromImage(frame *image.RGBA) error {
	if frame == nil {
		return fmt.Errorf("%w: nil frame", ErrFrameSize)
	}
	b := frame.Bounds()
	if b.Dx() != f.W || b.Dy() != f.H {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, b.Dx(), b.Dy(), f.W, f.H)
	}

	for y := 0; y < f.H; y++ {
		row := frame.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < f.W; x++ {
			o := row + x*4
			r := float32(frame.Pix[o]) / 255
			g := float32(frame.Pix[o+1]) / 255
			bl := float32(frame.Pix[o+2]) / 255
			f.lum[y*f.W+x] = lumaR*r + lumaG*g + lumaB*bl
		}
	}

	f.ingest(f.lum)
	return nil
}

// UpdateFromLuminance is UpdateFromImage for callers that already hold a
// luminance grid. lum is copied.
func (f *PerceptionField) UpdateFromLuminance(lum []float32) error {
	if len(lum) != f.W*f.H {
		return fmt.Errorf("%w: got %d cells, want %d", ErrFrameSize, len(lum), f.W*f.H)
	}
	f.ingest(lum)
	return nil
}

func (f *PerceptionField) ingest(lum []float32) {
	copy(f.Previous, f.Current)
	copy(f.Current, lum)
	f.frames++
	f.ComputeFeatureMaps()
}

// ComputeFeatureMaps recomputes edge, motion, color and texture for every
// interior cell. Motion stays zero until a second frame has arrived.
func (f *PerceptionField) ComputeFeatureMaps() {
	w := f.W
	cur := f.Current
	hasMotion := f.frames >= 2

	for y := 1; y < f.H-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x

			nw, n, ne := cur[i-w-1], cur[i-w], cur[i-w+1]
			west, c, east := cur[i-1], cur[i], cur[i+1]
			sw, s, se := cur[i+w-1], cur[i+w], cur[i+w+1]

			// Sobel
			gx := -nw + ne - 2*west + 2*east - sw + se
			gy := -nw - 2*n - ne + sw + 2*s + se
			f.Edge[i] = float32(math.Sqrt(float64(gx*gx + gy*gy)))

			if hasMotion {
				f.Motion[i] = absf(c - f.Previous[i])
			}

			f.Color[i] = c

			// Variance around the center value, not the neighborhood mean
			var variance float32
			for _, v := range [9]float32{nw, n, ne, west, c, east, sw, s, se} {
				d := v - c
				variance += d * d
			}
			f.Texture[i] = variance / 9
		}
	}
}

// Frames returns how many frames have been ingested.
func (f *PerceptionField) Frames() int {
	return f.frames
}

// Grid returns the backing slice for m. Callers must treat it as read-only.
func (f *PerceptionField) Grid(m Map) []float32 {
	switch m {
	case MapLuminance:
		return f.Current
	case MapEdge:
		return f.Edge
	case MapMotion:
		return f.Motion
	case MapColor:
		return f.Color
	case MapTexture:
		return f.Texture
	case MapAttractor:
		return f.Attractor
	}
	return nil
}

// InBounds reports whether cell (x, y) lies inside the field.
func (f *PerceptionField) InBounds(x, y int) bool {
	return x >= 0 && x < f.W && y >= 0 && y < f.H
}

// Cell holds every map's value at one cell.
type Cell struct {
	X, Y      int
	Luminance float32
	Edge      float32
	Motion    float32
	Color     float32
	Texture   float32
	Attractor float32
}

// Sample reads all maps at (x, y). ok is false outside the field.
func (f *PerceptionField) Sample(x, y int) (c Cell, ok bool) {
	if !f.InBounds(x, y) {
		return Cell{}, false
	}
	i := y*f.W + x
	return Cell{
		X:         x,
		Y:         y,
		Luminance: f.Current[i],
		Edge:      f.Edge[i],
		Motion:    f.Motion[i],
		Color:     f.Color[i],
		Texture:   f.Texture[i],
		Attractor: f.Attractor[i],
	}, true
}

// gradient returns central differences of grid at (x, y). Each axis is zero
// on the field border rather than reading outside the grid.
func (f *PerceptionField) gradient(grid []float32, x, y int) (gx, gy float32) {
	i := y*f.W + x
	if x > 0 && x < f.W-1 {
		gx = grid[i+1] - grid[i-1]
	}
	if y > 0 && y < f.H-1 {
		gy = grid[i+f.W] - grid[i-f.W]
	}
	return gx, gy
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func floorInt(v float32) int {
	return int(math.Floor(float64(v)))
}
