package source

import (
	"context"
	"image"
	"math"

	"github.com/ojrac/opensimplex-go"
)

// SyntheticParams tunes the generated scene.
type SyntheticParams struct {
	NoiseScale float64 // Spatial frequency of the background texture
	TimeScale  float64 // How fast the texture evolves per frame
	BlobRadius float64 // Radius of the moving disc in cells
	BlobSpeed  float64 // Angular speed of the disc path, radians per frame
}

// Synthetic renders evolving simplex noise with a bright disc drifting over
// it, so every feature map and every motion direction gets exercised without
// a camera.
type Synthetic struct {
	size   int
	params SyntheticParams
	noise  opensimplex.Noise
	frame  *image.RGBA
	t      int
}

// NewSynthetic creates a synthetic source producing size x size frames.
func NewSynthetic(size int, seed int64, p SyntheticParams) *Synthetic {
	return &Synthetic{
		size:   size,
		params: p,
		noise:  opensimplex.NewNormalized(seed),
		frame:  image.NewRGBA(image.Rect(0, 0, size, size)),
	}
}

// BlobCenter returns the disc center for frame t.
func (s *Synthetic) BlobCenter(t int) (cx, cy float64) {
	half := float64(s.size) / 2
	amp := half - s.params.BlobRadius
	if amp < 0 {
		amp = 0
	}
	phase := float64(t) * s.params.BlobSpeed
	// Lissajous path: the disc sweeps all four directions
	return half + amp*math.Sin(phase), half + amp*math.Sin(2*phase+math.Pi/3)
}

func (s *Synthetic) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	z := float64(s.t) * s.params.TimeScale
	cx, cy := s.BlobCenter(s.t)
	r2 := s.params.BlobRadius * s.params.BlobRadius
	ns := s.params.NoiseScale

	for y := 0; y < s.size; y++ {
		row := s.frame.Pix[y*s.frame.Stride:]
		for x := 0; x < s.size; x++ {
			fx, fy := float64(x)*ns, float64(y)*ns
			// Offset channels so they decorrelate
			r := s.noise.Eval3(fx, fy, z)
			g := s.noise.Eval3(fx+31.7, fy, z)
			b := s.noise.Eval3(fx, fy+57.3, z)

			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= r2 {
				r, g, b = 1, 1, 1
			}

			o := x * 4
			row[o+0] = uint8(r * 255)
			row[o+1] = uint8(g * 255)
			row[o+2] = uint8(b * 255)
			row[o+3] = 255
		}
	}

	s.t++
	return s.frame, nil
}

func (s *Synthetic) Close() error { return nil }
