package systems

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-5

func newTestField(t *testing.T, w, h int) *PerceptionField {
	t.Helper()
	f, err := NewPerceptionField(w, h)
	if err != nil {
		t.Fatalf("NewPerceptionField(%d, %d): %v", w, h, err)
	}
	return f
}

func randomFrame(rng *rand.Rand, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng.Read(img.Pix)
	return img
}

func uniformLum(w, h int, v float32) []float32 {
	lum := make([]float32, w*h)
	for i := range lum {
		lum[i] = v
	}
	return lum
}

func TestNewPerceptionFieldRejectsEmpty(t *testing.T) {
	for _, dims := range [][2]int{{0, 8}, {8, 0}, {-1, 4}} {
		if _, err := NewPerceptionField(dims[0], dims[1]); !errors.Is(err, ErrFieldSize) {
			t.Errorf("NewPerceptionField(%d, %d) = %v, want ErrFieldSize", dims[0], dims[1], err)
		}
	}
}

func TestUpdateFromImageArchivesPrevious(t *testing.T) {
	f := newTestField(t, 16, 12)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 5; i++ {
		before := append([]float32(nil), f.Current...)
		if err := f.UpdateFromImage(randomFrame(rng, 16, 12)); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		for j := range before {
			if f.Previous[j] != before[j] {
				t.Fatalf("frame %d: Previous[%d] = %v, want %v", i, j, f.Previous[j], before[j])
			}
		}
	}
	if f.Frames() != 5 {
		t.Errorf("Frames() = %d, want 5", f.Frames())
	}
}

func TestUpdateFromImageRejectsMismatchedFrame(t *testing.T) {
	f := newTestField(t, 8, 8)
	rng := rand.New(rand.NewSource(1))
	if err := f.UpdateFromImage(randomFrame(rng, 8, 8)); err != nil {
		t.Fatal(err)
	}
	current := append([]float32(nil), f.Current...)

	for _, size := range [][2]int{{9, 8}, {8, 7}, {4, 4}} {
		err := f.UpdateFromImage(randomFrame(rng, size[0], size[1]))
		if !errors.Is(err, ErrFrameSize) {
			t.Errorf("%dx%d frame: err = %v, want ErrFrameSize", size[0], size[1], err)
		}
	}
	if err := f.UpdateFromImage(nil); !errors.Is(err, ErrFrameSize) {
		t.Errorf("nil frame: err = %v, want ErrFrameSize", err)
	}

	if f.Frames() != 1 {
		t.Errorf("rejected frames were counted: Frames() = %d", f.Frames())
	}
	for i := range current {
		if f.Current[i] != current[i] {
			t.Fatalf("rejected frame modified Current[%d]", i)
		}
	}
}

func TestUpdateFromImageSubImage(t *testing.T) {
	// A sub-image has a non-zero origin and a wider stride
	big := image.NewRGBA(image.Rect(0, 0, 20, 20))
	big.Set(6, 5, color.RGBA{255, 255, 255, 255})
	sub := big.SubImage(image.Rect(5, 5, 13, 13)).(*image.RGBA)

	f := newTestField(t, 8, 8)
	if err := f.UpdateFromImage(sub); err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(f.Current[1])-1) > eps {
		t.Errorf("Current[1] = %v, want 1", f.Current[1])
	}
	if f.Current[0] != 0 {
		t.Errorf("Current[0] = %v, want 0", f.Current[0])
	}
}

func TestLuminanceWeights(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want float64
	}{
		{"white", color.RGBA{255, 255, 255, 255}, 1.0},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"red", color.RGBA{255, 0, 0, 255}, 0.299},
		{"green", color.RGBA{0, 255, 0, 255}, 0.587},
		{"blue", color.RGBA{0, 0, 255, 0}, 0.114}, // alpha ignored
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 4, 4))
			for i := 0; i < 16; i++ {
				img.SetRGBA(i%4, i/4, tt.c)
			}
			f := newTestField(t, 4, 4)
			if err := f.UpdateFromImage(img); err != nil {
				t.Fatal(err)
			}
			if got := float64(f.Current[5]); math.Abs(got-tt.want) > eps {
				t.Errorf("luminance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMotionZeroAfterFirstFrame(t *testing.T) {
	f := newTestField(t, 16, 16)
	rng := rand.New(rand.NewSource(3))
	if err := f.UpdateFromImage(randomFrame(rng, 16, 16)); err != nil {
		t.Fatal(err)
	}
	for i, m := range f.Motion {
		if m != 0 {
			t.Fatalf("Motion[%d] = %v after first frame, want 0", i, m)
		}
	}
}

func TestMotionIsFrameDifference(t *testing.T) {
	f := newTestField(t, 6, 6)
	first := uniformLum(6, 6, 0.2)
	second := uniformLum(6, 6, 0.2)
	second[2*6+3] = 0.9

	if err := f.UpdateFromLuminance(first); err != nil {
		t.Fatal(err)
	}
	if err := f.UpdateFromLuminance(second); err != nil {
		t.Fatal(err)
	}

	if got := f.Motion[2*6+3]; math.Abs(float64(got)-0.7) > eps {
		t.Errorf("motion at changed cell = %v, want 0.7", got)
	}
	if got := f.Motion[3*6+3]; got != 0 {
		t.Errorf("motion at unchanged cell = %v, want 0", got)
	}

	// Same frame again: idempotent input yields no motion
	if err := f.UpdateFromLuminance(second); err != nil {
		t.Fatal(err)
	}
	if got := f.Motion[2*6+3]; got != 0 {
		t.Errorf("motion after repeated frame = %v, want 0", got)
	}
}

func TestFeatureMapBorderNeverWritten(t *testing.T) {
	const w, h = 10, 7
	f := newTestField(t, w, h)

	const sentinel = -1
	isBorder := func(x, y int) bool { return x == 0 || y == 0 || x == w-1 || y == h-1 }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if isBorder(x, y) {
				i := y*w + x
				f.Edge[i], f.Motion[i], f.Color[i], f.Texture[i] = sentinel, sentinel, sentinel, sentinel
			}
		}
	}

	rng := rand.New(rand.NewSource(11))
	for n := 0; n < 4; n++ {
		if err := f.UpdateFromImage(randomFrame(rng, w, h)); err != nil {
			t.Fatal(err)
		}
		f.ComputeFeatureMaps()
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !isBorder(x, y) {
				continue
			}
			i := y*w + x
			for name, grid := range map[string][]float32{"edge": f.Edge, "motion": f.Motion, "color": f.Color, "texture": f.Texture} {
				if grid[i] != sentinel {
					t.Errorf("%s border (%d,%d) = %v, want untouched %v", name, x, y, grid[i], sentinel)
				}
			}
		}
	}
}

func TestTextureUniformNeighborhoodIsZero(t *testing.T) {
	f := newTestField(t, 8, 8)
	if err := f.UpdateFromLuminance(uniformLum(8, 8, 0.37)); err != nil {
		t.Fatal(err)
	}
	for y := 1; y < 7; y++ {
		for x := 1; x < 7; x++ {
			if got := f.Texture[y*8+x]; got != 0 {
				t.Errorf("texture (%d,%d) = %v, want exactly 0", x, y, got)
			}
		}
	}
}

func TestTextureIsVarianceAroundCenter(t *testing.T) {
	// Bright center, dark ring: each of the 8 neighbors differs from the
	// center by 1, so the result is 8/9. The textbook variance would be 8/81.
	lum := uniformLum(5, 5, 0)
	lum[2*5+2] = 1
	f := newTestField(t, 5, 5)
	if err := f.UpdateFromLuminance(lum); err != nil {
		t.Fatal(err)
	}
	if got := f.Texture[2*5+2]; math.Abs(float64(got)-8.0/9.0) > eps {
		t.Errorf("texture = %v, want 8/9", got)
	}
}

func TestSobelVerticalStep(t *testing.T) {
	// Left half dark, right half bright
	const w, h = 8, 6
	lum := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			lum[y*w+x] = 1
		}
	}
	f := newTestField(t, w, h)
	if err := f.UpdateFromLuminance(lum); err != nil {
		t.Fatal(err)
	}

	// Columns 3 and 4 straddle the step: gx = 4, gy = 0
	for _, x := range []int{3, 4} {
		if got := f.Edge[2*w+x]; math.Abs(float64(got)-4) > eps {
			t.Errorf("edge at column %d = %v, want 4", x, got)
		}
	}
	if got := f.Edge[2*w+1]; got != 0 {
		t.Errorf("edge in flat region = %v, want 0", got)
	}
	if got := f.Color[2*w+5]; got != 1 {
		t.Errorf("color = %v, want luminance passthrough 1", got)
	}
}

func TestGradientZeroOnBorder(t *testing.T) {
	f := newTestField(t, 6, 6)
	for i := range f.Color {
		f.Color[i] = float32(i)
	}
	gx, gy := f.gradient(f.Color, 0, 3)
	if gx != 0 || gy == 0 {
		t.Errorf("left border gradient = (%v, %v), want gx=0 and gy!=0", gx, gy)
	}
	gx, gy = f.gradient(f.Color, 3, 5)
	if gy != 0 || gx == 0 {
		t.Errorf("bottom border gradient = (%v, %v), want gy=0 and gx!=0", gx, gy)
	}
	gx, gy = f.gradient(f.Color, 2, 2)
	if gx != 2 || gy != 12 {
		t.Errorf("interior gradient = (%v, %v), want (2, 12)", gx, gy)
	}
}

func TestSample(t *testing.T) {
	f := newTestField(t, 4, 3)
	i := 2*4 + 1
	f.Current[i] = 0.5
	f.Edge[i] = 0.1
	f.Motion[i] = 0.2
	f.Color[i] = 0.5
	f.Texture[i] = 0.3
	f.Attractor[i] = 0.4

	c, ok := f.Sample(1, 2)
	if !ok {
		t.Fatal("Sample(1, 2) reported out of bounds")
	}
	want := Cell{X: 1, Y: 2, Luminance: 0.5, Edge: 0.1, Motion: 0.2, Color: 0.5, Texture: 0.3, Attractor: 0.4}
	if c != want {
		t.Errorf("Sample(1, 2) = %+v, want %+v", c, want)
	}

	for _, p := range [][2]int{{-1, 0}, {4, 0}, {0, 3}} {
		if _, ok := f.Sample(p[0], p[1]); ok {
			t.Errorf("Sample(%d, %d) should be out of bounds", p[0], p[1])
		}
	}
}
