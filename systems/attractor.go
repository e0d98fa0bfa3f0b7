package systems

import (
	"gonum.org/v1/gonum/blas/blas32"
)

// UpdateAttractorField rebuilds the attractor field from the scouts' current
// positions and activations: clear, deposit, smooth once.
func (f *PerceptionField) UpdateAttractorField(scouts []Scout) {
	f.ClearAttractor()
	for i := range scouts {
		s := &scouts[i]
		f.Deposit(s.X, s.Y, s.Activation)
	}
	f.SmoothAttractor()
}

// ClearAttractor zeroes the attractor field.
func (f *PerceptionField) ClearAttractor() {
	clear(f.Attractor)
}

// Deposit adds activation*DepositRate at the cell containing (x, y).
// Positions outside the field are dropped, not clamped or wrapped.
func (f *PerceptionField) Deposit(x, y, activation float32) {
	cx, cy := floorInt(x), floorInt(y)
	if !f.InBounds(cx, cy) {
		return
	}
	f.Attractor[cy*f.W+cx] += activation * f.DepositRate
}

// SmoothAttractor replaces every interior cell with the mean of its 3x3
// neighborhood. Border cells are left as they are.
func (f *PerceptionField) SmoothAttractor() {
	w := f.W
	src := f.Attractor
	dst := f.tmp
	copy(dst, src)

	for y := 1; y < f.H-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			sum := src[i-w-1] + src[i-w] + src[i-w+1] +
				src[i-1] + src[i] + src[i+1] +
				src[i+w-1] + src[i+w] + src[i+w+1]
			dst[i] = sum / 9
		}
	}

	copy(f.Attractor, dst)
}

// AttractorSum returns the total attractor mass ("field energy").
// The field is non-negative, so the absolute sum is the plain sum.
func (f *PerceptionField) AttractorSum() float32 {
	return blas32.Asum(blas32.Vector{N: len(f.Attractor), Inc: 1, Data: f.Attractor})
}
