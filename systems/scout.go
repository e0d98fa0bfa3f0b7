package systems

import (
	"github.com/pthm-cable/psiscout/components"
	"github.com/pthm-cable/psiscout/config"
)

// Rand is the random source scouts draw from. *math/rand.Rand satisfies it.
type Rand interface {
	Float32() float32
}

// ScoutParams holds the update constants shared by every scout.
type ScoutParams struct {
	ActivationDecay float32
	StimulusGain    float32
	GradientForce   float32
	ClusterForce    float32
	Jitter          float32
	VelocityDamping float32
	ForceGain       float32
	Margin          float32
	EnergyDecay     float32

	// Ranges for per-instance draws: value = min + rand*range
	SensitivityMin   float32
	SensitivityRange float32
	ThresholdMin     float32
	ThresholdRange   float32
	EnergyMin        float32
	EnergyRange      float32
}

// DefaultScoutParams returns the reference constants.
func DefaultScoutParams() ScoutParams {
	return ScoutParams{
		ActivationDecay: 0.9,
		StimulusGain:    0.1,
		GradientForce:   5,
		ClusterForce:    2,
		Jitter:          1,
		VelocityDamping: 0.8,
		ForceGain:       0.1,
		Margin:          5,
		EnergyDecay:     0.99,

		SensitivityMin:   0.5,
		SensitivityRange: 0.5,
		ThresholdMin:     0.1,
		ThresholdRange:   0.3,
		EnergyMin:        0.5,
		EnergyRange:      0.5,
	}
}

// ScoutParamsFromConfig converts the YAML scout section.
func ScoutParamsFromConfig(c *config.ScoutConfig) ScoutParams {
	return ScoutParams{
		ActivationDecay: float32(c.ActivationDecay),
		StimulusGain:    float32(c.StimulusGain),
		GradientForce:   float32(c.GradientForce),
		ClusterForce:    float32(c.ClusterForce),
		Jitter:          float32(c.Jitter),
		VelocityDamping: float32(c.VelocityDamping),
		ForceGain:       float32(c.ForceGain),
		Margin:          float32(c.Margin),
		EnergyDecay:     float32(c.EnergyDecay),

		SensitivityMin:   float32(c.SensitivityMin),
		SensitivityRange: float32(c.SensitivityRange),
		ThresholdMin:     float32(c.ThresholdMin),
		ThresholdRange:   float32(c.ThresholdRange),
		EnergyMin:        float32(c.EnergyMin),
		EnergyRange:      float32(c.EnergyRange),
	}
}

// Scout is the flat per-tick working copy of one agent. The ECS stores the
// same state split across components; the simulation snapshots into this
// struct, updates it, and writes it back.
type Scout struct {
	Type components.ScoutType

	X, Y   float32
	VX, VY float32

	Activation float32
	Energy     float32

	Sensitivity float32
	Threshold   float32

	Age uint32
}

// NewScout draws a fresh scout of type t on a w x h field.
func NewScout(t components.ScoutType, w, h float32, p *ScoutParams, rng Rand) Scout {
	s := Scout{Type: t}
	s.X = rng.Float32() * w
	s.Y = rng.Float32() * h
	s.Energy = p.EnergyMin + rng.Float32()*p.EnergyRange
	s.Sensitivity = p.SensitivityMin + rng.Float32()*p.SensitivityRange
	s.Threshold = p.ThresholdMin + rng.Float32()*p.ThresholdRange
	return s
}

// Respawn redraws position, velocity, activation and energy. Type,
// sensitivity, threshold and age are kept.
func (s *Scout) Respawn(w, h float32, p *ScoutParams, rng Rand) {
	s.X = rng.Float32() * w
	s.Y = rng.Float32() * h
	s.VX, s.VY = 0, 0
	s.Activation = 0
	s.Energy = p.EnergyMin + rng.Float32()*p.EnergyRange
}

// UpdateScout advances s by one tick against f. It reads only f and s and
// writes only s, so distinct scouts may be updated concurrently.
func UpdateScout(s *Scout, f *PerceptionField, p *ScoutParams, rng Rand) {
	s.Age++

	x, y := floorInt(s.X), floorInt(s.Y)
	if !f.InBounds(x, y) {
		return
	}

	stimulus := Stimulus(s.Type, f, x, y)
	s.Activation = s.Activation*p.ActivationDecay + stimulus*s.Sensitivity*p.StimulusGain

	var fx, fy float32
	if s.Activation > s.Threshold {
		gx, gy := Gradient(s.Type, f, x, y)
		fx = gx * s.Activation * p.GradientForce
		fy = gy * s.Activation * p.GradientForce

		cx, cy := ClusterForce(f, x, y)
		fx += cx * p.ClusterForce
		fy += cy * p.ClusterForce
	}

	// Exploration noise, applied whether or not the scout is active
	fx += (rng.Float32() - 0.5) * p.Jitter
	fy += (rng.Float32() - 0.5) * p.Jitter

	s.VX = s.VX*p.VelocityDamping + fx*p.ForceGain
	s.VY = s.VY*p.VelocityDamping + fy*p.ForceGain
	s.X += s.VX
	s.Y += s.VY

	s.X = clampf(s.X, p.Margin, float32(f.W)-p.Margin)
	s.Y = clampf(s.Y, p.Margin, float32(f.H)-p.Margin)

	s.Energy = s.Energy*p.EnergyDecay + s.Activation*(1-p.EnergyDecay)
}

// Stimulus returns the response of a type-t scout at cell (x, y).
//
// Edge types read the absolute luminance difference across their own
// orientation, not the Sobel map. All four motion types read the same scalar
// motion magnitude: direction is nominal only.
func Stimulus(t components.ScoutType, f *PerceptionField, x, y int) float32 {
	i := y*f.W + x
	switch t {
	case components.EdgeVertical:
		if x <= 0 || x >= f.W-1 {
			return 0
		}
		return absf(f.Current[i-1] - f.Current[i+1])
	case components.EdgeHorizontal:
		if y <= 0 || y >= f.H-1 {
			return 0
		}
		return absf(f.Current[i-f.W] - f.Current[i+f.W])
	case components.EdgeDiagonal1:
		if !interior(f, x, y) {
			return 0
		}
		return absf(f.Current[i-f.W-1] - f.Current[i+f.W+1])
	case components.EdgeDiagonal2:
		if !interior(f, x, y) {
			return 0
		}
		return absf(f.Current[i-f.W+1] - f.Current[i+f.W-1])
	case components.MotionUp, components.MotionDown, components.MotionLeft, components.MotionRight:
		return f.Motion[i]
	case components.ColorBright:
		return f.Color[i]
	case components.ColorDark:
		return 1 - f.Color[i]
	case components.TextureHigh:
		return f.Texture[i]
	case components.TextureLow:
		return max(0, 0.5-f.Texture[i])
	}
	return 0
}

// Gradient returns the gradient a type-t scout climbs at (x, y): the edge map
// for edge types, the motion map for motion types, the color map otherwise.
func Gradient(t components.ScoutType, f *PerceptionField, x, y int) (gx, gy float32) {
	switch t.Family() {
	case components.FamilyEdge:
		return f.gradient(f.Edge, x, y)
	case components.FamilyMotion:
		return f.gradient(f.Motion, x, y)
	default:
		return f.gradient(f.Color, x, y)
	}
}

// ClusterForce returns the unscaled attractor gradient at (x, y), or zero
// anywhere on the border.
func ClusterForce(f *PerceptionField, x, y int) (fx, fy float32) {
	if !interior(f, x, y) {
		return 0, 0
	}
	i := y*f.W + x
	fx = f.Attractor[i+1] - f.Attractor[i-1]
	fy = f.Attractor[i+f.W] - f.Attractor[i-f.W]
	return fx, fy
}

func interior(f *PerceptionField, x, y int) bool {
	return x > 0 && x < f.W-1 && y > 0 && y < f.H-1
}

// clampf applies the upper bound first, so lo wins when the range is empty.
func clampf(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}
