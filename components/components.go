// Package components defines ECS components for the scout population.
package components

// Minimodel holds the constants a scout is created with. They never change
// for the lifetime of the run, including across population resets.
type Minimodel struct {
	Type        ScoutType
	Sensitivity float32 // Stimulus weight, drawn per instance
	Threshold   float32 // Activation above which the scout follows gradients
}

// Activity holds a scout's mutable response state.
type Activity struct {
	Activation float32 // Exponentially smoothed stimulus response
	Energy     float32 // Slow trailing average of activation (statistics only)
	Age        uint32  // Ticks since creation; not cleared by reset
}
