package telemetry

import "github.com/pthm-cable/psiscout/systems"

// Collector accumulates per-tick stats within windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	params              StatsParams

	// Current window tracking
	windowStartTick int32

	// Accumulators for current window
	ticks          int
	activeSum      int
	coherenceSum   float64
	fieldEnergySum float64
	fieldEnergyMax float64

	// Scratch for distributions
	activations []float64
	energies    []float64
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window lasts
func NewCollector(windowTicks int32, params StatsParams) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}

	return &Collector{
		windowDurationTicks: windowTicks,
		params:              params,
	}
}

// Record adds one tick to the current window.
func (c *Collector) Record(ts TickStats) {
	c.ticks++
	c.activeSum += ts.Active
	c.coherenceSum += ts.Coherence
	c.fieldEnergySum += ts.FieldEnergy
	if ts.FieldEnergy > c.fieldEnergyMax {
		c.fieldEnergyMax = ts.FieldEnergy
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets accumulators for the next window.
// last is the stats of the final tick; scouts is the population at window end.
func (c *Collector) Flush(last TickStats, scouts []systems.Scout) WindowStats {
	c.activations = c.activations[:0]
	c.energies = c.energies[:0]
	for i := range scouts {
		c.activations = append(c.activations, float64(scouts[i].Activation))
		c.energies = append(c.energies, float64(scouts[i].Energy))
	}

	actMean, actStd, actP10, actP50, actP90 := ComputeDistribution(c.activations)
	enMean, enStd, enP10, enP50, enP90 := ComputeDistribution(c.energies)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   last.Tick,

		Population: last.Population,
		Active:     last.Active,
		Clusters:   last.Clusters,
		Coherence:  last.Coherence,

		FieldEnergy:    last.FieldEnergy,
		FieldEnergyMax: c.fieldEnergyMax,

		ActivationMean: actMean,
		ActivationStd:  actStd,
		ActivationP10:  actP10,
		ActivationP50:  actP50,
		ActivationP90:  actP90,

		EnergyMean: enMean,
		EnergyStd:  enStd,
		EnergyP10:  enP10,
		EnergyP50:  enP50,
		EnergyP90:  enP90,

		Types: ComputeTypeStats(last.Tick, scouts, c.params),
	}
	if c.ticks > 0 {
		stats.ActiveMean = float64(c.activeSum) / float64(c.ticks)
		stats.CoherenceMean = c.coherenceSum / float64(c.ticks)
		stats.FieldEnergyMean = c.fieldEnergySum / float64(c.ticks)
	}

	// Reset for next window
	c.windowStartTick = last.Tick
	c.ticks = 0
	c.activeSum = 0
	c.coherenceSum = 0
	c.fieldEnergySum = 0
	c.fieldEnergyMax = 0

	return stats
}

// Params returns the thresholds the collector classifies scouts with.
func (c *Collector) Params() StatsParams {
	return c.params
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
