package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/psiscout/components"
	"github.com/pthm-cable/psiscout/config"
	"github.com/pthm-cable/psiscout/systems"
)

// StatsParams holds the thresholds used to classify scouts.
type StatsParams struct {
	ActiveThreshold float32 // Activation above which a scout counts as active
	ClusterSize     int     // Active scouts per estimated cluster
}

// StatsParamsFromConfig builds StatsParams from the telemetry config section.
func StatsParamsFromConfig(c *config.TelemetryConfig) StatsParams {
	return StatsParams{
		ActiveThreshold: float32(c.ActiveThreshold),
		ClusterSize:     c.ClusterSize,
	}
}

// TickStats is the aggregate state of the population after one tick.
type TickStats struct {
	Tick        int32
	Population  int
	Active      int
	Clusters    int
	FieldEnergy float64 // Sum of the attractor field
	Coherence   float64 // Active / Population
}

// ComputeTickStats derives TickStats from read-only state. It never mutates
// scouts.
func ComputeTickStats(tick int32, scouts []systems.Scout, fieldEnergy float32, p StatsParams) TickStats {
	active := 0
	for i := range scouts {
		if scouts[i].Activation > p.ActiveThreshold {
			active++
		}
	}

	ts := TickStats{
		Tick:        tick,
		Population:  len(scouts),
		Active:      active,
		FieldEnergy: float64(fieldEnergy),
	}
	if p.ClusterSize > 0 {
		ts.Clusters = active / p.ClusterSize
	}
	if len(scouts) > 0 {
		ts.Coherence = float64(active) / float64(len(scouts))
	}
	return ts
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", int(s.Tick)),
		slog.Int("population", s.Population),
		slog.Int("active", s.Active),
		slog.Int("clusters", s.Clusters),
		slog.Float64("field_energy", s.FieldEnergy),
		slog.Float64("coherence", s.Coherence),
	)
}

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32 `csv:"-" json:"window_start"`
	WindowEndTick   int32 `csv:"window_end" json:"window_end"`

	// Counts at window end
	Population int     `csv:"population" json:"population"`
	Active     int     `csv:"active" json:"active"`
	Clusters   int     `csv:"clusters" json:"clusters"`
	Coherence  float64 `csv:"coherence" json:"coherence"`

	// Averages over the window
	ActiveMean    float64 `csv:"active_mean" json:"active_mean"`
	CoherenceMean float64 `csv:"coherence_mean" json:"coherence_mean"`

	// Attractor field
	FieldEnergy     float64 `csv:"field_energy" json:"field_energy"`
	FieldEnergyMean float64 `csv:"field_energy_mean" json:"field_energy_mean"`
	FieldEnergyMax  float64 `csv:"field_energy_max" json:"field_energy_max"`

	// Activation distribution (sampled at window end)
	ActivationMean float64 `csv:"activation_mean" json:"activation_mean"`
	ActivationStd  float64 `csv:"activation_std" json:"activation_std"`
	ActivationP10  float64 `csv:"activation_p10" json:"activation_p10"`
	ActivationP50  float64 `csv:"activation_p50" json:"activation_p50"`
	ActivationP90  float64 `csv:"activation_p90" json:"activation_p90"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean" json:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std" json:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10" json:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50" json:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90" json:"energy_p90"`

	// Per-type breakdown; written to types.csv
	Types []TypeStats `csv:"-" json:"types"`
}

// TypeStats is the per-type slice of a window.
type TypeStats struct {
	WindowEnd      int32   `csv:"window_end" json:"-"`
	Type           string  `csv:"type" json:"type"`
	Count          int     `csv:"count" json:"count"`
	Active         int     `csv:"active" json:"active"`
	ActivationMean float64 `csv:"activation_mean" json:"activation_mean"`
	EnergyMean     float64 `csv:"energy_mean" json:"energy_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, population std, and percentiles.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// ComputeTypeStats breaks the population down by scout type, in type order.
func ComputeTypeStats(windowEnd int32, scouts []systems.Scout, p StatsParams) []TypeStats {
	out := make([]TypeStats, components.NumScoutTypes)
	actSum := make([]float64, components.NumScoutTypes)
	energySum := make([]float64, components.NumScoutTypes)

	for _, t := range components.AllScoutTypes() {
		out[t] = TypeStats{WindowEnd: windowEnd, Type: t.String()}
	}
	for i := range scouts {
		s := &scouts[i]
		if !s.Type.Valid() {
			continue
		}
		ts := &out[s.Type]
		ts.Count++
		if s.Activation > p.ActiveThreshold {
			ts.Active++
		}
		actSum[s.Type] += float64(s.Activation)
		energySum[s.Type] += float64(s.Energy)
	}
	for i := range out {
		if out[i].Count > 0 {
			out[i].ActivationMean = actSum[i] / float64(out[i].Count)
			out[i].EnergyMean = energySum[i] / float64(out[i].Count)
		}
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("population", s.Population),
		slog.Int("active", s.Active),
		slog.Int("clusters", s.Clusters),
		slog.Float64("coherence", s.Coherence),
		slog.Float64("active_mean", s.ActiveMean),
		slog.Float64("field_energy", s.FieldEnergy),
		slog.Float64("field_energy_mean", s.FieldEnergyMean),
		slog.Float64("activation_mean", s.ActivationMean),
		slog.Float64("activation_p90", s.ActivationP90),
		slog.Float64("energy_mean", s.EnergyMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"population", s.Population,
		"active", s.Active,
		"clusters", s.Clusters,
		"coherence", s.Coherence,
		"active_mean", s.ActiveMean,
		"coherence_mean", s.CoherenceMean,
		"field_energy", s.FieldEnergy,
		"field_energy_mean", s.FieldEnergyMean,
		"field_energy_max", s.FieldEnergyMax,
		"activation_mean", s.ActivationMean,
		"activation_std", s.ActivationStd,
		"activation_p10", s.ActivationP10,
		"activation_p50", s.ActivationP50,
		"activation_p90", s.ActivationP90,
		"energy_mean", s.EnergyMean,
		"energy_std", s.EnergyStd,
		"energy_p50", s.EnergyP50,
	)
}
