package game

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/psiscout/components"
	"github.com/pthm-cable/psiscout/config"
	"github.com/pthm-cable/psiscout/systems"
	"github.com/pthm-cable/psiscout/telemetry"
)

// Options configures a simulation run beyond the YAML config.
type Options struct {
	Seed      int64  // RNG seed for placement, per-scout constants and jitter
	RunID     string // Stamped into output metadata; generated when empty
	LogStats  bool   // Log window stats via slog
	OutputDir string // CSV output directory (empty disables)
	Workers   int    // Overrides config parallel.workers when > 0

	// Stream receives every flushed window when non-nil.
	Stream *telemetry.Stream
	// StatsCallback is invoked with every flushed window when non-nil.
	StatsCallback func(telemetry.WindowStats)
}

// Game owns the perception field and the scout population and advances them
// one frame at a time. It is not safe for concurrent use; the outer loop owns
// pacing and calls Step from one goroutine.
type Game struct {
	cfg  *config.Config
	opts Options

	world       *ecs.World
	scoutMapper *ecs.Map4[components.Position, components.Velocity, components.Minimodel, components.Activity]
	scoutFilter *ecs.Filter4[components.Position, components.Velocity, components.Minimodel, components.Activity]

	field  *systems.PerceptionField
	params systems.ScoutParams
	rng    *rand.Rand

	// Per-tick working copies, index-aligned
	entities []ecs.Entity
	scouts   []systems.Scout

	parallel *parallelState

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	runID         string

	tick int32
}

// New validates cfg, allocates the field and spawns the fixed population.
// Degenerate configurations fail here, never on the first tick.
func New(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalid)
	}
	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	field, err := systems.NewPerceptionField(cfg.Field.Size, cfg.Field.Size)
	if err != nil {
		return nil, err
	}
	field.DepositRate = float32(cfg.Attractor.DepositRate)

	w := ecs.NewWorld()
	g := &Game{
		cfg:         cfg,
		opts:        opts,
		runID:       opts.RunID,
		world:       w,
		scoutMapper: ecs.NewMap4[components.Position, components.Velocity, components.Minimodel, components.Activity](w),
		scoutFilter: ecs.NewFilter4[components.Position, components.Velocity, components.Minimodel, components.Activity](w),
		field:       field,
		params:      systems.ScoutParamsFromConfig(&cfg.Scout),
		rng:         rand.New(rand.NewSource(opts.Seed)),
		entities:    make([]ecs.Entity, 0, cfg.Derived.Population),
		scouts:      make([]systems.Scout, 0, cfg.Derived.Population),

		collector:     telemetry.NewCollector(int32(cfg.Telemetry.StatsWindow), telemetry.StatsParamsFromConfig(&cfg.Telemetry)),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}

	g.spawnPopulation()

	workers := cfg.Parallel.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	g.parallel = newParallelState(workers, cfg.Parallel.ChunkSize, cfg.Parallel.Threshold, len(g.scouts), g.rng)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir, opts.RunID)
		if err != nil {
			return nil, err
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, err
		}
		if err := om.WriteRunMeta(telemetry.RunMeta{
			Seed:       opts.Seed,
			FieldSize:  cfg.Field.Size,
			Population: cfg.Derived.Population,
		}); err != nil {
			om.Close()
			return nil, err
		}
		g.outputManager = om
		g.runID = om.RunID()
		slog.Info("writing output", "dir", opts.OutputDir, "run_id", om.RunID())
	}

	return g, nil
}

// Step runs exactly one tick for frame: field update, per-scout update,
// attractor re-aggregation. A frame that does not match the field rejects
// the tick before any scout is touched.
func (g *Game) Step(frame *image.RGBA) error {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseField)
	if err := g.field.UpdateFromImage(frame); err != nil {
		return fmt.Errorf("tick %d: %w", g.tick, err)
	}

	g.advance()
	return nil
}

// StepLuminance is Step for callers that supply a luminance grid directly.
func (g *Game) StepLuminance(lum []float32) error {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseField)
	if err := g.field.UpdateFromLuminance(lum); err != nil {
		return fmt.Errorf("tick %d: %w", g.tick, err)
	}

	g.advance()
	return nil
}

// advance runs the scout and attractor phases once the field is current.
func (g *Game) advance() {
	g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	g.snapshotScouts()

	g.perfCollector.StartPhase(telemetry.PhaseScouts)
	g.updateScouts()

	g.perfCollector.StartPhase(telemetry.PhaseApply)
	g.applyScouts()

	// Barrier: every scout has finished before the reduction starts
	g.perfCollector.StartPhase(telemetry.PhaseAttractor)
	g.field.UpdateAttractorField(g.scouts)

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.recordTelemetry()

	g.perfCollector.EndTick()
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Field returns the perception field. Callers must not mutate it.
func (g *Game) Field() *systems.PerceptionField {
	return g.field
}

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Scouts returns a copy of the population as of the end of the last tick
// (or the last reset).
func (g *Game) Scouts() []systems.Scout {
	out := make([]systems.Scout, len(g.scouts))
	copy(out, g.scouts)
	return out
}

// Population returns the fixed number of scouts.
func (g *Game) Population() int {
	return len(g.scouts)
}

// Stats computes the aggregate statistics for the current state.
func (g *Game) Stats() telemetry.TickStats {
	return telemetry.ComputeTickStats(g.tick, g.scouts, g.field.AttractorSum(), g.collector.Params())
}

// PerfStats returns timing averaged over the perf window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// Close stops the worker pool and flushes output files.
func (g *Game) Close() error {
	g.parallel.stopWorkers()
	om := g.outputManager
	g.outputManager = nil
	return om.Close()
}
