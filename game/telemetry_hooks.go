package game

import (
	"log/slog"

	"github.com/pthm-cable/psiscout/telemetry"
)

// recordTelemetry adds the finished tick to the window and flushes it when
// full.
func (g *Game) recordTelemetry() {
	ts := g.Stats()
	g.collector.Record(ts)

	if !g.collector.ShouldFlush(g.tick) {
		return
	}
	g.flushTelemetry(ts)
}

// flushTelemetry emits a window to every configured sink.
func (g *Game) flushTelemetry(last telemetry.TickStats) {
	stats := g.collector.Flush(last, g.scouts)
	perfStats := g.perfCollector.Stats()

	if g.opts.StatsCallback != nil {
		g.opts.StatsCallback(stats)
	}

	if g.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	if err := g.opts.Stream.PublishWindow(stats); err != nil {
		slog.Error("failed to publish window", "error", err)
	}
}

// RecordFrame records a rendered frame for FPS reporting.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// RunID returns the run identifier: Options.RunID, or the one generated for
// the output directory.
func (g *Game) RunID() string {
	return g.runID
}
