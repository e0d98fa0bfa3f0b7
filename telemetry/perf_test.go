package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseField)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseScouts)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg["field"]; !ok {
		t.Error("expected field phase to be tracked")
	}
	if _, ok := stats.PhaseAvg["scouts"]; !ok {
		t.Error("expected scouts phase to be tracked")
	}
	if _, ok := stats.PhaseAvg["attractor"]; ok {
		t.Error("phase that never ran should not be reported")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAttractor)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSnapshot)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseScouts)
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["snapshot"]
	slowPct := stats.PhasePct["scouts"]
	if slowPct <= fastPct {
		t.Errorf("expected scouts phase (%v%%) > snapshot phase (%v%%)", slowPct, fastPct)
	}

	row := stats.ToCSV(42)
	if row.WindowEnd != 42 || row.ScoutsPct != slowPct {
		t.Errorf("ToCSV = %+v, want window_end 42 and scouts_pct %v", row, slowPct)
	}
}

func TestPerfCollector_AbandonedTick(t *testing.T) {
	pc := NewPerfCollector(10)

	// A rejected frame starts a tick that never ends
	pc.StartTick()
	pc.StartPhase(PhaseField)

	pc.StartTick()
	pc.StartPhase(PhaseScouts)
	pc.EndTick()

	stats := pc.Stats()
	if _, ok := stats.PhaseAvg["field"]; ok {
		t.Error("abandoned tick leaked into the next sample")
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	// Upper bound only: sleeping may overshoot on a loaded machine
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with >=16ms frame time, got %v", stats.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	if got := PhaseTelemetry.String(); got != "telemetry" {
		t.Errorf("PhaseTelemetry.String() = %q", got)
	}
	if got := Phase(200).String(); got != "unknown" {
		t.Errorf("Phase(200).String() = %q, want unknown", got)
	}
}

func TestPhasesInTickOrder(t *testing.T) {
	phases := Phases()
	if len(phases) != 6 {
		t.Fatalf("got %d phases, want 6", len(phases))
	}
	if phases[0] != PhaseField || phases[len(phases)-1] != PhaseTelemetry {
		t.Errorf("phases out of order: %v", phases)
	}
}
