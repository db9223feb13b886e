package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorEmptyStatsAreZero(t *testing.T) {
	p := NewPerfCollector(10)
	stats := p.Stats()
	if stats.AvgTickDuration != 0 {
		t.Errorf("AvgTickDuration = %v, want 0 before any tick recorded", stats.AvgTickDuration)
	}
}

func TestPerfCollectorRecordsPhases(t *testing.T) {
	p := NewPerfCollector(10)
	p.StartTick()
	p.StartPhase(PhasePreTick)
	time.Sleep(time.Millisecond)
	p.StartPhase(PhaseIntegrate)
	time.Sleep(time.Millisecond)
	p.EndTick()

	stats := p.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Errorf("AvgTickDuration = %v, want > 0", stats.AvgTickDuration)
	}
	if _, ok := stats.PhaseAvg[PhasePreTick]; !ok {
		t.Error("PhaseAvg missing PhasePreTick")
	}
	if _, ok := stats.PhaseAvg[PhaseIntegrate]; !ok {
		t.Error("PhaseAvg missing PhaseIntegrate")
	}
}

func TestPerfCollectorWindowWraps(t *testing.T) {
	p := NewPerfCollector(3)
	for i := 0; i < 5; i++ {
		p.StartTick()
		p.StartPhase(PhasePreTick)
		p.EndTick()
	}
	stats := p.Stats()
	// sampleCount should cap at windowSize even after more ticks than the window.
	if stats.AvgTickDuration < 0 {
		t.Error("AvgTickDuration should never be negative")
	}
}

func TestNewPerfCollectorDefaultsInvalidWindowSize(t *testing.T) {
	p := NewPerfCollector(0)
	if len(p.samples) != 60 {
		t.Errorf("windowSize = %v, want default 60 for an invalid input", len(p.samples))
	}
}

func TestToCSVCopiesPhasePercentages(t *testing.T) {
	p := NewPerfCollector(10)
	p.StartTick()
	p.StartPhase(PhasePreTick)
	time.Sleep(time.Millisecond)
	p.StartPhase(PhaseIntegrate)
	time.Sleep(time.Millisecond)
	p.EndTick()

	stats := p.Stats()
	row := stats.ToCSV(1)
	if row.WindowEnd != 1 {
		t.Errorf("WindowEnd = %v, want 1", row.WindowEnd)
	}
	if row.PreTickPct <= 0 && row.IntegratePct <= 0 {
		t.Error("expected at least one non-zero phase percentage")
	}
}
