package service

import (
	"context"
	"testing"
	"time"

	orbital "orbital_node"
)

func TestMonitoringSnapshot_NominalBelowThreshold(t *testing.T) {
	r := NewRadiator(refRadiatorConfig())
	svc := NewMonitoringService(r, newFlightRecorder())

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if snap.Status != orbital.StatusNominal {
		t.Fatalf("Status = %q, want NOMINAL", snap.Status)
	}
	if snap.TemperatureK != 293.15 {
		t.Fatalf("TemperatureK = %v, want 293.15", snap.TemperatureK)
	}
	if got := snap.TemperatureC; got < 19.99 || got > 20.01 {
		t.Fatalf("TemperatureC = %v, want ~20", got)
	}
	if snap.CoolingCapacityWatts != r.RadiatedPowerWatts(293.15) {
		t.Fatalf("CoolingCapacityWatts = %v", snap.CoolingCapacityWatts)
	}
	if snap.LastDecision != nil {
		t.Fatalf("fresh node has a last decision: %+v", snap.LastDecision)
	}
}

func TestMonitoringSnapshot_CriticalAtThreshold(t *testing.T) {
	r := NewRadiator(refRadiatorConfig())
	r.tempK = 353.15
	svc := NewMonitoringService(r, newFlightRecorder())

	snap, _ := svc.Snapshot(context.Background())
	if snap.Status != orbital.StatusCriticalHeat {
		t.Fatalf("Status = %q, want CRITICAL_HEAT", snap.Status)
	}
}

func TestFlightRecorder_CountersAndLastDecision(t *testing.T) {
	rec := newFlightRecorder()

	rec.RecordTransmit()
	rec.RecordTransmit()
	rec.RecordDelivered()
	rec.RecordOutcome(orbital.JobOutcome{Kind: orbital.OutcomeLinkLost, JobID: "a", OccurredAt: time.Unix(1, 0)})
	rec.RecordOutcome(orbital.JobOutcome{Kind: orbital.OutcomeCompleted, JobID: "b", OccurredAt: time.Unix(2, 0)})
	rec.RecordOutcome(orbital.JobOutcome{Kind: orbital.OutcomeRejected, JobID: "c", OccurredAt: time.Unix(3, 0)})
	rec.RecordOutcome(orbital.JobOutcome{Kind: orbital.OutcomeComputeFailed, JobID: "d", OccurredAt: time.Unix(4, 0)})

	stats, last := rec.snapshot()
	if stats.Transmitted != 2 || stats.Delivered != 1 {
		t.Fatalf("link counters wrong: %+v", stats)
	}
	if stats.Lost != 1 || stats.Completed != 1 || stats.Rejected != 1 || stats.Failed != 1 {
		t.Fatalf("outcome counters wrong: %+v", stats)
	}
	if last == nil || last.JobID != "d" || last.Kind != orbital.OutcomeComputeFailed {
		t.Fatalf("last decision wrong: %+v", last)
	}

	// snapshot must hand out a copy, not the live pointer.
	last.JobID = "mutated"
	if _, again := rec.snapshot(); again.JobID != "d" {
		t.Fatalf("recorder state leaked to callers: %+v", again)
	}
}
