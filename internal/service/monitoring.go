package service

import (
	"context"
	"sync"
	"time"

	orbital "orbital_node"
)

const kelvinOffset = 273.15

// flightRecorder keeps the in-memory decision counters and the most recent
// outcome for the telemetry read model. Guarded by its own mutex; it is fed
// from uplink and admission goroutines concurrently.
type flightRecorder struct {
	mu    sync.Mutex
	stats orbital.LinkStats
	last  *orbital.Decision
}

func newFlightRecorder() *flightRecorder {
	return &flightRecorder{}
}

func (f *flightRecorder) RecordTransmit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.Transmitted++
}

func (f *flightRecorder) RecordDelivered() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.Delivered++
}

// RecordOutcome bumps the counter for the outcome kind and remembers it as
// the last decision.
func (f *flightRecorder) RecordOutcome(out orbital.JobOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch out.Kind {
	case orbital.OutcomeCompleted:
		f.stats.Completed++
	case orbital.OutcomeRejected:
		f.stats.Rejected++
	case orbital.OutcomeLinkLost:
		f.stats.Lost++
	case orbital.OutcomeComputeFailed:
		f.stats.Failed++
	}
	f.last = &orbital.Decision{Kind: out.Kind, JobID: out.JobID, At: out.OccurredAt}
}

// snapshot returns a copy so callers never observe a torn read.
func (f *flightRecorder) snapshot() (orbital.LinkStats, *orbital.Decision) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := f.stats
	var last *orbital.Decision
	if f.last != nil {
		d := *f.last
		last = &d
	}
	return stats, last
}

// MonitoringService produces the read-only telemetry snapshot consumed by the
// dashboard, WebSocket clients and the persisted state row.
type MonitoringService struct {
	radiator *Radiator
	recorder *flightRecorder
}

func NewMonitoringService(radiator *Radiator, recorder *flightRecorder) *MonitoringService {
	return &MonitoringService{radiator: radiator, recorder: recorder}
}

// Snapshot reads the current thermal state and decision counters. It never
// mutates anything.
func (s *MonitoringService) Snapshot(_ context.Context) (orbital.Telemetry, error) {
	tempK := s.radiator.TemperatureK()
	status := orbital.StatusNominal
	if tempK >= s.radiator.Config().ThresholdK {
		status = orbital.StatusCriticalHeat
	}

	t := orbital.Telemetry{
		TemperatureK:         tempK,
		TemperatureC:         tempK - kelvinOffset,
		ThresholdK:           s.radiator.Config().ThresholdK,
		CoolingCapacityWatts: s.radiator.RadiatedPowerWatts(tempK),
		Status:               status,
		UpdatedAt:            time.Now().UTC(),
	}
	if s.recorder != nil {
		t.Link, t.LastDecision = s.recorder.snapshot()
	}
	return t, nil
}
