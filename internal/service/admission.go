package service

import (
	"context"
	"time"

	orbital "orbital_node"
	"orbital_node/internal/logger"
	"orbital_node/internal/repository"

	"github.com/google/uuid"
)

// DefaultMinExecSeconds floors the measured execution time so near-instant
// compute calls still register a visible heat pulse in the simulation.
const DefaultMinExecSeconds = 0.5

// AdmissionService gates work on thermal headroom. Per job it moves through
// Received → {Rejected | Executing → Completed}; it never bypasses the
// radiator and never applies more than one thermal mutation per job.
type AdmissionService struct {
	radiator *Radiator
	compute  Compute
	events   repository.EventRepo
	recorder *flightRecorder
	log      *logger.Logger

	minExecSeconds float64
	now            func() time.Time
}

func NewAdmissionService(radiator *Radiator, compute Compute, events repository.EventRepo, recorder *flightRecorder, log *logger.Logger) *AdmissionService {
	return &AdmissionService{
		radiator:       radiator,
		compute:        compute,
		events:         events,
		recorder:       recorder,
		log:            log,
		minExecSeconds: DefaultMinExecSeconds,
		now:            time.Now,
	}
}

// Submit runs one job through the admission state machine.
//
// Rejection is the cheapest possible path: one headroom read, no execution,
// no heat. A compute failure after admission also applies no heat, because
// heat is a result of completed work, not of attempted work.
func (s *AdmissionService) Submit(ctx context.Context, job orbital.Job) orbital.JobOutcome {
	if !s.radiator.CheckHeadroom() {
		out := orbital.JobOutcome{
			JobID:        job.ID,
			Kind:         orbital.OutcomeRejected,
			Reason:       orbital.ReasonThermalThrottling,
			TemperatureK: s.radiator.TemperatureK(),
			OccurredAt:   s.now().UTC(),
		}
		s.finish(ctx, out, EventJobRejected, "Job rejected: thermal throttling active", map[string]any{
			"job_id":        job.ID,
			"temperature_k": out.TemperatureK,
			"threshold_k":   s.radiator.Config().ThresholdK,
		})
		return out
	}

	start := s.now()
	result, heatWatts, err := s.compute.Execute(ctx, job.Payload, job.Priority)
	if err != nil {
		out := orbital.JobOutcome{
			JobID:      job.ID,
			Kind:       orbital.OutcomeComputeFailed,
			Reason:     err.Error(),
			OccurredAt: s.now().UTC(),
		}
		s.finish(ctx, out, EventComputeError, "Compute capability failed", map[string]any{
			"job_id": job.ID,
			"err":    err.Error(),
		})
		return out
	}

	elapsed := s.now().Sub(start).Seconds()
	if elapsed < s.minExecSeconds {
		elapsed = s.minExecSeconds
	}
	tempK := s.radiator.ApplyHeat(heatWatts, elapsed)

	out := orbital.JobOutcome{
		JobID:         job.ID,
		Kind:          orbital.OutcomeCompleted,
		Result:        result,
		HeatLoadWatts: heatWatts,
		TemperatureK:  tempK,
		OccurredAt:    s.now().UTC(),
	}
	s.finish(ctx, out, EventJobCompleted, "Job completed", map[string]any{
		"job_id":          job.ID,
		"heat_load_watts": heatWatts,
		"exec_seconds":    elapsed,
		"temperature_k":   tempK,
	})
	return out
}

// finish records the outcome for telemetry and appends the audit event.
// Both are best-effort; the outcome itself is what the caller relies on.
func (s *AdmissionService) finish(ctx context.Context, out orbital.JobOutcome, eventType, desc string, meta map[string]any) {
	if s.recorder != nil {
		s.recorder.RecordOutcome(out)
	}
	if s.events != nil {
		_ = s.events.Append(ctx, orbital.NodeEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  out.OccurredAt,
			Type:        eventType,
			Description: desc,
			Metadata:    meta,
		})
	}
	if s.log != nil {
		s.log.Infow("admission_decision", "job_id", out.JobID, "kind", out.Kind)
	}
}
