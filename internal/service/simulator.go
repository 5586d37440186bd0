package service

import (
	"context"
	"time"

	orbital "orbital_node"
	"orbital_node/internal/logger"
	"orbital_node/internal/repository"

	"github.com/google/uuid"
)

// SimulatorConfig tunes the background cooldown loop.
type SimulatorConfig struct {
	// IdleLoadWatts is the constant bus power dissipated between jobs.
	// Zero means pure passive cooling.
	IdleLoadWatts float64
}

// SimulatorService integrates elapsed wall time through the radiator on a
// cadence independent of job traffic, so temperature decays during idle
// periods and not only when jobs execute. It also persists the state snapshot
// and logs overheat excursions.
type SimulatorService struct {
	radiator  *Radiator
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	cfg       SimulatorConfig
	log       *logger.Logger

	inOverheat bool
}

func NewSimulatorService(radiator *Radiator, stateRepo repository.StateRepo, eventRepo repository.EventRepo, cfg SimulatorConfig, log *logger.Logger) *SimulatorService {
	return &SimulatorService{
		radiator:  radiator,
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		cfg:       cfg,
		log:       log,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			elapsed := now.Sub(last).Seconds()
			last = now
			s.step(ctx, elapsed, now)
		}
	}
}

// step advances the thermal state by one tick.
func (s *SimulatorService) step(ctx context.Context, elapsedSeconds float64, now time.Time) {
	var tempK float64
	if s.cfg.IdleLoadWatts > 0 {
		tempK = s.radiator.ApplyHeat(s.cfg.IdleLoadWatts, elapsedSeconds)
	} else {
		tempK = s.radiator.CoolDown(elapsedSeconds)
	}

	status := orbital.StatusNominal
	if tempK >= s.radiator.Config().ThresholdK {
		status = orbital.StatusCriticalHeat
	}
	s.trackOverheat(ctx, tempK, status, now)

	// Snapshot persistence is best-effort; the radiator stays authoritative.
	if s.stateRepo != nil {
		_ = s.stateRepo.Save(ctx, orbital.NodeState{
			ID:           1,
			TemperatureK: tempK,
			Status:       status,
			UpdatedAt:    now.UTC(),
		})
	}
}

// trackOverheat appends one OVERHEAT event per excursion above threshold.
func (s *SimulatorService) trackOverheat(ctx context.Context, tempK float64, status string, now time.Time) {
	if status != orbital.StatusCriticalHeat {
		s.inOverheat = false
		return
	}
	if s.inOverheat {
		return
	}
	s.inOverheat = true

	if s.log != nil {
		s.log.Warnw("thermal_overheat", "temperature_k", tempK, "threshold_k", s.radiator.Config().ThresholdK)
	}
	if s.eventRepo != nil {
		_ = s.eventRepo.Append(ctx, orbital.NodeEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  now.UTC(),
			Type:        EventOverheat,
			Description: "Temperature crossed the throttle threshold",
			Metadata: map[string]any{
				"temperature_k": tempK,
				"threshold_k":   s.radiator.Config().ThresholdK,
			},
		})
	}
}
