package service

import (
	"context"
	"time"

	orbital "orbital_node"
	"orbital_node/internal/logger"
	"orbital_node/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Uplink is the only path to the node: it injects latency and probabilistic
// loss before handing a job to admission.
type Uplink interface {
	Transmit(ctx context.Context, job orbital.Job) orbital.JobOutcome
}

// Admission decides whether a job that survived the uplink may execute.
type Admission interface {
	Submit(ctx context.Context, job orbital.Job) orbital.JobOutcome
}

// Monitoring exposes the read-only telemetry snapshot.
type Monitoring interface {
	Snapshot(ctx context.Context) (orbital.Telemetry, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]orbital.NodeEvent, error)
}

// Simulator runs the background cooldown loop that integrates idle time.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Config aggregates the scalar configuration consumed at process start.
type Config struct {
	Radiator RadiatorConfig
	Chaos    ChaosPolicy
	Compute  ComputeConfig
	Sim      SimulatorConfig
}

// Service aggregates all sub-services behind their interfaces.
type Service struct {
	Uplink
	Admission
	Monitoring
	EventLog
	Simulator
	Authorization
}

// NewService wires the repository layer and configuration into concrete
// services. The radiator and flight recorder are shared: the radiator is the
// single owner of thermal state, the recorder of decision counters.
func NewService(repos *repository.Repository, cfg Config, log *logger.Logger) *Service {
	radiator := NewRadiator(cfg.Radiator)
	recorder := newFlightRecorder()
	compute := NewCompute(cfg.Compute, log)

	admission := NewAdmissionService(radiator, compute, repos.EventRepo, recorder, log)
	if cfg.Compute.MinExecSeconds > 0 {
		admission.minExecSeconds = cfg.Compute.MinExecSeconds
	}
	uplink := NewUplinkService(cfg.Chaos, admission, repos.EventRepo, recorder, log)

	return &Service{
		Uplink:        uplink,
		Admission:     admission,
		Monitoring:    NewMonitoringService(radiator, recorder),
		EventLog:      NewEventLogService(repos.EventRepo),
		Simulator:     NewSimulatorService(radiator, repos.StateRepo, repos.EventRepo, cfg.Sim, log),
		Authorization: NewAuthService(repos.Auth),
	}
}
