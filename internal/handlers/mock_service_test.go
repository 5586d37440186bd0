package handlers

import (
	"context"
	"errors"
	"time"

	orbital "orbital_node"
	"orbital_node/internal/service"

	"github.com/gin-gonic/gin"
)

// Hand-rolled mocks for the service interfaces, shared by the handler tests.

type mockAuth struct {
	signUpFn     func(username, password string) (int, error)
	genTokenFn   func(username, password string) (string, error)
	parseTokenFn func(token string) (int, error)
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	if m.signUpFn != nil {
		return m.signUpFn(username, password)
	}
	return 1, nil
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	if m.genTokenFn != nil {
		return m.genTokenFn(username, password)
	}
	return "test-token", nil
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	if m.parseTokenFn != nil {
		return m.parseTokenFn(token)
	}
	if token == "valid" {
		return 1, nil
	}
	return 0, errors.New("invalid token")
}

type mockUplink struct {
	transmitFn func(ctx context.Context, job orbital.Job) orbital.JobOutcome
}

func (m *mockUplink) Transmit(ctx context.Context, job orbital.Job) orbital.JobOutcome {
	if m.transmitFn != nil {
		return m.transmitFn(ctx, job)
	}
	return orbital.JobOutcome{JobID: job.ID, Kind: orbital.OutcomeCompleted}
}

type mockAdmission struct {
	submitFn func(ctx context.Context, job orbital.Job) orbital.JobOutcome
}

func (m *mockAdmission) Submit(ctx context.Context, job orbital.Job) orbital.JobOutcome {
	if m.submitFn != nil {
		return m.submitFn(ctx, job)
	}
	return orbital.JobOutcome{JobID: job.ID, Kind: orbital.OutcomeCompleted}
}

type mockMonitoring struct {
	snapshotFn func(ctx context.Context) (orbital.Telemetry, error)
}

func (m *mockMonitoring) Snapshot(ctx context.Context) (orbital.Telemetry, error) {
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx)
	}
	return orbital.Telemetry{
		TemperatureK: 293.15,
		TemperatureC: 20.0,
		ThresholdK:   353.15,
		Status:       orbital.StatusNominal,
		UpdatedAt:    time.Now().UTC(),
	}, nil
}

type mockEventLog struct {
	listFn func(ctx context.Context, f service.LogFilter) ([]orbital.NodeEvent, error)
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]orbital.NodeEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, nil
}

type mockSimulator struct{}

func (m *mockSimulator) Run(ctx context.Context, tick time.Duration) {}

// newMockService returns a Service with benign defaults; tests override fields.
func newMockService() (*service.Service, *mockAuth, *mockUplink, *mockMonitoring, *mockEventLog) {
	auth := &mockAuth{}
	uplink := &mockUplink{}
	mon := &mockMonitoring{}
	events := &mockEventLog{}
	s := &service.Service{
		Uplink:        uplink,
		Admission:     &mockAdmission{},
		Monitoring:    mon,
		EventLog:      events,
		Simulator:     &mockSimulator{},
		Authorization: auth,
	}
	return s, auth, uplink, mon, events
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}

func authHeader(token string) string { return "Bearer " + token }
