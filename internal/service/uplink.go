package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	orbital "orbital_node"
	"orbital_node/internal/logger"
	"orbital_node/internal/repository"

	"github.com/google/uuid"
)

// Chaos defaults from the reference RF/optical link scenario.
const (
	DefaultMinDelayMs      = 500
	DefaultMaxDelayMs      = 2000
	DefaultDropProbability = 0.1
)

// ChaosPolicy is immutable once loaded and shared read-only across all
// in-flight requests.
type ChaosPolicy struct {
	MinDelayMs      int     // 0 ≤ min ≤ max
	MaxDelayMs      int
	DropProbability float64 // ∈ [0,1]
}

// normalize clamps an out-of-range policy instead of failing startup.
func (p ChaosPolicy) normalize() ChaosPolicy {
	if p.MinDelayMs < 0 {
		p.MinDelayMs = 0
	}
	if p.MaxDelayMs < p.MinDelayMs {
		p.MaxDelayMs = p.MinDelayMs
	}
	if p.DropProbability < 0 {
		p.DropProbability = 0
	}
	if p.DropProbability > 1 {
		p.DropProbability = 1
	}
	return p
}

// randSource is the injectable randomness behind delay and drop sampling, so
// tests can force deterministic sequences.
type randSource interface {
	Intn(n int) int
	Float64() float64
}

// lockedRand makes a math/rand source safe for concurrent requests.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

// UplinkService simulates the lossy, delayed link that is the only path to
// the node. Each request is handled independently: the injected delay
// suspends only its own goroutine, and loss is final for that request.
type UplinkService struct {
	policy   ChaosPolicy
	next     Admission
	events   repository.EventRepo
	recorder *flightRecorder
	log      *logger.Logger

	rng   randSource
	sleep func(time.Duration)
}

func NewUplinkService(policy ChaosPolicy, next Admission, events repository.EventRepo, recorder *flightRecorder, log *logger.Logger) *UplinkService {
	return &UplinkService{
		policy:   policy.normalize(),
		next:     next,
		events:   events,
		recorder: recorder,
		log:      log,
		rng:      &lockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))},
		sleep:    time.Sleep,
	}
}

// Transmit forwards a job through the chaos link:
// uniform delay → drop roll → admission. A dropped job never reaches the
// admission controller and never touches thermal state.
func (s *UplinkService) Transmit(ctx context.Context, job orbital.Job) orbital.JobOutcome {
	if s.recorder != nil {
		s.recorder.RecordTransmit()
	}

	delayMs := s.sampleDelayMs()
	// Time in flight cannot be aborted once the signal is in transit: the
	// delay always runs to completion before the drop decision.
	s.sleep(time.Duration(delayMs) * time.Millisecond)

	if s.rng.Float64() < s.policy.DropProbability {
		out := orbital.JobOutcome{
			JobID:      job.ID,
			Kind:       orbital.OutcomeLinkLost,
			Reason:     orbital.ReasonLossOfSignal,
			DelayMs:    delayMs,
			OccurredAt: time.Now().UTC(),
		}
		if s.recorder != nil {
			s.recorder.RecordOutcome(out)
		}
		if s.events != nil {
			_ = s.events.Append(ctx, orbital.NodeEvent{
				EventID:     uuid.NewString(),
				OccurredAt:  out.OccurredAt,
				Type:        EventLinkLost,
				Description: "Packet lost in transit",
				Metadata: map[string]any{
					"job_id":   job.ID,
					"delay_ms": delayMs,
				},
			})
		}
		if s.log != nil {
			s.log.Infow("uplink_packet_lost", "job_id", job.ID, "delay_ms", delayMs)
		}
		return out
	}

	if s.recorder != nil {
		s.recorder.RecordDelivered()
	}
	out := s.next.Submit(ctx, job)
	out.DelayMs = delayMs
	return out
}

// sampleDelayMs draws an inclusive uniform delay from [min, max].
func (s *UplinkService) sampleDelayMs() int {
	delayMs := s.policy.MinDelayMs
	if spread := s.policy.MaxDelayMs - s.policy.MinDelayMs; spread > 0 {
		delayMs += s.rng.Intn(spread + 1)
	}
	return delayMs
}
