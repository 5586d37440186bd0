package service

import (
	"context"
	"errors"
	"testing"
	"time"

	orbital "orbital_node"
)

// eventLogRepoStub records the normalized filter it receives.
type eventLogRepoStub struct {
	resp     []orbital.NodeEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (e *eventLogRepoStub) Append(_ context.Context, _ orbital.NodeEvent) error { return nil }

func (e *eventLogRepoStub) List(_ context.Context, from, to time.Time, typ string) ([]orbital.NodeEvent, error) {
	e.lastFrom, e.lastTo, e.lastType = from, to, typ
	return e.resp, e.err
}

func TestEventLogList_NormalizesFilter(t *testing.T) {
	repo := &eventLogRepoStub{resp: []orbital.NodeEvent{{EventID: "e1"}}}
	svc := NewEventLogService(repo)

	loc := time.FixedZone("UTC+4", 4*3600)
	from := time.Date(2026, 8, 1, 12, 0, 0, 0, loc)

	events, err := svc.List(context.Background(), LogFilter{From: from, Type: " link_lost "})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if repo.lastFrom.Location() != time.UTC {
		t.Fatalf("from not normalized to UTC: %v", repo.lastFrom)
	}
	if repo.lastType != EventLinkLost {
		t.Fatalf("type not normalized: %q", repo.lastType)
	}
}

func TestEventLogList_RejectsInvertedRange(t *testing.T) {
	svc := NewEventLogService(&eventLogRepoStub{})

	_, err := svc.List(context.Background(), LogFilter{
		From: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("err = %v, want errInvalidTimeRange", err)
	}
}
