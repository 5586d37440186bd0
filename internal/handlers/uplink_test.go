package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	orbital "orbital_node"
)

func doTransmit(t *testing.T, s interface{ ServeHTTP(http.ResponseWriter, *http.Request) }, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uplink/transmit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", authHeader(token))
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, w.Body.String())
	}
	return m
}

func TestTransmit_Completed(t *testing.T) {
	s, _, uplink, _, _ := newMockService()
	uplink.transmitFn = func(ctx context.Context, job orbital.Job) orbital.JobOutcome {
		if job.Payload != "spectrometer frame" {
			t.Errorf("payload = %q", job.Payload)
		}
		if job.Priority != orbital.PriorityHigh {
			t.Errorf("priority = %q, want HIGH", job.Priority)
		}
		if job.ID == "" {
			t.Error("job ID not assigned")
		}
		return orbital.JobOutcome{
			JobID:         job.ID,
			Kind:          orbital.OutcomeCompleted,
			Result:        "processed",
			HeatLoadWatts: 500,
			TemperatureK:  294.0,
			DelayMs:       750,
		}
	}
	router := newTestRouter(s)

	w := doTransmit(t, router, `{"payload":"spectrometer frame","priority":"HIGH"}`, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["status"] != "completed" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["result"] != "processed" {
		t.Errorf("result = %v", body["result"])
	}
	if body["delay_ms"] != float64(750) {
		t.Errorf("delay_ms = %v", body["delay_ms"])
	}
}

func TestTransmit_ThermalRejection(t *testing.T) {
	s, _, uplink, _, _ := newMockService()
	uplink.transmitFn = func(ctx context.Context, job orbital.Job) orbital.JobOutcome {
		return orbital.JobOutcome{
			JobID:        job.ID,
			Kind:         orbital.OutcomeRejected,
			Reason:       orbital.ReasonThermalThrottling,
			TemperatureK: 355.8,
		}
	}
	router := newTestRouter(s)

	w := doTransmit(t, router, `{"payload":"x"}`, "valid")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	body := decodeBody(t, w)
	if body["reason"] != orbital.ReasonThermalThrottling {
		t.Errorf("reason = %v", body["reason"])
	}
	if body["temperature_k"] != 355.8 {
		t.Errorf("temperature_k = %v", body["temperature_k"])
	}
}

func TestTransmit_LinkLost(t *testing.T) {
	s, _, uplink, _, _ := newMockService()
	uplink.transmitFn = func(ctx context.Context, job orbital.Job) orbital.JobOutcome {
		return orbital.JobOutcome{JobID: job.ID, Kind: orbital.OutcomeLinkLost, Reason: orbital.ReasonLossOfSignal}
	}
	router := newTestRouter(s)

	w := doTransmit(t, router, `{"payload":"x"}`, "valid")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != "link_lost" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestTransmit_ComputeFailed(t *testing.T) {
	s, _, uplink, _, _ := newMockService()
	uplink.transmitFn = func(ctx context.Context, job orbital.Job) orbital.JobOutcome {
		return orbital.JobOutcome{JobID: job.ID, Kind: orbital.OutcomeComputeFailed, Reason: "kernel timeout"}
	}
	router := newTestRouter(s)

	w := doTransmit(t, router, `{"payload":"x"}`, "valid")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "kernel timeout" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestTransmit_BadRequests(t *testing.T) {
	s, _, _, _, _ := newMockService()
	router := newTestRouter(s)

	cases := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing payload", `{"priority":"HIGH"}`},
		{"bad priority", `{"payload":"x","priority":"URGENT"}`},
		{"not json", `payload=x`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doTransmit(t, router, tc.body, "valid")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestTransmit_RequiresAuth(t *testing.T) {
	s, _, uplink, _, _ := newMockService()
	called := false
	uplink.transmitFn = func(ctx context.Context, job orbital.Job) orbital.JobOutcome {
		called = true
		return orbital.JobOutcome{JobID: job.ID, Kind: orbital.OutcomeCompleted}
	}
	router := newTestRouter(s)

	w := doTransmit(t, router, `{"payload":"x"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if called {
		t.Error("uplink reached without a token")
	}
}
