package orbital_node

import "time"

// Priority of a submitted job. Heat-load policy per priority is owned by the
// compute capability, not by the admission path.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// Job is a unit of work as it arrives at the uplink. Immutable after creation.
type Job struct {
	ID          string    `json:"id"`
	Payload     string    `json:"payload"`
	Priority    Priority  `json:"priority"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// OutcomeKind discriminates the JobOutcome variants.
type OutcomeKind string

const (
	OutcomeCompleted     OutcomeKind = "COMPLETED"
	OutcomeRejected      OutcomeKind = "REJECTED"
	OutcomeLinkLost      OutcomeKind = "LINK_LOST"
	OutcomeComputeFailed OutcomeKind = "COMPUTE_FAILED"
)

// Outcome reasons surfaced to callers. Kept distinct so "try later" (thermal)
// is never conflated with "lost in transit" (link).
const (
	ReasonThermalThrottling = "thermal_throttling"
	ReasonLossOfSignal      = "loss_of_signal"
)

// JobOutcome is the terminal result of one job's trip through the uplink and
// the node. Exactly one is produced per job; nothing here is retried.
type JobOutcome struct {
	JobID string      `json:"job_id"`
	Kind  OutcomeKind `json:"kind"`
	// Reason is set for REJECTED, LINK_LOST and COMPUTE_FAILED.
	Reason string `json:"reason,omitempty"`
	// Result and HeatLoadWatts are set for COMPLETED only.
	Result        string  `json:"result,omitempty"`
	HeatLoadWatts float64 `json:"heat_load_watts,omitempty"`
	// TemperatureK reflects node temperature after the decision; set for
	// COMPLETED and REJECTED.
	TemperatureK float64 `json:"temperature_k,omitempty"`
	// DelayMs is the uplink latency actually injected for this job.
	DelayMs    int       `json:"delay_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Node status strings for telemetry.
const (
	StatusNominal      = "NOMINAL"
	StatusCriticalHeat = "CRITICAL_HEAT"
)

// Decision is the most recent admission/link outcome, for the dashboard.
type Decision struct {
	Kind  OutcomeKind `json:"kind"`
	JobID string      `json:"job_id"`
	At    time.Time   `json:"at"`
}

// LinkStats are monotonically increasing counters over the process lifetime.
type LinkStats struct {
	Transmitted uint64 `json:"transmitted"`
	Delivered   uint64 `json:"delivered"`
	Lost        uint64 `json:"lost"`
	Completed   uint64 `json:"completed"`
	Rejected    uint64 `json:"rejected"`
	Failed      uint64 `json:"failed"`
}

// Telemetry is the read-only snapshot served to the dashboard and WebSocket
// clients. Celsius is derived for presentation; Kelvin is authoritative.
type Telemetry struct {
	TemperatureK         float64   `json:"temperature_k"`
	TemperatureC         float64   `json:"temperature_c"`
	ThresholdK           float64   `json:"threshold_k"`
	CoolingCapacityWatts float64   `json:"cooling_capacity_watts"`
	Status               string    `json:"status"` // NOMINAL | CRITICAL_HEAT
	LastDecision         *Decision `json:"last_decision,omitempty"`
	Link                 LinkStats `json:"link"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NodeEvent is a single append-only log entry.
type NodeEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // JOB_COMPLETED | JOB_REJECTED | LINK_LOST | COMPUTE_ERROR | OVERHEAT
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// NodeState is the persisted single-row snapshot of the thermal state, used
// to restore temperature continuity across restarts.
type NodeState struct {
	ID           int       `json:"id"`
	TemperatureK float64   `json:"temperature_k"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don't expose hash
}
