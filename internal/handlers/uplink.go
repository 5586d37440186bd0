package handlers

import (
	"net/http"
	"time"

	orbital "orbital_node"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response status strings for the uplink surface.
const (
	statusCompleted     = "completed"
	statusRejected      = "rejected"
	statusLinkLost      = "link_lost"
	statusComputeFailed = "compute_failed"
)

// Request DTO for job submission.
type transmitRequest struct {
	Payload  string `json:"payload" binding:"required"`
	Priority string `json:"priority,omitempty"` // LOW | NORMAL | HIGH, default NORMAL
}

// TransmitRequest is an exported model for Swagger docs of the transmit payload.
type TransmitRequest struct {
	// Payload is the raw data stream to process on the node.
	Payload string `json:"payload" example:"spectrometer frame 0x4f..."`
	// Priority of the job. Allowed: LOW, NORMAL, HIGH
	Priority string `json:"priority,omitempty" example:"HIGH"`
}

// parsePriority normalizes the optional priority field.
func parsePriority(s string) (orbital.Priority, bool) {
	switch orbital.Priority(s) {
	case "":
		return orbital.PriorityNormal, true
	case orbital.PriorityLow, orbital.PriorityNormal, orbital.PriorityHigh:
		return orbital.Priority(s), true
	}
	return "", false
}

// @Summary      Submit a job through the uplink
// @Description  The job crosses the simulated lossy link before the node decides on thermal admission. Responses: 200 completed, 502 lost in transit, 503 thermal throttling.
// @Tags         uplink
// @Accept       json
// @Produce      json
// @Param        body  body   TransmitRequest  true  "Job payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]interface{}
// @Router       /api/v1/uplink/transmit [post]
// @Security     BearerAuth
func (h *Handler) transmit(c *gin.Context) {
	var req transmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	priority, ok := parsePriority(req.Priority)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority: must be LOW, NORMAL or HIGH"})
		return
	}

	job := orbital.Job{
		ID:          uuid.NewString(),
		Payload:     req.Payload,
		Priority:    priority,
		SubmittedAt: time.Now().UTC(),
	}

	out := h.services.Uplink.Transmit(c.Request.Context(), job)
	switch out.Kind {
	case orbital.OutcomeCompleted:
		c.JSON(http.StatusOK, gin.H{
			"status":              statusCompleted,
			"job_id":              out.JobID,
			"result":              out.Result,
			"heat_load_watts":     out.HeatLoadWatts,
			"temperature_after_k": out.TemperatureK,
			"delay_ms":            out.DelayMs,
		})
	case orbital.OutcomeRejected:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":        statusRejected,
			"job_id":        out.JobID,
			"reason":        out.Reason,
			"temperature_k": out.TemperatureK,
		})
	case orbital.OutcomeLinkLost:
		c.JSON(http.StatusBadGateway, gin.H{
			"status": statusLinkLost,
			"job_id": out.JobID,
		})
	default: // compute failure after admission
		if h.log != nil {
			h.log.Errorw("uplink_compute_failed", "job_id", out.JobID, "reason", out.Reason)
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": statusComputeFailed,
			"job_id": out.JobID,
			"error":  out.Reason,
		})
	}
}
