package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/convene/internal/app"
	"github.com/felixgeelhaar/convene/internal/scheduling/domain"
	"github.com/felixgeelhaar/convene/pkg/observability"
)

const defaultListLimit = 20

// ScheduleHandler serves scheduling requests and the decision audit log.
type ScheduleHandler struct {
	pipeline  *app.Pipeline
	decisions domain.DecisionRepository
	logger    *slog.Logger
}

// NewScheduleHandler creates a new schedule handler. decisions may be nil,
// in which case the audit endpoints report not found.
func NewScheduleHandler(pipeline *app.Pipeline, decisions domain.DecisionRepository, logger *slog.Logger) *ScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleHandler{
		pipeline:  pipeline,
		decisions: decisions,
		logger:    logger,
	}
}

// Schedule handles POST /api/v1/schedule. The pipeline always answers, so
// the only error responses are for requests that cannot be decoded at all.
func (h *ScheduleHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req app.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.From == "" && len(req.Attendees) == 0 {
		writeError(w, http.StatusBadRequest, "at least one attendee or a sender is required")
		return
	}

	ctx := observability.WithCorrelationID(r.Context(), r.Header.Get("X-Correlation-ID"))
	ctx = observability.WithRequestID(ctx, req.RequestID)

	decision := h.pipeline.Process(ctx, req)
	writeJSON(w, http.StatusOK, app.NewResponse(decision))
}

// decisionRecordResponse is the wire shape of one audit-log row.
type decisionRecordResponse struct {
	ID              string    `json:"id"`
	RequestID       string    `json:"requestId"`
	SlotStart       time.Time `json:"slotStart"`
	SlotEnd         time.Time `json:"slotEnd"`
	DurationMinutes int       `json:"durationMinutes"`
	ConflictCount   int       `json:"conflictCount"`
	ActionCount     int       `json:"actionCount"`
	Urgency         string    `json:"urgency"`
	Category        string    `json:"category"`
	Degraded        bool      `json:"degraded"`
	Error           string    `json:"error,omitempty"`
	DecidedAt       time.Time `json:"decidedAt"`
}

func toRecordResponses(records []domain.DecisionRecord) []decisionRecordResponse {
	out := make([]decisionRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, decisionRecordResponse{
			ID:              rec.ID.String(),
			RequestID:       rec.RequestID,
			SlotStart:       rec.SlotStart,
			SlotEnd:         rec.SlotEnd,
			DurationMinutes: rec.DurationMinutes,
			ConflictCount:   rec.ConflictCount,
			ActionCount:     rec.ActionCount,
			Urgency:         rec.Urgency,
			Category:        rec.Category,
			Degraded:        rec.Degraded,
			Error:           rec.Error,
			DecidedAt:       rec.DecidedAt,
		})
	}
	return out
}

// ListDecisions handles GET /api/v1/decisions.
func (h *ScheduleHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	if h.decisions == nil {
		writeError(w, http.StatusNotFound, "decision log not configured")
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.decisions.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list decisions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": toRecordResponses(records)})
}

// GetDecisions handles GET /api/v1/decisions/{requestID}.
func (h *ScheduleHandler) GetDecisions(w http.ResponseWriter, r *http.Request) {
	if h.decisions == nil {
		writeError(w, http.StatusNotFound, "decision log not configured")
		return
	}

	requestID := r.PathValue("requestID")
	records, err := h.decisions.FindByRequestID(r.Context(), requestID)
	if err != nil {
		h.logger.Error("failed to load decisions", "request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load decisions")
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no decisions for request")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": toRecordResponses(records)})
}
