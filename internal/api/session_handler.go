// internal/api/session_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"healthyhowlz/backend/internal/domain"
	"healthyhowlz/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- DTOs ---

// CreateSessionRequest is one tuple of the batch booking form. The
// whole request body is an array of these, all for one client.
type CreateSessionRequest struct {
	ClientID    string `json:"client_id" binding:"required"`
	SessionDate string `json:"session_date" binding:"required"` // "2006-01-02"
	StartTime   string `json:"start_time" binding:"required"`   // "15:04"
	EndTime     string `json:"end_time" binding:"required"`
	Notes       string `json:"notes"`
}

// PatchSessionRequest updates a session's status and/or notes. A status
// of skipped_by_trainer or skipped_by_client names the skip actor
// explicitly; the engine never infers it.
type PatchSessionRequest struct {
	Status *domain.SessionStatus `json:"status"`
	Notes  *string               `json:"notes"`
}

type SessionResponse struct {
	ID          string               `json:"id"`
	TrainerID   string               `json:"trainer_id"`
	ClientID    string               `json:"client_id"`
	SessionDate string               `json:"session_date"`
	StartTime   string               `json:"start_time"`
	EndTime     string               `json:"end_time"`
	Status      domain.SessionStatus `json:"status"`
	Notes       string               `json:"notes,omitempty"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// MapSessionToResponse converts a domain.SessionSlot to its DTO.
func MapSessionToResponse(s *domain.SessionSlot) SessionResponse {
	if s == nil {
		return SessionResponse{}
	}
	return SessionResponse{
		ID:          s.ID.Hex(),
		TrainerID:   s.TrainerID.Hex(),
		ClientID:    s.ClientID.Hex(),
		SessionDate: s.SessionDate.Format(planDateLayout),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Status:      s.Status,
		Notes:       s.Notes,
		UpdatedAt:   s.UpdatedAt,
	}
}

// MapSessionsToResponse converts a slice of slots to DTOs.
func MapSessionsToResponse(slots []domain.SessionSlot) []SessionResponse {
	responses := make([]SessionResponse, len(slots))
	for i := range slots {
		responses[i] = MapSessionToResponse(&slots[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateSessions books a batch of slots for one client in a single
// call. All tuples must name the same client.
func (h *SessionHandler) CreateSessions(c *gin.Context) {
	var reqs []CreateSessionRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if len(reqs) == 0 {
		abortWithError(c, http.StatusBadRequest, "At least one session slot is required.")
		return
	}

	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return
	}

	clientID, err := primitive.ObjectIDFromHex(reqs[0].ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	inputs := make([]service.NewSessionSlotInput, len(reqs))
	for i, req := range reqs {
		if req.ClientID != reqs[0].ClientID {
			abortWithError(c, http.StatusBadRequest, "All slots in one batch must be for the same client.")
			return
		}
		date, err := time.Parse(planDateLayout, req.SessionDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid session_date; expected YYYY-MM-DD.")
			return
		}
		inputs[i] = service.NewSessionSlotInput{
			SessionDate: date,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Notes:       req.Notes,
		}
	}

	slots, err := h.sessionService.ScheduleSessions(c.Request.Context(), trainerID, clientID, inputs)
	if err != nil {
		abortSessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionsToResponse(slots))
}

// GetTrainerSessions lists the authenticated trainer's slots within the
// requested date window.
func (h *SessionHandler) GetTrainerSessions(c *gin.Context) {
	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return
	}
	dateRange, ok := dateRangeFromQuery(c)
	if !ok {
		return
	}

	slots, err := h.sessionService.GetTrainerSessions(c.Request.Context(), trainerID, dateRange)
	if err != nil {
		abortSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionsToResponse(slots))
}

// GetMySessions lists the authenticated client's slots within the
// requested date window.
func (h *SessionHandler) GetMySessions(c *gin.Context) {
	clientID, ok := actorIDFromContext(c)
	if !ok {
		return
	}
	dateRange, ok := dateRangeFromQuery(c)
	if !ok {
		return
	}

	slots, err := h.sessionService.GetClientSessions(c.Request.Context(), clientID, dateRange)
	if err != nil {
		abortSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionsToResponse(slots))
}

// PatchSession transitions a slot's status and/or edits its notes.
// Transitions out of a terminal status are rejected with 409 before
// any write is dispatched.
func (h *SessionHandler) PatchSession(c *gin.Context) {
	var req PatchSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if req.Status == nil && req.Notes == nil {
		abortWithError(c, http.StatusBadRequest, "Nothing to update: provide status or notes.")
		return
	}

	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	var slot *domain.SessionSlot
	if req.Status != nil {
		switch *req.Status {
		case domain.SessionSkippedByTrainer:
			slot, err = h.sessionService.SkipSession(c.Request.Context(), trainerID, sessionID, domain.SkipByTrainer)
		case domain.SessionSkippedByClient:
			slot, err = h.sessionService.SkipSession(c.Request.Context(), trainerID, sessionID, domain.SkipByClient)
		default:
			slot, err = h.sessionService.UpdateStatus(c.Request.Context(), trainerID, sessionID, *req.Status)
		}
		if err != nil {
			abortSessionError(c, err)
			return
		}
	}
	if req.Notes != nil {
		slot, err = h.sessionService.UpdateNotes(c.Request.Context(), trainerID, sessionID, *req.Notes)
		if err != nil {
			abortSessionError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, MapSessionToResponse(slot))
}

// DeleteSession hard-deletes a slot. Allowed from any status, terminal
// ones included.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), trainerID, sessionID); err != nil {
		abortSessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Helpers ---

// dateRangeFromQuery builds a half-open range from start_date/end_date
// query params. end_date is inclusive on the wire (the calendar sends
// the week's last day), so the range's Until is the following midnight.
func dateRangeFromQuery(c *gin.Context) (domain.TimeRange, bool) {
	var r domain.TimeRange
	if start := c.Query("start_date"); start != "" {
		from, err := time.Parse(planDateLayout, start)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid start_date; expected YYYY-MM-DD.")
			return domain.TimeRange{}, false
		}
		r.From = from
	}
	if end := c.Query("end_date"); end != "" {
		till, err := time.Parse(planDateLayout, end)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid end_date; expected YYYY-MM-DD.")
			return domain.TimeRange{}, false
		}
		until := till.AddDate(0, 0, 1)
		r.Until = &until
	}
	return r, true
}

func abortSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrInvalidSkipActor):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientNotRole), errors.Is(err, service.ErrClientNotManaged), errors.Is(err, service.ErrSessionAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process session request.")
	}
}
