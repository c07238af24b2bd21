// internal/api/trainer_handler.go
package api

import (
	"errors"
	"net/http"

	"healthyhowlz/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrainerHandler struct {
	trainerService service.TrainerService
	sessionService service.SessionService
}

func NewTrainerHandler(trainerService service.TrainerService, sessionService service.SessionService) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
		sessionService: sessionService,
	}
}

// --- DTOs for Client Management ---

type AddClientRequest struct {
	ClientEmail      string `json:"clientEmail" binding:"required,email"`
	SessionAllotment int    `json:"sessionAllotment" binding:"omitempty,min=0"`
}

type SetAllotmentRequest struct {
	SessionAllotment *int `json:"sessionAllotment" binding:"required,min=0"`
}

// ClientSummaryResponse is one roster row: the client plus the derived
// session numbers the roster cards render.
type ClientSummaryResponse struct {
	UserResponse
	CompletedSessions int     `json:"completed_sessions"`
	TotalSessions     int     `json:"total_sessions"`
	ProgressPercent   float64 `json:"progress_percent"`
}

// RosterStatsResponse carries just the derived numbers, for actions
// that return fresh stats without the full client record.
type RosterStatsResponse struct {
	CompletedSessions int     `json:"completed_sessions"`
	TotalSessions     int     `json:"total_sessions"`
	ProgressPercent   float64 `json:"progress_percent"`
}

// MapClientSummaryToResponse converts a service.ClientSummary to its DTO.
func MapClientSummaryToResponse(cs *service.ClientSummary) ClientSummaryResponse {
	if cs == nil {
		return ClientSummaryResponse{}
	}
	return ClientSummaryResponse{
		UserResponse:      MapUserToResponse(&cs.Client),
		CompletedSessions: cs.Stats.CompletedSessions,
		TotalSessions:     cs.Stats.TotalSessions,
		ProgressPercent:   cs.Stats.ProgressPercent,
	}
}

// --- Handler Methods ---

// AddClientByEmail associates an existing client user with the
// authenticated trainer and records their session allotment.
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return
	}

	client, err := h.trainerService.AddClientByEmail(c.Request.Context(), trainerID, req.ClientEmail, req.SessionAllotment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotRole):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrClientAlreadyAssigned):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients retrieves the trainer's roster with per-client
// session stats.
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return
	}

	summaries, err := h.trainerService.GetManagedClients(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed clients.")
		return
	}

	responses := make([]ClientSummaryResponse, len(summaries))
	for i := range summaries {
		responses[i] = MapClientSummaryToResponse(&summaries[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetClientDetail retrieves one managed client with fresh stats.
func (h *TrainerHandler) GetClientDetail(c *gin.Context) {
	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	summary, err := h.trainerService.GetClientDetail(c.Request.Context(), trainerID, clientID)
	if err != nil {
		abortTrainerClientError(c, err, "Failed to retrieve client.")
		return
	}
	c.JSON(http.StatusOK, MapClientSummaryToResponse(summary))
}

// SetSessionAllotment updates the session ceiling for a managed client.
func (h *TrainerHandler) SetSessionAllotment(c *gin.Context) {
	var req SetAllotmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	if err := h.trainerService.SetSessionAllotment(c.Request.Context(), trainerID, clientID, *req.SessionAllotment); err != nil {
		abortTrainerClientError(c, err, "Failed to update session allotment.")
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteNextSession marks the client's earliest scheduled slot
// completed and returns the recomputed roster stats. Backs the one-tap
// complete action on the client detail screen.
func (h *TrainerHandler) CompleteNextSession(c *gin.Context) {
	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	stats, err := h.sessionService.CompleteNextScheduled(c.Request.Context(), trainerID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoScheduledSession):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortTrainerClientError(c, err, "Failed to complete session.")
		}
		return
	}
	c.JSON(http.StatusOK, RosterStatsResponse{
		CompletedSessions: stats.CompletedSessions,
		TotalSessions:     stats.TotalSessions,
		ProgressPercent:   stats.ProgressPercent,
	})
}

// --- Helpers ---

// actorIDFromContext extracts the authenticated user's ObjectID set by
// AuthMiddleware, aborting the request on failure.
func actorIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// actorFromContext builds the service-layer acting identity from the
// validated token claims.
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	id, ok := actorIDFromContext(c)
	if !ok {
		return service.Actor{}, false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user role from token.")
		return service.Actor{}, false
	}
	return service.Actor{UserID: id, Role: role}, true
}

// abortTrainerClientError maps the shared client-ownership errors to
// HTTP codes.
func abortTrainerClientError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientNotRole), errors.Is(err, service.ErrClientNotManaged):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
