// internal/api/measurement_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"healthyhowlz/backend/internal/domain"
	"healthyhowlz/backend/internal/service"

	"github.com/gin-gonic/gin"
)

type MeasurementHandler struct {
	clientService service.ClientService
}

func NewMeasurementHandler(clientService service.ClientService) *MeasurementHandler {
	return &MeasurementHandler{clientService: clientService}
}

// --- DTOs ---

type CreateMeasurementRequest struct {
	TakenAt    string  `json:"taken_at"` // "2006-01-02", defaults to now
	WeightKg   float64 `json:"weight_kg" binding:"omitempty,min=0"`
	BodyFatPct float64 `json:"body_fat_pct" binding:"omitempty,min=0,max=100"`
	ChestCm    float64 `json:"chest_cm" binding:"omitempty,min=0"`
	WaistCm    float64 `json:"waist_cm" binding:"omitempty,min=0"`
	HipsCm     float64 `json:"hips_cm" binding:"omitempty,min=0"`
	PhotoKey   string  `json:"photo_key"`
	Notes      string  `json:"notes"`
}

type PhotoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type MeasurementResponse struct {
	ID         string    `json:"id"`
	TakenAt    time.Time `json:"taken_at"`
	WeightKg   float64   `json:"weight_kg,omitempty"`
	BodyFatPct float64   `json:"body_fat_pct,omitempty"`
	ChestCm    float64   `json:"chest_cm,omitempty"`
	WaistCm    float64   `json:"waist_cm,omitempty"`
	HipsCm     float64   `json:"hips_cm,omitempty"`
	PhotoKey   string    `json:"photo_key,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

// MapMeasurementToResponse converts a domain.Measurement to its DTO.
func MapMeasurementToResponse(m *domain.Measurement) MeasurementResponse {
	if m == nil {
		return MeasurementResponse{}
	}
	return MeasurementResponse{
		ID:         m.ID.Hex(),
		TakenAt:    m.TakenAt,
		WeightKg:   m.WeightKg,
		BodyFatPct: m.BodyFatPct,
		ChestCm:    m.ChestCm,
		WaistCm:    m.WaistCm,
		HipsCm:     m.HipsCm,
		PhotoKey:   m.PhotoKey,
		Notes:      m.Notes,
	}
}

// --- Handler Methods ---

// LogMeasurement appends a body snapshot for the authenticated client.
func (h *MeasurementHandler) LogMeasurement(c *gin.Context) {
	var req CreateMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := actorIDFromContext(c)
	if !ok {
		return
	}

	input := service.NewMeasurementInput{
		WeightKg:   req.WeightKg,
		BodyFatPct: req.BodyFatPct,
		ChestCm:    req.ChestCm,
		WaistCm:    req.WaistCm,
		HipsCm:     req.HipsCm,
		PhotoKey:   req.PhotoKey,
		Notes:      req.Notes,
	}
	if req.TakenAt != "" {
		takenAt, err := time.Parse(planDateLayout, req.TakenAt)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid taken_at date; expected YYYY-MM-DD.")
			return
		}
		input.TakenAt = takenAt
	}

	m, err := h.clientService.LogMeasurement(c.Request.Context(), clientID, input)
	if err != nil {
		abortMeasurementError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapMeasurementToResponse(m))
}

// GetMeasurements lists snapshots within the requested date window.
// The "me" routes target the authenticated client; trainer routes carry
// an explicit clientId.
func (h *MeasurementHandler) GetMeasurements(c *gin.Context) {
	actor, clientID, ok := resolvePlanTarget(c)
	if !ok {
		return
	}
	takenRange, ok := dateRangeFromQuery(c)
	if !ok {
		return
	}

	measurements, err := h.clientService.GetMeasurements(c.Request.Context(), actor, clientID, takenRange)
	if err != nil {
		abortMeasurementError(c, err)
		return
	}

	responses := make([]MeasurementResponse, len(measurements))
	for i := range measurements {
		responses[i] = MapMeasurementToResponse(&measurements[i])
	}
	c.JSON(http.StatusOK, responses)
}

// RequestPhotoUploadURL returns a presigned PUT URL for a progress
// photo; the client uploads directly to object storage and reports the
// object key back on the next LogMeasurement call.
func (h *MeasurementHandler) RequestPhotoUploadURL(c *gin.Context) {
	var req PhotoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := actorIDFromContext(c)
	if !ok {
		return
	}

	resp, err := h.clientService.RequestPhotoUploadURL(c.Request.Context(), clientID, req.ContentType)
	if err != nil {
		abortMeasurementError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPhotoDownloadURL returns a presigned GET URL for a stored photo.
func (h *MeasurementHandler) GetPhotoDownloadURL(c *gin.Context) {
	actor, clientID, ok := resolvePlanTarget(c)
	if !ok {
		return
	}
	photoKey := c.Query("key")

	url, err := h.clientService.GetPhotoDownloadURL(c.Request.Context(), actor, clientID, photoKey)
	if err != nil {
		abortMeasurementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

func abortMeasurementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMeasurementAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadURLError), errors.Is(err, service.ErrDownloadURLError):
		abortWithError(c, http.StatusBadGateway, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process measurement request.")
	}
}
