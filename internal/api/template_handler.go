// internal/api/template_handler.go
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

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- DTOs ---

// PlanTemplateRequest is the create/replace payload for a library
// template. Line items reuse the plan version request shapes.
type PlanTemplateRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Meals       []MealItemRequest     `json:"meals"`
	Exercises   []ExerciseItemRequest `json:"exercises"`
}

type PlanTemplateResponse struct {
	ID          string                 `json:"id"`
	Type        domain.PlanType        `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Meals       []domain.MealItem      `json:"meals,omitempty"`
	Exercises   []domain.ExerciseItem  `json:"exercises,omitempty"`
	Totals      *domain.MacroTotals    `json:"totals,omitempty"`
	Volume      *domain.ExerciseTotals `json:"volume,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// MapTemplateToResponse converts a domain.PlanTemplate to its DTO, with
// the same precomputed totals as plan version responses.
func MapTemplateToResponse(tpl *domain.PlanTemplate) PlanTemplateResponse {
	if tpl == nil {
		return PlanTemplateResponse{}
	}
	resp := PlanTemplateResponse{
		ID:          tpl.ID.Hex(),
		Type:        tpl.Type,
		Title:       tpl.Title,
		Description: tpl.Description,
		Meals:       tpl.Meals,
		Exercises:   tpl.Exercises,
		CreatedAt:   tpl.CreatedAt,
		UpdatedAt:   tpl.UpdatedAt,
	}
	switch tpl.Type {
	case domain.PlanTypeDiet:
		totals := domain.AggregateMeals(tpl.Meals)
		resp.Totals = &totals
	case domain.PlanTypeWorkout:
		volume := domain.AggregateExercises(tpl.Exercises)
		resp.Volume = &volume
	}
	return resp
}

func templateInputFromRequest(req PlanTemplateRequest) service.NewPlanTemplateInput {
	input := service.NewPlanTemplateInput{
		Title:       req.Title,
		Description: req.Description,
	}
	for _, m := range req.Meals {
		input.Meals = append(input.Meals, service.NewMealItemInput{
			MealType:     m.MealType,
			Name:         m.Name,
			Description:  m.Description,
			ProteinG:     float64(m.ProteinG),
			CarbsG:       float64(m.CarbsG),
			FatG:         float64(m.FatG),
			CaloriesKcal: float64(m.CaloriesKcal),
		})
	}
	for _, ex := range req.Exercises {
		input.Exercises = append(input.Exercises, service.NewExerciseItemInput{
			DayName:  ex.DayName,
			Name:     ex.Name,
			Category: ex.Category,
			Sets:     ex.Sets,
			Reps:     ex.Reps,
			Duration: ex.Duration,
			Notes:    ex.Notes,
		})
	}
	return input
}

// --- Handler Methods ---

// GetTemplates lists the authenticated trainer's library for one plan
// type.
func (h *TemplateHandler) GetTemplates(planType domain.PlanType) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainerID, ok := actorIDFromContext(c)
		if !ok {
			return
		}
		templates, err := h.templateService.GetTemplates(c.Request.Context(), trainerID, planType)
		if err != nil {
			abortTemplateError(c, err)
			return
		}
		responses := make([]PlanTemplateResponse, len(templates))
		for i := range templates {
			responses[i] = MapTemplateToResponse(&templates[i])
		}
		c.JSON(http.StatusOK, responses)
	}
}

// CreateTemplate adds a blueprint to the trainer's library.
func (h *TemplateHandler) CreateTemplate(planType domain.PlanType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlanTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
		trainerID, ok := actorIDFromContext(c)
		if !ok {
			return
		}

		tpl, err := h.templateService.CreateTemplate(c.Request.Context(), trainerID, planType, templateInputFromRequest(req))
		if err != nil {
			abortTemplateError(c, err)
			return
		}
		c.JSON(http.StatusCreated, MapTemplateToResponse(tpl))
	}
}

// GetTemplateByID returns one template with full line items.
func (h *TemplateHandler) GetTemplateByID(c *gin.Context) {
	trainerID, templateID, ok := templateTarget(c)
	if !ok {
		return
	}
	tpl, err := h.templateService.GetTemplateByID(c.Request.Context(), trainerID, templateID)
	if err != nil {
		abortTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(tpl))
}

// UpdateTemplate replaces a template's content. Plan versions already
// created from it are unaffected.
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req PlanTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, templateID, ok := templateTarget(c)
	if !ok {
		return
	}

	tpl, err := h.templateService.UpdateTemplate(c.Request.Context(), trainerID, templateID, templateInputFromRequest(req))
	if err != nil {
		abortTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(tpl))
}

// DeleteTemplate removes a template from the library.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	trainerID, templateID, ok := templateTarget(c)
	if !ok {
		return
	}
	if err := h.templateService.DeleteTemplate(c.Request.Context(), trainerID, templateID); err != nil {
		abortTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Helpers ---

func templateTarget(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	trainerID, ok := actorIDFromContext(c)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return trainerID, templateID, true
}

func abortTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process template request.")
	}
}
