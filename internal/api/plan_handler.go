// internal/api/plan_handler.go
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

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

type MealItemRequest struct {
	MealType     string       `json:"meal_type" binding:"required"`
	Name         string       `json:"name" binding:"required"`
	Description  string       `json:"description"`
	ProteinG     domain.Grams `json:"protein_g"`
	CarbsG       domain.Grams `json:"carbs_g"`
	FatG         domain.Grams `json:"fat_g"`
	CaloriesKcal domain.Grams `json:"calories_kcal"`
}

type ExerciseItemRequest struct {
	DayName  string `json:"day_name" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Sets     int    `json:"sets" binding:"omitempty,min=0"`
	Reps     int    `json:"reps" binding:"omitempty,min=0"`
	Duration int    `json:"duration" binding:"omitempty,min=0"`
	Notes    string `json:"notes"`
}

type CreatePlanVersionRequest struct {
	Title        string                `json:"title" binding:"required"`
	Description  string                `json:"description"`
	FollowedFrom string                `json:"followed_from"` // "2006-01-02", defaults to today
	Meals        []MealItemRequest     `json:"meals"`
	Exercises    []ExerciseItemRequest `json:"exercises"`
}

// PlanVersionResponse is the full version payload with its line items
// and precomputed totals.
type PlanVersionResponse struct {
	ID           string                 `json:"id"`
	ClientID     string                 `json:"client_id"`
	Type         domain.PlanType        `json:"type"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	FollowedFrom string                 `json:"followed_from"`
	FollowedTill *string                `json:"followed_till"`
	IsCurrent    bool                   `json:"is_current"`
	Meals        []domain.MealItem      `json:"meals,omitempty"`
	Exercises    []domain.ExerciseItem  `json:"exercises,omitempty"`
	Totals       *domain.MacroTotals    `json:"totals,omitempty"`
	Volume       *domain.ExerciseTotals `json:"volume,omitempty"`
}

// PlanVersionSummaryResponse is one row of the history modal: no line
// items, just identity and validity.
type PlanVersionSummaryResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	FollowedFrom string  `json:"followed_from"`
	FollowedTill *string `json:"followed_till"`
	IsCurrent    bool    `json:"is_current"`
}

const planDateLayout = "2006-01-02"

// MapPlanVersionToResponse converts a domain.PlanVersion to its full DTO.
func MapPlanVersionToResponse(v *domain.PlanVersion) PlanVersionResponse {
	if v == nil {
		return PlanVersionResponse{}
	}
	resp := PlanVersionResponse{
		ID:           v.ID.Hex(),
		ClientID:     v.ClientID.Hex(),
		Type:         v.Type,
		Title:        v.Title,
		Description:  v.Description,
		FollowedFrom: v.FollowedFrom.Format(planDateLayout),
		FollowedTill: formatOptionalDate(v.FollowedTill),
		IsCurrent:    v.IsCurrent(),
		Meals:        v.Meals,
		Exercises:    v.Exercises,
	}
	switch v.Type {
	case domain.PlanTypeDiet:
		totals := domain.AggregateMeals(v.Meals)
		resp.Totals = &totals
	case domain.PlanTypeWorkout:
		volume := domain.AggregateExercises(v.Exercises)
		resp.Volume = &volume
	}
	return resp
}

// MapPlanVersionsToSummaries converts a history list to summary rows.
func MapPlanVersionsToSummaries(versions []domain.PlanVersion) []PlanVersionSummaryResponse {
	summaries := make([]PlanVersionSummaryResponse, len(versions))
	for i := range versions {
		v := &versions[i]
		summaries[i] = PlanVersionSummaryResponse{
			ID:           v.ID.Hex(),
			Title:        v.Title,
			FollowedFrom: v.FollowedFrom.Format(planDateLayout),
			FollowedTill: formatOptionalDate(v.FollowedTill),
			IsCurrent:    v.IsCurrent(),
		}
	}
	return summaries
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(planDateLayout)
	return &s
}

// --- Handler Methods ---

// GetCurrentVersion returns the plan version the client is following
// now. 404 with ErrNoActivePlan renders as the "no active plan assigned
// yet" placeholder, not as a failure.
func (h *PlanHandler) GetCurrentVersion(planType domain.PlanType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, clientID, ok := resolvePlanTarget(c)
		if !ok {
			return
		}
		version, err := h.planService.GetCurrentVersion(c.Request.Context(), actor, clientID, planType)
		if err != nil {
			abortPlanError(c, err)
			return
		}
		c.JSON(http.StatusOK, MapPlanVersionToResponse(version))
	}
}

// GetVersions returns the version history, most recent first.
func (h *PlanHandler) GetVersions(planType domain.PlanType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, clientID, ok := resolvePlanTarget(c)
		if !ok {
			return
		}
		versions, err := h.planService.GetVersions(c.Request.Context(), actor, clientID, planType)
		if err != nil {
			abortPlanError(c, err)
			return
		}
		c.JSON(http.StatusOK, MapPlanVersionsToSummaries(versions))
	}
}

// GetVersionByID returns one version with full line items, for history
// browsing. Read-only: it never changes which version is current.
func (h *PlanHandler) GetVersionByID(c *gin.Context) {
	actor, clientID, ok := resolvePlanTarget(c)
	if !ok {
		return
	}
	versionID, err := primitive.ObjectIDFromHex(c.Param("versionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid version ID format.")
		return
	}

	version, err := h.planService.GetVersionByID(c.Request.Context(), actor, clientID, versionID)
	if err != nil {
		abortPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanVersionToResponse(version))
}

// CreateVersion creates a new plan version for a client; the prior
// current version is closed server-side in the same operation.
func (h *PlanHandler) CreateVersion(planType domain.PlanType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePlanVersionRequest
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

		input := service.NewPlanVersionInput{
			Title:       req.Title,
			Description: req.Description,
		}
		if req.FollowedFrom != "" {
			from, err := time.Parse(planDateLayout, req.FollowedFrom)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, "Invalid followed_from date; expected YYYY-MM-DD.")
				return
			}
			input.FollowedFrom = from
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

		version, err := h.planService.CreateVersion(c.Request.Context(), trainerID, clientID, planType, input)
		if err != nil {
			abortPlanError(c, err)
			return
		}
		c.JSON(http.StatusCreated, MapPlanVersionToResponse(version))
	}
}

// --- Helpers ---

// resolvePlanTarget determines whose plans the request addresses: the
// "me" routes target the authenticated client, the trainer routes carry
// an explicit clientId parameter.
func resolvePlanTarget(c *gin.Context) (service.Actor, primitive.ObjectID, bool) {
	actor, ok := actorFromContext(c)
	if !ok {
		return service.Actor{}, primitive.NilObjectID, false
	}

	param := c.Param("clientId")
	if param == "" || param == "me" {
		return actor, actor.UserID, true
	}
	clientID, err := primitive.ObjectIDFromHex(param)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return service.Actor{}, primitive.NilObjectID, false
	}
	return actor, clientID, true
}

func abortPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActivePlan), errors.Is(err, service.ErrPlanVersionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process plan request.")
	}
}
