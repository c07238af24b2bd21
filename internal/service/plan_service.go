package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthyhowlz/backend/internal/domain"
	"healthyhowlz/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	// ErrNoActivePlan maps to an empty/placeholder state on the client,
	// never to a failure banner.
	ErrNoActivePlan        = errors.New("no active plan assigned yet")
	ErrPlanVersionNotFound = errors.New("plan version not found")
	ErrPlanAccessDenied    = errors.New("access denied to this plan")

	// ErrValidation marks malformed input to a mutating operation.
	// Raised before anything is written; wrapped with a reason.
	ErrValidation = errors.New("validation error")
)

// Actor is the authenticated identity a request acts as. Threading it
// explicitly through every operation keeps the services free of ambient
// auth state and independently testable.
type Actor struct {
	UserID primitive.ObjectID
	Role   domain.Role
}

// NewMealItemInput is one meal line of a new diet plan version as
// submitted by the builder UI.
type NewMealItemInput struct {
	MealType     string
	Name         string
	Description  string
	ProteinG     float64
	CarbsG       float64
	FatG         float64
	CaloriesKcal float64
}

// NewExerciseItemInput is one exercise line of a new workout plan version.
type NewExerciseItemInput struct {
	DayName  string
	Name     string
	Category string
	Sets     int
	Reps     int
	Duration int
	Notes    string
}

// NewPlanVersionInput is the payload for creating a plan version.
type NewPlanVersionInput struct {
	Title        string
	Description  string
	FollowedFrom time.Time // zero value means "from today"
	Meals        []NewMealItemInput
	Exercises    []NewExerciseItemInput
}

// --- Service Interface ---
type PlanService interface {
	// GetCurrentVersion resolves the version the client is following now.
	GetCurrentVersion(ctx context.Context, actor Actor, clientID primitive.ObjectID, planType domain.PlanType) (*domain.PlanVersion, error)
	// GetVersions returns the full history, most recent followedFrom first.
	GetVersions(ctx context.Context, actor Actor, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanVersion, error)
	// GetVersionByID is the history point lookup; read-only, it never
	// changes which version is current.
	GetVersionByID(ctx context.Context, actor Actor, clientID, versionID primitive.ObjectID) (*domain.PlanVersion, error)
	// CreateVersion creates a new version and closes the prior current
	// one in the same operation.
	CreateVersion(ctx context.Context, trainerID, clientID primitive.ObjectID, planType domain.PlanType, input NewPlanVersionInput) (*domain.PlanVersion, error)
}

// --- Service Implementation ---

type planService struct {
	planRepo repository.PlanVersionRepository
	userRepo repository.UserRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanVersionRepository, userRepo repository.UserRepository) PlanService {
	return &planService{
		planRepo: planRepo,
		userRepo: userRepo,
	}
}

// authorizeClientAccess checks that actor may read plans belonging to
// clientID: clients see only their own, trainers only managed clients'.
func (s *planService) authorizeClientAccess(ctx context.Context, actor Actor, clientID primitive.ObjectID) error {
	switch actor.Role {
	case domain.RoleClient:
		if actor.UserID != clientID {
			return ErrPlanAccessDenied
		}
		return nil
	case domain.RoleTrainer:
		client, err := s.userRepo.GetByID(ctx, clientID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		if client.TrainerID == nil || *client.TrainerID != actor.UserID {
			return ErrPlanAccessDenied
		}
		return nil
	default:
		return ErrPlanAccessDenied
	}
}

// GetCurrentVersion resolves the client's current plan version.
func (s *planService) GetCurrentVersion(ctx context.Context, actor Actor, clientID primitive.ObjectID, planType domain.PlanType) (*domain.PlanVersion, error) {
	if err := s.authorizeClientAccess(ctx, actor, clientID); err != nil {
		return nil, err
	}
	versions, err := s.planRepo.GetByClientAndType(ctx, clientID, planType)
	if err != nil {
		return nil, err
	}
	current, err := domain.ResolveCurrent(versions)
	if err != nil {
		if errors.Is(err, domain.ErrNoCurrentVersion) {
			return nil, ErrNoActivePlan
		}
		return nil, err
	}
	return current, nil
}

// GetVersions returns the client's version history for one plan type.
func (s *planService) GetVersions(ctx context.Context, actor Actor, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanVersion, error) {
	if err := s.authorizeClientAccess(ctx, actor, clientID); err != nil {
		return nil, err
	}
	versions, err := s.planRepo.GetByClientAndType(ctx, clientID, planType)
	if err != nil {
		return nil, err
	}
	domain.SortVersions(versions)
	return versions, nil
}

// GetVersionByID returns one version with its full line items.
func (s *planService) GetVersionByID(ctx context.Context, actor Actor, clientID, versionID primitive.ObjectID) (*domain.PlanVersion, error) {
	if err := s.authorizeClientAccess(ctx, actor, clientID); err != nil {
		return nil, err
	}
	version, err := s.planRepo.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanVersionNotFound
		}
		return nil, err
	}
	// A version id from another client's history is indistinguishable
	// from a missing one.
	if version.ClientID != clientID {
		return nil, ErrPlanVersionNotFound
	}
	return version, nil
}

// CreateVersion creates a new plan version for a client. The prior
// current version (if any) is closed at the new version's followedFrom,
// preserving the single-open-version invariant and non-overlapping
// validity ranges.
func (s *planService) CreateVersion(ctx context.Context, trainerID, clientID primitive.ObjectID, planType domain.PlanType, input NewPlanVersionInput) (*domain.PlanVersion, error) {
	if trainerID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: trainer ID and client ID are required", ErrValidation)
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: plan title is required", ErrValidation)
	}
	switch planType {
	case domain.PlanTypeDiet:
		if len(input.Meals) == 0 {
			return nil, fmt.Errorf("%w: a diet plan needs at least one meal", ErrValidation)
		}
	case domain.PlanTypeWorkout:
		if len(input.Exercises) == 0 {
			return nil, fmt.Errorf("%w: a workout plan needs at least one exercise", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown plan type %q", ErrValidation, planType)
	}

	if err := s.authorizeClientAccess(ctx, Actor{UserID: trainerID, Role: domain.RoleTrainer}, clientID); err != nil {
		return nil, err
	}

	followedFrom := input.FollowedFrom
	if followedFrom.IsZero() {
		followedFrom = time.Now().UTC().Truncate(24 * time.Hour)
	}

	existing, err := s.planRepo.GetByClientAndType(ctx, clientID, planType)
	if err != nil {
		return nil, err
	}
	current, resolveErr := domain.ResolveCurrent(existing)
	if resolveErr == nil && current.IsCurrent() {
		// The new version must start at or after the current one, or
		// the two validity ranges would overlap.
		if followedFrom.Before(current.FollowedFrom) {
			return nil, fmt.Errorf("%w: new version starts before the current one", ErrValidation)
		}
	}
	// The new version is open-ended from followedFrom, so any closed
	// version whose range reaches past that instant would overlap it.
	// The open current version is exempt: it gets closed at followedFrom
	// below.
	newRange := domain.TimeRange{From: followedFrom}
	for i := range existing {
		v := &existing[i]
		if v.IsCurrent() {
			continue
		}
		if newRange.Overlaps(v.Range()) {
			return nil, fmt.Errorf("%w: new version overlaps the version followed from %s",
				ErrValidation, v.FollowedFrom.Format("2006-01-02"))
		}
	}

	version := &domain.PlanVersion{
		TrainerID:    trainerID,
		ClientID:     clientID,
		Type:         planType,
		Title:        input.Title,
		Description:  input.Description,
		FollowedFrom: followedFrom,
		Meals:        buildMealItems(input.Meals),
		Exercises:    buildExerciseItems(input.Exercises),
	}

	// Close the prior current version first so at most one open version
	// exists once the insert lands.
	if resolveErr == nil && current.IsCurrent() {
		if err := s.planRepo.CloseVersion(ctx, current.ID, followedFrom); err != nil &&
			!errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	id, err := s.planRepo.Create(ctx, version)
	if err != nil {
		return nil, err
	}
	version.ID = id
	return version, nil
}

// buildMealItems converts builder input into meal line items, applying
// the calorie derivation rule: whenever any macro is supplied, the
// derived 4p+4c+9f figure overwrites a manually typed calorie value.
// A meal with no macros at all keeps whatever calories were entered.
func buildMealItems(inputs []NewMealItemInput) []domain.MealItem {
	if len(inputs) == 0 {
		return nil
	}
	meals := make([]domain.MealItem, len(inputs))
	for i, in := range inputs {
		kcal := in.CaloriesKcal
		if in.ProteinG != 0 || in.CarbsG != 0 || in.FatG != 0 {
			kcal = float64(domain.DeriveCalories(in.ProteinG, in.CarbsG, in.FatG))
		}
		meals[i] = domain.MealItem{
			MealType:     in.MealType,
			Name:         in.Name,
			Description:  in.Description,
			ProteinG:     domain.Grams(in.ProteinG),
			CarbsG:       domain.Grams(in.CarbsG),
			FatG:         domain.Grams(in.FatG),
			CaloriesKcal: domain.Grams(kcal),
		}
	}
	return meals
}

func buildExerciseItems(inputs []NewExerciseItemInput) []domain.ExerciseItem {
	if len(inputs) == 0 {
		return nil
	}
	exercises := make([]domain.ExerciseItem, len(inputs))
	for i, in := range inputs {
		exercises[i] = domain.ExerciseItem{
			DayName:  in.DayName,
			Name:     in.Name,
			Category: in.Category,
			Sets:     in.Sets,
			Reps:     in.Reps,
			Duration: in.Duration,
			Notes:    in.Notes,
		}
	}
	return exercises
}
