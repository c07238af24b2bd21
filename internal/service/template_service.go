package service

import (
	"context"
	"errors"
	"fmt"

	"healthyhowlz/backend/internal/domain"
	"healthyhowlz/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound = errors.New("plan template not found")
)

// NewPlanTemplateInput is the payload for creating or replacing a
// template. Line items share their shape with plan version input, so
// the builder UI can submit either without translation.
type NewPlanTemplateInput struct {
	Title       string
	Description string
	Meals       []NewMealItemInput
	Exercises   []NewExerciseItemInput
}

// --- Service Interface ---
type TemplateService interface {
	// CreateTemplate adds a blueprint to the trainer's library.
	CreateTemplate(ctx context.Context, trainerID primitive.ObjectID, planType domain.PlanType, input NewPlanTemplateInput) (*domain.PlanTemplate, error)
	// GetTemplates lists the trainer's library for one plan type.
	GetTemplates(ctx context.Context, trainerID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanTemplate, error)
	GetTemplateByID(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.PlanTemplate, error)
	// UpdateTemplate replaces a template's content. Plan versions already
	// created from it keep their own copies and are not affected.
	UpdateTemplate(ctx context.Context, trainerID, templateID primitive.ObjectID, input NewPlanTemplateInput) (*domain.PlanTemplate, error)
	DeleteTemplate(ctx context.Context, trainerID, templateID primitive.ObjectID) error
}

// --- Service Implementation ---

type templateService struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(templateRepo repository.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

// CreateTemplate validates and stores a new library template. The same
// calorie derivation as plan versions applies: macros overwrite a typed
// calorie figure on each meal line.
func (s *templateService) CreateTemplate(ctx context.Context, trainerID primitive.ObjectID, planType domain.PlanType, input NewPlanTemplateInput) (*domain.PlanTemplate, error) {
	if err := validateTemplateInput(trainerID, planType, input); err != nil {
		return nil, err
	}

	tpl := &domain.PlanTemplate{
		TrainerID:   trainerID,
		Type:        planType,
		Title:       input.Title,
		Description: input.Description,
		Meals:       buildMealItems(input.Meals),
		Exercises:   buildExerciseItems(input.Exercises),
	}
	id, err := s.templateRepo.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	tpl.ID = id
	return tpl, nil
}

// GetTemplates lists the trainer's library for one plan type.
func (s *templateService) GetTemplates(ctx context.Context, trainerID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanTemplate, error) {
	if trainerID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: trainer ID is required", ErrValidation)
	}
	return s.templateRepo.GetByTrainerAndType(ctx, trainerID, planType)
}

// GetTemplateByID returns one template with its full line items.
func (s *templateService) GetTemplateByID(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.PlanTemplate, error) {
	return s.getOwnedTemplate(ctx, trainerID, templateID)
}

// UpdateTemplate replaces a template's title, description, and items.
func (s *templateService) UpdateTemplate(ctx context.Context, trainerID, templateID primitive.ObjectID, input NewPlanTemplateInput) (*domain.PlanTemplate, error) {
	existing, err := s.getOwnedTemplate(ctx, trainerID, templateID)
	if err != nil {
		return nil, err
	}
	if err := validateTemplateInput(trainerID, existing.Type, input); err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Meals = buildMealItems(input.Meals)
	existing.Exercises = buildExerciseItems(input.Exercises)

	if err := s.templateRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteTemplate removes a template from the library.
func (s *templateService) DeleteTemplate(ctx context.Context, trainerID, templateID primitive.ObjectID) error {
	if trainerID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return fmt.Errorf("%w: trainer ID and template ID are required", ErrValidation)
	}
	err := s.templateRepo.Delete(ctx, templateID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

// getOwnedTemplate loads a template and checks the trainer owns it. A
// template belonging to another trainer is reported as not found.
func (s *templateService) getOwnedTemplate(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.PlanTemplate, error) {
	if trainerID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: trainer ID and template ID are required", ErrValidation)
	}
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.TrainerID != trainerID {
		return nil, ErrTemplateNotFound
	}
	return tpl, nil
}

func validateTemplateInput(trainerID primitive.ObjectID, planType domain.PlanType, input NewPlanTemplateInput) error {
	if trainerID == primitive.NilObjectID {
		return fmt.Errorf("%w: trainer ID is required", ErrValidation)
	}
	if input.Title == "" {
		return fmt.Errorf("%w: template title is required", ErrValidation)
	}
	switch planType {
	case domain.PlanTypeDiet:
		if len(input.Meals) == 0 {
			return fmt.Errorf("%w: a diet template needs at least one meal", ErrValidation)
		}
	case domain.PlanTypeWorkout:
		if len(input.Exercises) == 0 {
			return fmt.Errorf("%w: a workout template needs at least one exercise", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown plan type %q", ErrValidation, planType)
	}
	return nil
}
