package repository

import (
	"context" // Standard for request-scoped deadlines, cancellation signals, etc.
	"time"

	"healthyhowlz/backend/internal/domain" // Import our defined domain models

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer (optional but good practice)
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	// Add more specific errors as needed
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
	SetSessionAllotment(ctx context.Context, clientID primitive.ObjectID, allotment int) error
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) error
}

// PlanVersionRepository defines the interface for interacting with plan
// version data. Versions are append-only in normal flow: creating a new
// one closes the prior current version; nothing is edited in place.
type PlanVersionRepository interface {
	Create(ctx context.Context, version *domain.PlanVersion) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanVersion, error)
	GetByClientAndType(ctx context.Context, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanVersion, error)
	// CloseVersion sets followedTill on an open version, ending its
	// validity range at till.
	CloseVersion(ctx context.Context, id primitive.ObjectID, till time.Time) error
}

// TemplateRepository defines the interface for interacting with a
// trainer's reusable plan templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.PlanTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTemplate, error)
	GetByTrainerAndType(ctx context.Context, trainerID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanTemplate, error)
	Update(ctx context.Context, tpl *domain.PlanTemplate) error
	Delete(ctx context.Context, id, trainerID primitive.ObjectID) error
}

// SessionRepository defines the interface for interacting with
// scheduled session slots.
type SessionRepository interface {
	CreateMany(ctx context.Context, slots []domain.SessionSlot) ([]domain.SessionSlot, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionSlot, error)
	GetByTrainerAndRange(ctx context.Context, trainerID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error)
	GetByClientAndRange(ctx context.Context, clientID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error)
	GetByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.SessionSlot, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus) error
	UpdateNotes(ctx context.Context, id primitive.ObjectID, notes string) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error // Ensure trainer owns the slot
}

// MeasurementRepository defines the interface for interacting with body
// measurement snapshots.
type MeasurementRepository interface {
	Create(ctx context.Context, m *domain.Measurement) (primitive.ObjectID, error)
	GetByClientAndRange(ctx context.Context, clientID primitive.ObjectID, takenRange domain.TimeRange) ([]domain.Measurement, error)
}
