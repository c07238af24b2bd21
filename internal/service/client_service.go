package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"healthyhowlz/backend/internal/domain"
	"healthyhowlz/backend/internal/repository"
	"healthyhowlz/backend/internal/storage"

	"github.com/google/uuid" // For generating unique identifiers for S3 keys
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMeasurementAccessDenied = errors.New("access denied to these measurements")
	ErrUploadURLError          = errors.New("failed to generate upload URL")
	ErrDownloadURLError        = errors.New("failed to generate download URL")
)

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key client reports back when saving the measurement
}

// NewMeasurementInput is one body snapshot as submitted by the
// measurements screen.
type NewMeasurementInput struct {
	TakenAt    time.Time
	WeightKg   float64
	BodyFatPct float64
	ChestCm    float64
	WaistCm    float64
	HipsCm     float64
	PhotoKey   string
	Notes      string
}

// --- Service Interface ---
type ClientService interface {
	// Measurement tracking
	LogMeasurement(ctx context.Context, clientID primitive.ObjectID, input NewMeasurementInput) (*domain.Measurement, error)
	GetMeasurements(ctx context.Context, actor Actor, clientID primitive.ObjectID, takenRange domain.TimeRange) ([]domain.Measurement, error)

	// Progress photo upload/viewing via presigned object storage URLs.
	// The photos themselves are opaque here; nothing inspects them.
	RequestPhotoUploadURL(ctx context.Context, clientID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	GetPhotoDownloadURL(ctx context.Context, actor Actor, clientID primitive.ObjectID, photoKey string) (string, error)
}

// --- Service Implementation ---

// clientService implements the ClientService interface.
type clientService struct {
	measurementRepo repository.MeasurementRepository
	userRepo        repository.UserRepository
	fileStorage     storage.FileStorage
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	measurementRepo repository.MeasurementRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
) ClientService {
	return &clientService{
		measurementRepo: measurementRepo,
		userRepo:        userRepo,
		fileStorage:     fileStorage,
	}
}

// === Measurement Tracking ===

// LogMeasurement appends a new body snapshot for the client.
func (s *clientService) LogMeasurement(ctx context.Context, clientID primitive.ObjectID, input NewMeasurementInput) (*domain.Measurement, error) {
	if clientID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: client ID is required", ErrValidation)
	}
	if input.WeightKg < 0 || input.BodyFatPct < 0 || input.ChestCm < 0 || input.WaistCm < 0 || input.HipsCm < 0 {
		return nil, fmt.Errorf("%w: measurement values cannot be negative", ErrValidation)
	}
	// An omitted taken_at means "right now". Storing the zero time would
	// park the snapshot outside every date-range query.
	if input.TakenAt.IsZero() {
		input.TakenAt = time.Now().UTC()
	}

	m := &domain.Measurement{
		ClientID:   clientID,
		TakenAt:    input.TakenAt,
		WeightKg:   input.WeightKg,
		BodyFatPct: input.BodyFatPct,
		ChestCm:    input.ChestCm,
		WaistCm:    input.WaistCm,
		HipsCm:     input.HipsCm,
		PhotoKey:   input.PhotoKey,
		Notes:      input.Notes,
	}
	id, err := s.measurementRepo.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

// GetMeasurements returns a client's snapshots within a range. Clients
// see their own; trainers see their managed clients'.
func (s *clientService) GetMeasurements(ctx context.Context, actor Actor, clientID primitive.ObjectID, takenRange domain.TimeRange) ([]domain.Measurement, error) {
	if err := s.authorizeMeasurementAccess(ctx, actor, clientID); err != nil {
		return nil, err
	}
	return s.measurementRepo.GetByClientAndRange(ctx, clientID, takenRange)
}

// === Progress Photos ===

// RequestPhotoUploadURL generates a presigned URL for a client to
// upload a progress photo directly to object storage.
func (s *clientService) RequestPhotoUploadURL(ctx context.Context, clientID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if clientID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: client ID is required", ErrValidation)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: progress photos must be images", ErrValidation)
	}

	// Key layout: measurements/<clientID>/<uuid> keeps one client's
	// photos under a single prefix.
	objectKey := path.Join("measurements", clientID.Hex(), uuid.NewString())

	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: url, ObjectKey: objectKey}, nil
}

// GetPhotoDownloadURL generates a presigned viewing URL for a stored
// progress photo.
func (s *clientService) GetPhotoDownloadURL(ctx context.Context, actor Actor, clientID primitive.ObjectID, photoKey string) (string, error) {
	if photoKey == "" {
		return "", fmt.Errorf("%w: photo key is required", ErrValidation)
	}
	if err := s.authorizeMeasurementAccess(ctx, actor, clientID); err != nil {
		return "", err
	}
	// The key must sit under the client's own prefix; anything else is
	// a probe for another client's photos.
	if !strings.HasPrefix(photoKey, path.Join("measurements", clientID.Hex())+"/") {
		return "", ErrMeasurementAccessDenied
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, photoKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return url, nil
}

func (s *clientService) authorizeMeasurementAccess(ctx context.Context, actor Actor, clientID primitive.ObjectID) error {
	switch actor.Role {
	case domain.RoleClient:
		if actor.UserID != clientID {
			return ErrMeasurementAccessDenied
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
			return ErrMeasurementAccessDenied
		}
		return nil
	default:
		return ErrMeasurementAccessDenied
	}
}
