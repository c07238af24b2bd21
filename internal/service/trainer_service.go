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
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a trainer")
	ErrClientNotManaged      = errors.New("client is not managed by this trainer")
)

// ClientSummary is a roster row: the client plus their derived session
// stats. Stats are recomputed on every call, never cached, so they
// cannot go stale across transitions or deletions.
type ClientSummary struct {
	Client domain.User
	Stats  domain.RosterStats
}

// --- Service Interface ---
type TrainerService interface {
	// Client Management
	AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string, sessionAllotment int) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]ClientSummary, error)
	GetClientDetail(ctx context.Context, trainerID, clientID primitive.ObjectID) (*ClientSummary, error)
	SetSessionAllotment(ctx context.Context, trainerID, clientID primitive.ObjectID, allotment int) error
}

// --- Service Implementation ---

// trainerService implements the TrainerService interface.
type trainerService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) TrainerService {
	return &trainerService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// === Client Management ===

// AddClientByEmail finds a client by email and assigns them to the
// trainer, recording the session allotment their subscription covers.
func (s *trainerService) AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string, sessionAllotment int) (*domain.User, error) {
	// 1. Validate Input
	if trainerID == primitive.NilObjectID || clientEmail == "" {
		return nil, fmt.Errorf("%w: trainer ID and client email are required", ErrValidation)
	}
	if sessionAllotment < 0 {
		return nil, fmt.Errorf("%w: session allotment cannot be negative", ErrValidation)
	}

	// 2. Find the potential client user
	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err // Propagate other errors
	}

	// 3. Verify the user is actually a client
	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	// 4. Check if the client is already assigned to any trainer
	if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
		if *client.TrainerID == trainerID {
			// Already managed by this trainer; treat as a no-op success.
			return client, nil
		}
		// Assigned to a DIFFERENT trainer
		return nil, ErrClientAlreadyAssigned
	}

	// 5. Assign client to trainer (update both records)
	err = s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID)
	if err != nil {
		return nil, err
	}
	err = s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID)
	if err != nil {
		return nil, err
	}
	if sessionAllotment > 0 {
		if err := s.userRepo.SetSessionAllotment(ctx, client.ID, sessionAllotment); err != nil {
			return nil, err
		}
		client.SessionAllotment = sessionAllotment
	}

	client.TrainerID = &trainerID // Update in memory object for return
	return client, nil
}

// GetManagedClients retrieves the trainer's roster with derived session
// stats per client.
func (s *trainerService) GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]ClientSummary, error) {
	if trainerID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: trainer ID is required", ErrValidation)
	}
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ClientSummary, 0, len(clients))
	for i := range clients {
		clients[i].PasswordHash = ""
		sessions, err := s.sessionRepo.GetByClient(ctx, clients[i].ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ClientSummary{
			Client: clients[i],
			Stats:  domain.AggregateRoster(sessions, clients[i].SessionAllotment),
		})
	}
	return summaries, nil
}

// GetClientDetail retrieves one managed client with fresh stats.
func (s *trainerService) GetClientDetail(ctx context.Context, trainerID, clientID primitive.ObjectID) (*ClientSummary, error) {
	client, err := s.getManagedClient(ctx, trainerID, clientID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.GetByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	client.PasswordHash = ""
	return &ClientSummary{
		Client: *client,
		Stats:  domain.AggregateRoster(sessions, client.SessionAllotment),
	}, nil
}

// SetSessionAllotment updates the session ceiling for a managed client,
// e.g. when they renew or change their subscription.
func (s *trainerService) SetSessionAllotment(ctx context.Context, trainerID, clientID primitive.ObjectID, allotment int) error {
	if allotment < 0 {
		return fmt.Errorf("%w: session allotment cannot be negative", ErrValidation)
	}
	if _, err := s.getManagedClient(ctx, trainerID, clientID); err != nil {
		return err
	}
	return s.userRepo.SetSessionAllotment(ctx, clientID, allotment)
}

func (s *trainerService) getManagedClient(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.User, error) {
	if trainerID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: trainer ID and client ID are required", ErrValidation)
	}
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}
	if client.TrainerID == nil || *client.TrainerID != trainerID {
		return nil, ErrClientNotManaged
	}
	return client, nil
}
