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
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionAccessDenied = errors.New("access denied to this session")
	ErrNoScheduledSession  = errors.New("client has no scheduled session to complete")
)

// NewSessionSlotInput is one tuple of the batch booking form.
type NewSessionSlotInput struct {
	SessionDate time.Time
	StartTime   string
	EndTime     string
	Notes       string
}

// --- Service Interface ---
type SessionService interface {
	// ScheduleSessions creates one scheduled slot per input tuple for a
	// single trainer and client, in one batch.
	ScheduleSessions(ctx context.Context, trainerID, clientID primitive.ObjectID, inputs []NewSessionSlotInput) ([]domain.SessionSlot, error)

	GetTrainerSessions(ctx context.Context, trainerID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error)
	GetClientSessions(ctx context.Context, clientID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error)

	// UpdateStatus transitions a scheduled slot into completed or
	// cancelled. Skips go through SkipSession so the caller names the
	// actor.
	UpdateStatus(ctx context.Context, trainerID, sessionID primitive.ObjectID, target domain.SessionStatus) (*domain.SessionSlot, error)
	// SkipSession transitions a scheduled slot into the skipped status
	// selected by actor.
	SkipSession(ctx context.Context, trainerID, sessionID primitive.ObjectID, actor domain.SkipActor) (*domain.SessionSlot, error)
	// UpdateNotes edits a slot's free text without touching its status.
	UpdateNotes(ctx context.Context, trainerID, sessionID primitive.ObjectID, notes string) (*domain.SessionSlot, error)
	// DeleteSession removes a slot entirely. Unlike a transition it is
	// allowed from any status, terminal ones included.
	DeleteSession(ctx context.Context, trainerID, sessionID primitive.ObjectID) error

	// CompleteNextScheduled marks the client's earliest scheduled slot
	// completed and returns fresh roster stats. Backs the one-tap
	// "mark one session as complete" action on the client detail page.
	CompleteNextScheduled(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.RosterStats, error)
}

// --- Service Implementation ---

type sessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
	}
}

// === Scheduling ===

// ScheduleSessions validates and creates a batch of scheduled slots.
// Every tuple needs a date and a start/end pair with end after start,
// and tuples within one batch must not overlap each other. Overlap
// against slots already in the calendar is not rejected here.
func (s *sessionService) ScheduleSessions(ctx context.Context, trainerID, clientID primitive.ObjectID, inputs []NewSessionSlotInput) ([]domain.SessionSlot, error) {
	if trainerID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: trainer ID is required", ErrValidation)
	}
	if clientID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: no client selected", ErrValidation)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one session slot is required", ErrValidation)
	}

	if err := s.verifyManagedClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}

	slots := make([]domain.SessionSlot, len(inputs))
	for i, in := range inputs {
		if in.SessionDate.IsZero() {
			return nil, fmt.Errorf("%w: session %d is missing a date", ErrValidation, i+1)
		}
		if !domain.SlotTimesValid(in.StartTime, in.EndTime) {
			return nil, fmt.Errorf("%w: session %d needs a valid start/end time with end after start", ErrValidation, i+1)
		}
		slots[i] = domain.SessionSlot{
			TrainerID:   trainerID,
			ClientID:    clientID,
			SessionDate: in.SessionDate.UTC(),
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			Status:      domain.SessionScheduled,
			Notes:       in.Notes,
		}
	}

	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			if domain.SlotsOverlap(slots[i], slots[j]) {
				return nil, fmt.Errorf("%w: sessions %d and %d overlap", ErrValidation, i+1, j+1)
			}
		}
	}

	return s.sessionRepo.CreateMany(ctx, slots)
}

// === Fetching ===

func (s *sessionService) GetTrainerSessions(ctx context.Context, trainerID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error) {
	if trainerID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: trainer ID is required", ErrValidation)
	}
	return s.sessionRepo.GetByTrainerAndRange(ctx, trainerID, dateRange)
}

func (s *sessionService) GetClientSessions(ctx context.Context, clientID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error) {
	if clientID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: client ID is required", ErrValidation)
	}
	return s.sessionRepo.GetByClientAndRange(ctx, clientID, dateRange)
}

// === Lifecycle ===

// UpdateStatus applies a status transition to a slot the trainer owns.
// The legality check runs on the in-memory slot before any write is
// dispatched, so a terminal slot is rejected without touching storage.
func (s *sessionService) UpdateStatus(ctx context.Context, trainerID, sessionID primitive.ObjectID, target domain.SessionStatus) (*domain.SessionSlot, error) {
	slot, err := s.getOwnedSlot(ctx, trainerID, sessionID)
	if err != nil {
		return nil, err
	}

	updated, err := domain.Transition(*slot, target)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateStatus(ctx, sessionID, updated.Status); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SkipSession transitions a scheduled slot into skipped_by_trainer or
// skipped_by_client depending on who is skipping. The actor comes from
// the caller at the moment of the transition; it is never inferred
// from stored fields.
func (s *sessionService) SkipSession(ctx context.Context, trainerID, sessionID primitive.ObjectID, actor domain.SkipActor) (*domain.SessionSlot, error) {
	slot, err := s.getOwnedSlot(ctx, trainerID, sessionID)
	if err != nil {
		return nil, err
	}

	updated, err := domain.Skip(*slot, actor)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateStatus(ctx, sessionID, updated.Status); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateNotes edits a slot's notes. Notes edits are independent of the
// status lifecycle and allowed in any state.
func (s *sessionService) UpdateNotes(ctx context.Context, trainerID, sessionID primitive.ObjectID, notes string) (*domain.SessionSlot, error) {
	slot, err := s.getOwnedSlot(ctx, trainerID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateNotes(ctx, sessionID, notes); err != nil {
		return nil, err
	}
	slot.Notes = notes
	return slot, nil
}

// DeleteSession hard-deletes a slot. Deletion is distinct from a
// transition: it is allowed from any status, including terminal ones,
// and removes the slot from all subsequent aggregate counts.
func (s *sessionService) DeleteSession(ctx context.Context, trainerID, sessionID primitive.ObjectID) error {
	if trainerID == primitive.NilObjectID || sessionID == primitive.NilObjectID {
		return fmt.Errorf("%w: trainer ID and session ID are required", ErrValidation)
	}
	err := s.sessionRepo.Delete(ctx, sessionID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// CompleteNextScheduled completes the client's earliest scheduled slot
// and recomputes the roster stats from the surviving session list.
func (s *sessionService) CompleteNextScheduled(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.RosterStats, error) {
	if err := s.verifyManagedClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.GetByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var next *domain.SessionSlot
	for i := range sessions {
		sl := &sessions[i]
		if sl.Status != domain.SessionScheduled {
			continue
		}
		if next == nil || sl.SessionDate.Before(next.SessionDate) ||
			(sl.SessionDate.Equal(next.SessionDate) && sl.StartTime < next.StartTime) {
			next = sl
		}
	}
	if next == nil {
		return nil, ErrNoScheduledSession
	}

	updated, err := domain.Transition(*next, domain.SessionCompleted)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateStatus(ctx, next.ID, updated.Status); err != nil {
		return nil, err
	}
	next.Status = updated.Status

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	stats := domain.AggregateRoster(sessions, client.SessionAllotment)
	return &stats, nil
}

// === Helpers ===

// getOwnedSlot loads a slot and checks the trainer owns it. A slot
// belonging to another trainer is reported as not found.
func (s *sessionService) getOwnedSlot(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*domain.SessionSlot, error) {
	if trainerID == primitive.NilObjectID || sessionID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: trainer ID and session ID are required", ErrValidation)
	}
	slot, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if slot.TrainerID != trainerID {
		return nil, ErrSessionNotFound
	}
	return slot, nil
}

// verifyManagedClient checks the client exists, is a client, and is
// managed by this trainer.
func (s *sessionService) verifyManagedClient(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	if !client.IsClient() {
		return ErrClientNotRole
	}
	if client.TrainerID == nil || *client.TrainerID != trainerID {
		return ErrClientNotManaged
	}
	return nil
}
