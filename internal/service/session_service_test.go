package service

import (
	"context"
	"testing"
	"time"

	"healthyhowlz/backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sessionFixture(t *testing.T) (*fakeSessionRepo, *fakeUserRepo, SessionService, *domain.User, *domain.User) {
	t.Helper()
	trainer := newTrainer()
	client := newManagedClient(trainer.ID, 10)
	sessionRepo := &fakeSessionRepo{}
	userRepo := newFakeUserRepo(trainer, client)
	return sessionRepo, userRepo, NewSessionService(sessionRepo, userRepo), trainer, client
}

func slotInput(day int, start, end string) NewSessionSlotInput {
	return NewSessionSlotInput{
		SessionDate: time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		StartTime:   start,
		EndTime:     end,
	}
}

func TestScheduleSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one scheduled slot per tuple", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)

		slots, err := svc.ScheduleSessions(ctx, trainer.ID, client.ID, []NewSessionSlotInput{
			slotInput(2, "09:00", "10:00"),
			slotInput(4, "09:00", "10:00"),
			slotInput(2, "17:00", "18:00"),
		})
		require.NoError(t, err)
		require.Len(t, slots, 3)
		for _, s := range slots {
			assert.Equal(t, domain.SessionScheduled, s.Status)
			assert.Equal(t, trainer.ID, s.TrainerID)
			assert.Equal(t, client.ID, s.ClientID)
			assert.False(t, s.ID.IsZero())
		}
		assert.Len(t, sessionRepo.slots, 3)
	})

	t.Run("no client selected", func(t *testing.T) {
		_, _, svc, trainer, _ := sessionFixture(t)
		_, err := svc.ScheduleSessions(ctx, trainer.ID, primitive.NilObjectID, []NewSessionSlotInput{
			slotInput(2, "09:00", "10:00"),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty batch", func(t *testing.T) {
		_, _, svc, trainer, client := sessionFixture(t)
		_, err := svc.ScheduleSessions(ctx, trainer.ID, client.ID, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing date", func(t *testing.T) {
		_, _, svc, trainer, client := sessionFixture(t)
		_, err := svc.ScheduleSessions(ctx, trainer.ID, client.ID, []NewSessionSlotInput{
			{StartTime: "09:00", EndTime: "10:00"},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("end must be after start", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		for _, in := range []NewSessionSlotInput{
			slotInput(2, "10:00", "09:00"),
			slotInput(2, "10:00", "10:00"),
			slotInput(2, "bad", "10:00"),
		} {
			_, err := svc.ScheduleSessions(ctx, trainer.ID, client.ID, []NewSessionSlotInput{in})
			assert.ErrorIs(t, err, ErrValidation)
		}
		assert.Empty(t, sessionRepo.slots, "nothing is written on validation failure")
	})

	t.Run("overlapping tuples within one batch are rejected", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		_, err := svc.ScheduleSessions(ctx, trainer.ID, client.ID, []NewSessionSlotInput{
			slotInput(2, "09:00", "10:00"),
			slotInput(2, "09:30", "10:30"),
		})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, sessionRepo.slots)
	})

	t.Run("overlap with an already booked slot is not rejected", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID:   trainer.ID,
			ClientID:    client.ID,
			SessionDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			StartTime:   "09:00",
			EndTime:     "10:00",
			Status:      domain.SessionScheduled,
		})

		_, err := svc.ScheduleSessions(ctx, trainer.ID, client.ID, []NewSessionSlotInput{
			slotInput(2, "09:30", "10:30"),
		})
		assert.NoError(t, err)
	})

	t.Run("client managed by another trainer", func(t *testing.T) {
		_, userRepo, svc, trainer, _ := sessionFixture(t)
		other := newTrainer()
		other.Email = "other@example.com"
		foreign := newManagedClient(other.ID, 5)
		foreign.Email = "foreign@example.com"
		userRepo.users[other.ID] = other
		userRepo.users[foreign.ID] = foreign

		_, err := svc.ScheduleSessions(ctx, trainer.ID, foreign.ID, []NewSessionSlotInput{
			slotInput(2, "09:00", "10:00"),
		})
		assert.ErrorIs(t, err, ErrClientNotManaged)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("completes a scheduled slot", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		slot := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID:   trainer.ID,
			ClientID:    client.ID,
			SessionDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			StartTime:   "09:00",
			EndTime:     "10:00",
			Status:      domain.SessionScheduled,
		})

		updated, err := svc.UpdateStatus(ctx, trainer.ID, slot.ID, domain.SessionCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionCompleted, updated.Status)
		assert.Equal(t, slot.StartTime, updated.StartTime)
		assert.Equal(t, domain.SessionCompleted, sessionRepo.slots[0].Status)
	})

	t.Run("terminal slot is rejected before any write", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		slot := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID,
			ClientID:  client.ID,
			Status:    domain.SessionCancelled,
		})

		_, err := svc.UpdateStatus(ctx, trainer.ID, slot.ID, domain.SessionCompleted)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Zero(t, sessionRepo.statusWrites, "no write may be dispatched for an illegal transition")
		assert.Equal(t, domain.SessionCancelled, sessionRepo.slots[0].Status)
	})

	t.Run("another trainer's slot is reported as not found", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		slot := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: primitive.NewObjectID(),
			ClientID:  client.ID,
			Status:    domain.SessionScheduled,
		})

		_, err := svc.UpdateStatus(ctx, trainer.ID, slot.ID, domain.SessionCompleted)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, _, svc, trainer, _ := sessionFixture(t)
		_, err := svc.UpdateStatus(ctx, trainer.ID, primitive.NewObjectID(), domain.SessionCompleted)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestSkipSession(t *testing.T) {
	ctx := context.Background()

	t.Run("actor picks the skipped status", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		first := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID, Status: domain.SessionScheduled,
		})
		second := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID, Status: domain.SessionScheduled,
		})

		byTrainer, err := svc.SkipSession(ctx, trainer.ID, first.ID, domain.SkipByTrainer)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionSkippedByTrainer, byTrainer.Status)

		byClient, err := svc.SkipSession(ctx, trainer.ID, second.ID, domain.SkipByClient)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionSkippedByClient, byClient.Status)
	})

	t.Run("unknown actor", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		slot := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID, Status: domain.SessionScheduled,
		})
		_, err := svc.SkipSession(ctx, trainer.ID, slot.ID, domain.SkipActor("gym"))
		assert.ErrorIs(t, err, domain.ErrInvalidSkipActor)
		assert.Zero(t, sessionRepo.statusWrites)
	})
}

func TestUpdateNotes(t *testing.T) {
	ctx := context.Background()

	// Notes edits sit outside the status lifecycle.
	sessionRepo, _, svc, trainer, client := sessionFixture(t)
	slot := sessionRepo.mustAdd(domain.SessionSlot{
		TrainerID: trainer.ID, ClientID: client.ID,
		Status: domain.SessionCompleted, Notes: "old",
	})

	updated, err := svc.UpdateNotes(ctx, trainer.ID, slot.ID, "great progress")
	require.NoError(t, err)
	assert.Equal(t, "great progress", updated.Notes)
	assert.Equal(t, domain.SessionCompleted, updated.Status)
	assert.Equal(t, "great progress", sessionRepo.slots[0].Notes)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes a terminal slot", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		slot := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID, Status: domain.SessionCompleted,
		})

		require.NoError(t, svc.DeleteSession(ctx, trainer.ID, slot.ID))
		assert.Empty(t, sessionRepo.slots)
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, _, svc, trainer, _ := sessionFixture(t)
		err := svc.DeleteSession(ctx, trainer.ID, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("another trainer's slot cannot be deleted", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		slot := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: primitive.NewObjectID(), ClientID: client.ID, Status: domain.SessionScheduled,
		})

		err := svc.DeleteSession(ctx, trainer.ID, slot.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Len(t, sessionRepo.slots, 1)
	})
}

func TestCompleteNextScheduled(t *testing.T) {
	ctx := context.Background()

	t.Run("completes the earliest scheduled slot", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		later := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID,
			SessionDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
			Status:      domain.SessionScheduled,
		})
		earlier := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID,
			SessionDate: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			Status:      domain.SessionScheduled,
		})
		sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID,
			SessionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Status:      domain.SessionCompleted,
		})

		stats, err := svc.CompleteNextScheduled(ctx, trainer.ID, client.ID)
		require.NoError(t, err)

		byID := map[primitive.ObjectID]domain.SessionStatus{}
		for _, s := range sessionRepo.slots {
			byID[s.ID] = s.Status
		}
		assert.Equal(t, domain.SessionCompleted, byID[earlier.ID])
		assert.Equal(t, domain.SessionScheduled, byID[later.ID])

		assert.Equal(t, 2, stats.CompletedSessions)
		assert.Equal(t, 10, stats.TotalSessions)
		assert.Equal(t, 20.0, stats.ProgressPercent)
	})

	t.Run("same-day tie breaks on start time", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		day := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
		afternoon := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID,
			SessionDate: day, StartTime: "14:00", EndTime: "15:00",
			Status: domain.SessionScheduled,
		})
		morning := sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID,
			SessionDate: day, StartTime: "09:00", EndTime: "10:00",
			Status: domain.SessionScheduled,
		})

		_, err := svc.CompleteNextScheduled(ctx, trainer.ID, client.ID)
		require.NoError(t, err)

		byID := map[primitive.ObjectID]domain.SessionStatus{}
		for _, s := range sessionRepo.slots {
			byID[s.ID] = s.Status
		}
		assert.Equal(t, domain.SessionCompleted, byID[morning.ID])
		assert.Equal(t, domain.SessionScheduled, byID[afternoon.ID])
	})

	t.Run("no scheduled slot left", func(t *testing.T) {
		sessionRepo, _, svc, trainer, client := sessionFixture(t)
		sessionRepo.mustAdd(domain.SessionSlot{
			TrainerID: trainer.ID, ClientID: client.ID, Status: domain.SessionCompleted,
		})

		_, err := svc.CompleteNextScheduled(ctx, trainer.ID, client.ID)
		assert.ErrorIs(t, err, ErrNoScheduledSession)
	})

	t.Run("unmanaged client", func(t *testing.T) {
		_, userRepo, svc, trainer, _ := sessionFixture(t)
		stranger := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleClient}
		userRepo.users[stranger.ID] = stranger

		_, err := svc.CompleteNextScheduled(ctx, trainer.ID, stranger.ID)
		assert.ErrorIs(t, err, ErrClientNotManaged)
	})
}
