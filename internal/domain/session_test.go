package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func scheduledSlot() SessionSlot {
	return SessionSlot{
		ID:          primitive.NewObjectID(),
		TrainerID:   primitive.NewObjectID(),
		ClientID:    primitive.NewObjectID(),
		SessionDate: time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "10:00",
		Status:      SessionScheduled,
		Notes:       "Leg day",
	}
}

func TestTransition(t *testing.T) {
	terminals := []SessionStatus{
		SessionCompleted, SessionCancelled,
		SessionSkippedByTrainer, SessionSkippedByClient,
	}

	t.Run("scheduled moves into any terminal status", func(t *testing.T) {
		for _, target := range terminals {
			slot := scheduledSlot()
			moved, err := Transition(slot, target)
			require.NoError(t, err, "target %s", target)
			assert.Equal(t, target, moved.Status)
		}
	})

	t.Run("transition preserves every other field", func(t *testing.T) {
		slot := scheduledSlot()
		moved, err := Transition(slot, SessionCompleted)
		require.NoError(t, err)

		assert.Equal(t, slot.ID, moved.ID)
		assert.Equal(t, slot.TrainerID, moved.TrainerID)
		assert.Equal(t, slot.ClientID, moved.ClientID)
		assert.Equal(t, slot.SessionDate, moved.SessionDate)
		assert.Equal(t, slot.StartTime, moved.StartTime)
		assert.Equal(t, slot.EndTime, moved.EndTime)
		assert.Equal(t, slot.Notes, moved.Notes)
	})

	t.Run("input slot is not mutated", func(t *testing.T) {
		slot := scheduledSlot()
		_, err := Transition(slot, SessionCancelled)
		require.NoError(t, err)
		assert.Equal(t, SessionScheduled, slot.Status)
	})

	t.Run("terminal statuses reject every transition", func(t *testing.T) {
		allTargets := append([]SessionStatus{SessionScheduled}, terminals...)
		for _, from := range terminals {
			for _, target := range allTargets {
				slot := scheduledSlot()
				slot.Status = from
				_, err := Transition(slot, target)
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, target)
			}
		}
	})

	t.Run("scheduled is not a valid target", func(t *testing.T) {
		_, err := Transition(scheduledSlot(), SessionScheduled)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown target is rejected", func(t *testing.T) {
		_, err := Transition(scheduledSlot(), SessionStatus("postponed"))
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSkip(t *testing.T) {
	t.Run("actor selects the skipped status", func(t *testing.T) {
		byTrainer, err := Skip(scheduledSlot(), SkipByTrainer)
		require.NoError(t, err)
		assert.Equal(t, SessionSkippedByTrainer, byTrainer.Status)

		byClient, err := Skip(scheduledSlot(), SkipByClient)
		require.NoError(t, err)
		assert.Equal(t, SessionSkippedByClient, byClient.Status)
	})

	t.Run("unknown actor", func(t *testing.T) {
		_, err := Skip(scheduledSlot(), SkipActor("gym"))
		assert.ErrorIs(t, err, ErrInvalidSkipActor)
	})

	t.Run("skipping a terminal slot fails", func(t *testing.T) {
		slot := scheduledSlot()
		slot.Status = SessionCompleted
		_, err := Skip(slot, SkipByTrainer)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSessionStatusPredicates(t *testing.T) {
	assert.True(t, SessionScheduled.IsValid())
	assert.False(t, SessionScheduled.IsTerminal())

	for _, s := range []SessionStatus{
		SessionCompleted, SessionCancelled,
		SessionSkippedByTrainer, SessionSkippedByClient,
	} {
		assert.True(t, s.IsValid(), "%s", s)
		assert.True(t, s.IsTerminal(), "%s", s)
	}

	assert.False(t, SessionStatus("postponed").IsValid())
	assert.False(t, SessionStatus("postponed").IsTerminal())
}

func TestSlotTimesValid(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"valid hour slot", "09:00", "10:00", true},
		{"end equals start", "09:00", "09:00", false},
		{"end before start", "10:00", "09:00", false},
		{"unparseable start", "9am", "10:00", false},
		{"unparseable end", "09:00", "25:00", false},
		{"empty values", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlotTimesValid(tt.start, tt.end))
		})
	}
}

func TestSlotsOverlap(t *testing.T) {
	day := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	slot := func(date time.Time, start, end string) SessionSlot {
		return SessionSlot{SessionDate: date, StartTime: start, EndTime: end}
	}

	t.Run("intersecting times on the same day", func(t *testing.T) {
		assert.True(t, SlotsOverlap(slot(day, "09:00", "10:00"), slot(day, "09:30", "10:30")))
	})

	t.Run("contained slot", func(t *testing.T) {
		assert.True(t, SlotsOverlap(slot(day, "09:00", "12:00"), slot(day, "10:00", "11:00")))
	})

	t.Run("back to back slots do not overlap", func(t *testing.T) {
		assert.False(t, SlotsOverlap(slot(day, "09:00", "10:00"), slot(day, "10:00", "11:00")))
	})

	t.Run("different days never overlap", func(t *testing.T) {
		other := day.AddDate(0, 0, 1)
		assert.False(t, SlotsOverlap(slot(day, "09:00", "10:00"), slot(other, "09:00", "10:00")))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := slot(day, "09:00", "10:00")
		b := slot(day, "09:45", "11:00")
		assert.Equal(t, SlotsOverlap(a, b), SlotsOverlap(b, a))
	})
}
