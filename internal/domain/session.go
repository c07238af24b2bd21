package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus is the lifecycle state of a scheduled training slot.
type SessionStatus string

const (
	SessionScheduled        SessionStatus = "scheduled"
	SessionCompleted        SessionStatus = "completed"
	SessionCancelled        SessionStatus = "cancelled"
	SessionSkippedByTrainer SessionStatus = "skipped_by_trainer"
	SessionSkippedByClient  SessionStatus = "skipped_by_client"
)

// SkipActor identifies who is skipping a session. Supplied by the
// caller at the moment of the transition; never inferred from stored
// fields.
type SkipActor string

const (
	SkipByTrainer SkipActor = "trainer"
	SkipByClient  SkipActor = "client"
)

var (
	// ErrInvalidTransition is returned when a transition is attempted
	// out of a terminal status, or into one that is not terminal. The
	// guard runs before any write is dispatched.
	ErrInvalidTransition = errors.New("invalid session status transition")

	// ErrInvalidSkipActor is returned when a skip names neither the
	// trainer nor the client.
	ErrInvalidSkipActor = errors.New("skip actor must be trainer or client")
)

// IsValid reports whether s is one of the defined statuses.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionScheduled, SessionCompleted, SessionCancelled,
		SessionSkippedByTrainer, SessionSkippedByClient:
		return true
	}
	return false
}

// IsTerminal reports whether no transition is defined out of s.
// Every status except scheduled is terminal; correcting a mistake
// means deleting the slot and creating a new one.
func (s SessionStatus) IsTerminal() bool {
	return s.IsValid() && s != SessionScheduled
}

// SessionSlot is one scheduled one-on-one training appointment between
// a trainer and a client. Start and end times are times of day in
// "15:04" form, matching the booking form's wire format.
type SessionSlot struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainer_id"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"client_id"`
	SessionDate time.Time          `bson:"sessionDate" json:"session_date"`
	StartTime   string             `bson:"startTime" json:"start_time"`
	EndTime     string             `bson:"endTime" json:"end_time"`
	Status      SessionStatus      `bson:"status" json:"status"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
}

// Transition returns a copy of slot moved to target. The input is not
// mutated; callers persist the returned value and keep the original
// as the rollback snapshot. Only scheduled slots may transition, and
// only into a terminal status.
func Transition(slot SessionSlot, target SessionStatus) (SessionSlot, error) {
	if slot.Status != SessionScheduled {
		return SessionSlot{}, ErrInvalidTransition
	}
	if !target.IsTerminal() {
		return SessionSlot{}, ErrInvalidTransition
	}
	slot.Status = target
	return slot, nil
}

// Skip transitions a scheduled slot into the skipped status selected
// by actor.
func Skip(slot SessionSlot, actor SkipActor) (SessionSlot, error) {
	switch actor {
	case SkipByTrainer:
		return Transition(slot, SessionSkippedByTrainer)
	case SkipByClient:
		return Transition(slot, SessionSkippedByClient)
	default:
		return SessionSlot{}, ErrInvalidSkipActor
	}
}

// ParseTimeOfDay parses an "HH:MM" clock value.
func ParseTimeOfDay(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}

// SlotTimesValid reports whether both clock values parse and end is
// strictly after start.
func SlotTimesValid(start, end string) bool {
	st, err := ParseTimeOfDay(start)
	if err != nil {
		return false
	}
	et, err := ParseTimeOfDay(end)
	if err != nil {
		return false
	}
	return et.After(st)
}

// SlotsOverlap reports whether two slots on the same calendar date
// share any time. Slots on different dates never overlap; a slot whose
// times fail to parse is treated as non-overlapping and left to
// validation to reject.
func SlotsOverlap(a, b SessionSlot) bool {
	ay, am, ad := a.SessionDate.Date()
	by, bm, bd := b.SessionDate.Date()
	if ay != by || am != bm || ad != bd {
		return false
	}
	as, err := ParseTimeOfDay(a.StartTime)
	if err != nil {
		return false
	}
	ae, err := ParseTimeOfDay(a.EndTime)
	if err != nil {
		return false
	}
	bs, err := ParseTimeOfDay(b.StartTime)
	if err != nil {
		return false
	}
	be, err := ParseTimeOfDay(b.EndTime)
	if err != nil {
		return false
	}
	return as.Before(be) && bs.Before(ae)
}
