package domain

import "time"

// TimeRange is a half-open validity interval [From, Until).
// A nil Until means the range is still open (no end bound set yet).
// Plan versions and measurement snapshots both carry their validity
// as one of these.
type TimeRange struct {
	From  time.Time  `bson:"from" json:"from"`
	Until *time.Time `bson:"until,omitempty" json:"until,omitempty"`
}

// IsOpen reports whether the range has no end bound.
func (r TimeRange) IsOpen() bool {
	return r.Until == nil
}

// Contains reports whether t falls inside [From, Until).
// An open range contains every instant at or after From.
func (r TimeRange) Contains(t time.Time) bool {
	if t.Before(r.From) {
		return false
	}
	if r.Until == nil {
		return true
	}
	return t.Before(*r.Until)
}

// Overlaps reports whether two ranges share at least one instant.
// Touching boundaries ([a,b) and [b,c)) do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	// r starts after other ended
	if other.Until != nil && !r.From.Before(*other.Until) {
		return false
	}
	// other starts after r ended
	if r.Until != nil && !other.From.Before(*r.Until) {
		return false
	}
	return true
}
