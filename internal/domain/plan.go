package domain

import (
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType distinguishes diet plans from workout plans. Both share the
// same versioning shape and differ only in their line-item type.
type PlanType string

const (
	PlanTypeDiet    PlanType = "diet"
	PlanTypeWorkout PlanType = "workout"
)

// ErrNoCurrentVersion is returned when a client has no open plan
// version. Callers render this as "no active plan assigned yet",
// never as a failure.
var ErrNoCurrentVersion = errors.New("no current plan version")

// ErrVersionNotFound is returned by point lookups into a version list.
var ErrVersionNotFound = errors.New("plan version not found")

// MealItem is one meal line of a diet plan version. Owned by exactly
// one version; never shared across versions.
type MealItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MealType     string             `bson:"mealType" json:"meal_type"` // e.g. "Breakfast", "Snack"
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	ProteinG     Grams              `bson:"proteinG" json:"protein_g"`
	CarbsG       Grams              `bson:"carbsG" json:"carbs_g"`
	FatG         Grams              `bson:"fatG" json:"fat_g"`
	CaloriesKcal Grams              `bson:"caloriesKcal" json:"calories_kcal"`
}

// ExerciseItem is one exercise line of a workout plan version.
type ExerciseItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DayName  string             `bson:"dayName" json:"day_name"` // e.g. "Monday"
	Name     string             `bson:"name" json:"name"`
	Category string             `bson:"category,omitempty" json:"category,omitempty"` // e.g. "STRENGTH", "CARDIO"
	Sets     int                `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps     int                `bson:"reps,omitempty" json:"reps,omitempty"`
	Duration int                `bson:"duration,omitempty" json:"duration,omitempty"` // minutes, cardio items
	Notes    string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// PlanVersion is one time-bounded snapshot of a diet or workout plan
// assigned to a client. A version is never edited in place: changing a
// plan means creating a new version, which closes the prior current one
// by setting its FollowedTill. For a given client+type at most one
// version may have FollowedTill == nil at a time.
type PlanVersion struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainer_id"`
	ClientID     primitive.ObjectID `bson:"clientId" json:"client_id"`
	Type         PlanType           `bson:"type" json:"type"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	FollowedFrom time.Time          `bson:"followedFrom" json:"followed_from"`
	FollowedTill *time.Time         `bson:"followedTill,omitempty" json:"followed_till,omitempty"`
	Meals        []MealItem         `bson:"meals,omitempty" json:"meals,omitempty"`
	Exercises    []ExerciseItem     `bson:"exercises,omitempty" json:"exercises,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updated_at"`
}

// IsCurrent reports whether this version is the one the client is
// following now.
func (p *PlanVersion) IsCurrent() bool {
	return p.FollowedTill == nil
}

// Range returns the version's validity interval.
func (p *PlanVersion) Range() TimeRange {
	return TimeRange{From: p.FollowedFrom, Until: p.FollowedTill}
}

// ResolveCurrent picks the version the client is following now: the one
// with no end date. If the data violates the single-open-version
// invariant and none is open, it falls back to the version with the
// latest FollowedFrom rather than failing. An empty list resolves to
// ErrNoCurrentVersion.
func ResolveCurrent(versions []PlanVersion) (*PlanVersion, error) {
	if len(versions) == 0 {
		return nil, ErrNoCurrentVersion
	}
	var latest *PlanVersion
	for i := range versions {
		v := &versions[i]
		if v.IsCurrent() {
			return v, nil
		}
		if latest == nil || v.FollowedFrom.After(latest.FollowedFrom) {
			latest = v
		}
	}
	return latest, nil
}

// SelectVersion looks up a version by id for history browsing. It is
// read-only: selecting a historical version changes only what is
// displayed, never which version is current.
func SelectVersion(versions []PlanVersion, id primitive.ObjectID) (*PlanVersion, error) {
	for i := range versions {
		if versions[i].ID == id {
			return &versions[i], nil
		}
	}
	return nil, ErrVersionNotFound
}

// SortVersions orders a history list strictly descending by
// FollowedFrom (most recent first). Callers sort; they never assume
// storage order.
func SortVersions(versions []PlanVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].FollowedFrom.After(versions[j].FollowedFrom)
	})
}
