package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanTemplate is a reusable diet or workout blueprint in a trainer's
// library. Templates belong to the trainer, not to any client; creating
// a client's plan version from one copies the line items, so later
// template edits never touch versions already assigned.
type PlanTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainer_id"`
	Type        PlanType           `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Meals       []MealItem         `bson:"meals,omitempty" json:"meals,omitempty"`
	Exercises   []ExerciseItem     `bson:"exercises,omitempty" json:"exercises,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
}
