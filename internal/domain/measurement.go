package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Measurement is one body measurement snapshot logged by a client.
// Snapshots are append-only; trends are derived by querying a TimeRange
// of them, never by mutating old entries.
type Measurement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"client_id"`
	TakenAt     time.Time          `bson:"takenAt" json:"taken_at"`
	WeightKg    float64            `bson:"weightKg,omitempty" json:"weight_kg,omitempty"`
	BodyFatPct  float64            `bson:"bodyFatPct,omitempty" json:"body_fat_pct,omitempty"`
	ChestCm     float64            `bson:"chestCm,omitempty" json:"chest_cm,omitempty"`
	WaistCm     float64            `bson:"waistCm,omitempty" json:"waist_cm,omitempty"`
	HipsCm      float64            `bson:"hipsCm,omitempty" json:"hips_cm,omitempty"`
	PhotoKey    string             `bson:"photoKey,omitempty" json:"photo_key,omitempty"` // object storage key of the progress photo
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
}

// FilterMeasurements returns the snapshots taken inside r, preserving
// input order.
func FilterMeasurements(measurements []Measurement, r TimeRange) []Measurement {
	var out []Measurement
	for _, m := range measurements {
		if r.Contains(m.TakenAt) {
			out = append(out, m)
		}
	}
	return out
}
