// internal/repository/mongo/measurement_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"healthyhowlz/backend/internal/domain"
	"healthyhowlz/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const measurementCollectionName = "measurements"

// mongoMeasurementRepository implements repository.MeasurementRepository
type mongoMeasurementRepository struct {
	collection *mongo.Collection
}

// NewMongoMeasurementRepository creates a new measurement repository.
func NewMongoMeasurementRepository(db *mongo.Database) repository.MeasurementRepository {
	return &mongoMeasurementRepository{
		collection: db.Collection(measurementCollectionName),
	}
}

// Create inserts a new measurement snapshot. Snapshots are append-only.
func (r *mongoMeasurementRepository) Create(ctx context.Context, m *domain.Measurement) (primitive.ObjectID, error) {
	if m.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("measurement requires clientId")
	}
	if m.TakenAt.IsZero() {
		m.TakenAt = time.Now().UTC()
	}
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted measurement ID")
	}
	return insertedID, nil
}

// GetByClientAndRange retrieves a client's snapshots taken inside the
// given range, oldest first so trend charts read left to right.
func (r *mongoMeasurementRepository) GetByClientAndRange(ctx context.Context, clientID primitive.ObjectID, takenRange domain.TimeRange) ([]domain.Measurement, error) {
	filter := bson.M{"clientId": clientID}
	takenFilter := bson.M{}
	if !takenRange.From.IsZero() {
		takenFilter["$gte"] = takenRange.From.UTC()
	}
	if takenRange.Until != nil {
		takenFilter["$lt"] = takenRange.Until.UTC()
	}
	if len(takenFilter) > 0 {
		filter["takenAt"] = takenFilter
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "takenAt", Value: 1}})

	var measurements []domain.Measurement
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &measurements); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return measurements, nil
}

// EnsureMeasurementIndexes creates necessary indexes. Call during startup.
func EnsureMeasurementIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "takenAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
