// internal/repository/mongo/plan_version_repo.go
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

const planVersionCollectionName = "plan_versions"

// mongoPlanVersionRepository implements repository.PlanVersionRepository
type mongoPlanVersionRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanVersionRepository creates a new PlanVersion repository.
func NewMongoPlanVersionRepository(db *mongo.Database) repository.PlanVersionRepository {
	return &mongoPlanVersionRepository{
		collection: db.Collection(planVersionCollectionName),
	}
}

// Create inserts a new plan version. Line items live embedded in the
// version document; they are owned by it and never shared.
func (r *mongoPlanVersionRepository) Create(ctx context.Context, version *domain.PlanVersion) (primitive.ObjectID, error) {
	if version.ClientID == primitive.NilObjectID || version.TrainerID == primitive.NilObjectID || version.Title == "" {
		return primitive.NilObjectID, errors.New("plan version requires clientId, trainerId, and title")
	}
	if version.Type != domain.PlanTypeDiet && version.Type != domain.PlanTypeWorkout {
		return primitive.NilObjectID, errors.New("plan version requires a valid type")
	}

	version.ID = primitive.NewObjectID()
	for i := range version.Meals {
		version.Meals[i].ID = primitive.NewObjectID()
	}
	for i := range version.Exercises {
		version.Exercises[i].ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	version.CreatedAt = now
	version.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, version)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan version ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan version, with its full line items.
func (r *mongoPlanVersionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanVersion, error) {
	var version domain.PlanVersion
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&version)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// GetByClientAndType retrieves the full version history for a client
// and plan type, newest followedFrom first. Callers still re-sort; they
// never rely on storage order.
func (r *mongoPlanVersionRepository) GetByClientAndType(ctx context.Context, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanVersion, error) {
	var versions []domain.PlanVersion
	filter := bson.M{
		"clientId": clientID,
		"type":     planType,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "followedFrom", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &versions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Return empty slice if no versions found (not an error)
	return versions, nil
}

// CloseVersion ends an open version's validity range at till. Closing
// an already-closed version matches nothing and returns ErrNotFound so
// the caller notices the invariant slipped.
func (r *mongoPlanVersionRepository) CloseVersion(ctx context.Context, id primitive.ObjectID, till time.Time) error {
	filter := bson.M{
		"_id":          id,
		"followedTill": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"followedTill": till.UTC(),
			"updatedAt":    time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanVersionIndexes creates necessary indexes. Call during startup.
func EnsurePlanVersionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: version history for a client+type
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "type", Value: 1}, {Key: "followedFrom", Value: -1}},
			Options: options.Index(),
		},
		{
			// Fast lookup of the open (current) version
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "type", Value: 1}, {Key: "followedTill", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
