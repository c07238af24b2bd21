// internal/repository/mongo/session_repo.go
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

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new session slot repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// CreateMany inserts a batch of session slots in one call. The service
// layer validates the tuples; here each slot just gets its identity and
// timestamps before the bulk insert.
func (r *mongoSessionRepository) CreateMany(ctx context.Context, slots []domain.SessionSlot) ([]domain.SessionSlot, error) {
	if len(slots) == 0 {
		return nil, errors.New("no session slots to create")
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(slots))
	for i := range slots {
		if slots[i].TrainerID == primitive.NilObjectID || slots[i].ClientID == primitive.NilObjectID {
			return nil, errors.New("session slot requires trainerId and clientId")
		}
		slots[i].ID = primitive.NewObjectID()
		slots[i].CreatedAt = now
		slots[i].UpdatedAt = now
		docs[i] = slots[i]
	}

	// Ordered insert: all-or-nothing on the first failure keeps the
	// batch from partially materializing.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// GetByID retrieves a single session slot.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionSlot, error) {
	var slot domain.SessionSlot
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// GetByTrainerAndRange retrieves a trainer's slots with a session date
// inside the given range.
func (r *mongoSessionRepository) GetByTrainerAndRange(ctx context.Context, trainerID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error) {
	return r.findByRange(ctx, bson.M{"trainerId": trainerID}, dateRange)
}

// GetByClientAndRange retrieves a client's slots with a session date
// inside the given range.
func (r *mongoSessionRepository) GetByClientAndRange(ctx context.Context, clientID primitive.ObjectID, dateRange domain.TimeRange) ([]domain.SessionSlot, error) {
	return r.findByRange(ctx, bson.M{"clientId": clientID}, dateRange)
}

// GetByClient retrieves all of a client's slots, for roster aggregation.
func (r *mongoSessionRepository) GetByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.SessionSlot, error) {
	return r.findByRange(ctx, bson.M{"clientId": clientID}, domain.TimeRange{})
}

func (r *mongoSessionRepository) findByRange(ctx context.Context, filter bson.M, dateRange domain.TimeRange) ([]domain.SessionSlot, error) {
	dateFilter := bson.M{}
	if !dateRange.From.IsZero() {
		dateFilter["$gte"] = dateRange.From.UTC()
	}
	if dateRange.Until != nil {
		dateFilter["$lt"] = dateRange.Until.UTC()
	}
	if len(dateFilter) > 0 {
		filter["sessionDate"] = dateFilter
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "sessionDate", Value: 1},
		{Key: "startTime", Value: 1},
	})

	var slots []domain.SessionSlot
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// UpdateStatus patches a slot's status. The transition legality check
// belongs to the service layer; this just records the new status.
func (r *mongoSessionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus) error {
	return r.patch(ctx, id, bson.M{"status": status})
}

// UpdateNotes patches a slot's free-text notes.
func (r *mongoSessionRepository) UpdateNotes(ctx context.Context, id primitive.ObjectID, notes string) error {
	return r.patch(ctx, id, bson.M{"notes": notes})
}

func (r *mongoSessionRepository) patch(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a slot entirely. Allowed from any status; deletion is
// a hard delete, not a terminal state. The filter ensures the slot
// belongs to the requesting trainer.
func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	if id == primitive.NilObjectID || trainerID == primitive.NilObjectID {
		return errors.New("session ID and trainer ID are required for deletion")
	}

	filter := bson.M{
		"_id":       id,
		"trainerId": trainerID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Either the slot didn't exist or it belongs to another trainer.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "sessionDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "sessionDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
