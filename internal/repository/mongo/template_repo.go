// internal/repository/mongo/template_repo.go
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

const templateCollectionName = "plan_templates"

// mongoTemplateRepository implements repository.TemplateRepository
type mongoTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoTemplateRepository creates a new PlanTemplate repository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
	}
}

// Create inserts a new template. Line items live embedded in the
// template document, same as in plan versions.
func (r *mongoTemplateRepository) Create(ctx context.Context, tpl *domain.PlanTemplate) (primitive.ObjectID, error) {
	if tpl.TrainerID == primitive.NilObjectID || tpl.Title == "" {
		return primitive.NilObjectID, errors.New("plan template requires trainerId and title")
	}
	if tpl.Type != domain.PlanTypeDiet && tpl.Type != domain.PlanTypeWorkout {
		return primitive.NilObjectID, errors.New("plan template requires a valid type")
	}

	tpl.ID = primitive.NewObjectID()
	for i := range tpl.Meals {
		tpl.Meals[i].ID = primitive.NewObjectID()
	}
	for i := range tpl.Exercises {
		tpl.Exercises[i].ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan template ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single template with its full line items.
func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTemplate, error) {
	var tpl domain.PlanTemplate
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// GetByTrainerAndType retrieves a trainer's template library for one
// plan type, newest first.
func (r *mongoTemplateRepository) GetByTrainerAndType(ctx context.Context, trainerID primitive.ObjectID, planType domain.PlanType) ([]domain.PlanTemplate, error) {
	var templates []domain.PlanTemplate
	filter := bson.M{
		"trainerId": trainerID,
		"type":      planType,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update replaces a template's editable fields. The filter is scoped to
// the owning trainer so a foreign template matches nothing.
func (r *mongoTemplateRepository) Update(ctx context.Context, tpl *domain.PlanTemplate) error {
	if tpl.ID == primitive.NilObjectID || tpl.TrainerID == primitive.NilObjectID {
		return errors.New("plan template requires id and trainerId for update")
	}
	for i := range tpl.Meals {
		if tpl.Meals[i].ID == primitive.NilObjectID {
			tpl.Meals[i].ID = primitive.NewObjectID()
		}
	}
	for i := range tpl.Exercises {
		if tpl.Exercises[i].ID == primitive.NilObjectID {
			tpl.Exercises[i].ID = primitive.NewObjectID()
		}
	}

	filter := bson.M{"_id": tpl.ID, "trainerId": tpl.TrainerID}
	update := bson.M{
		"$set": bson.M{
			"title":       tpl.Title,
			"description": tpl.Description,
			"meals":       tpl.Meals,
			"exercises":   tpl.Exercises,
			"updatedAt":   time.Now().UTC(),
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

// Delete removes a template, scoped to the owning trainer.
func (r *mongoTemplateRepository) Delete(ctx context.Context, id, trainerID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "trainerId": trainerID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTemplateIndexes creates necessary indexes. Call during startup.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: a trainer's library per plan type
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "type", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
