package repositories

import (
	"context"
	"fmt"

	"github.com/sujankapadia/snaplist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoryRepo struct {
	collection *mongo.Collection
}

// NewCategoryRepo builds the repository and ensures the unique (userId, name)
// index that backs idempotent category acceptance.
func NewCategoryRepo(ctx context.Context, collection *mongo.Collection) (*CategoryRepo, error) {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to create category name index: %v", err)
	}
	return &CategoryRepo{collection: collection}, nil
}

func (r *CategoryRepo) List(ctx context.Context, userID string) ([]models.Category, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %v", err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %v", err)
	}
	return categories, nil
}

func (r *CategoryRepo) Insert(ctx context.Context, category *models.Category) (*models.Category, error) {
	category.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicateCategory
		}
		return nil, fmt.Errorf("failed to create category: %v", err)
	}
	return category, nil
}

// InsertMany writes the seed set as one ordered batch so a disconnect cannot
// leave a torn partial seed.
func (r *CategoryRepo) InsertMany(ctx context.Context, categories []models.Category) error {
	docs := make([]interface{}, 0, len(categories))
	for i := range categories {
		categories[i].ID = primitive.NewObjectID()
		docs = append(docs, categories[i])
	}

	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to seed categories: %v", err)
	}
	return nil
}

func (r *CategoryRepo) Update(ctx context.Context, category *models.Category) error {
	update := bson.M{"$set": bson.M{"name": category.Name, "description": category.Description, "hue": category.Hue}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": category.ID, "userId": category.UserID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateCategory
		}
		return fmt.Errorf("failed to update category: %v", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes only the category document. Tasks still referencing its
// name keep it as an orphan label, which the rest of the system tolerates.
func (r *CategoryRepo) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete category: %v", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
