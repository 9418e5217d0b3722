package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sujankapadia/snaplist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TaskRepo persists tasks in a per-user partition of the tasks collection.
// Every filter carries the userId scope; no unscoped query is ever built.
type TaskRepo struct {
	collection *mongo.Collection
}

func NewTaskRepo(collection *mongo.Collection) *TaskRepo {
	return &TaskRepo{collection: collection}
}

func scope(userID string, id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "userId": userID}
}

func (r *TaskRepo) Insert(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now().UTC()
	if task.Attachments == nil {
		task.Attachments = []models.Attachment{}
	}

	if _, err := r.collection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}
	return task, nil
}

func (r *TaskRepo) GetByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.collection.FindOne(ctx, scope(userID, id)).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}
	return &task, nil
}

func (r *TaskRepo) List(ctx context.Context, userID string) ([]models.Task, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

func (r *TaskRepo) Update(ctx context.Context, userID string, id primitive.ObjectID, upd models.TaskUpdate) (*models.Task, error) {
	set := bson.M{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Urgency != nil {
		set["urgency"] = *upd.Urgency
	}
	if upd.DueDate != nil {
		set["dueDate"] = *upd.DueDate
	}
	if upd.Notes != nil {
		set["notes"] = *upd.Notes
	}
	if upd.Completed != nil {
		set["completed"] = *upd.Completed
	}
	if len(set) == 0 {
		return r.GetByID(ctx, userID, id)
	}

	result, err := r.collection.UpdateOne(ctx, scope(userID, id), bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, models.ErrNotFound
	}
	return r.GetByID(ctx, userID, id)
}

func (r *TaskRepo) SetNewCategoryFlag(ctx context.Context, userID string, id primitive.ObjectID, isNew bool) error {
	result, err := r.collection.UpdateOne(ctx, scope(userID, id), bson.M{"$set": bson.M{"isNewCategory": isNew}})
	if err != nil {
		return fmt.Errorf("failed to update task flag: %v", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PushAttachment appends one metadata entry to the task's attachments array.
// A field-level $push tolerates concurrent edits to the rest of the document.
func (r *TaskRepo) PushAttachment(ctx context.Context, userID string, id primitive.ObjectID, att models.Attachment) error {
	result, err := r.collection.UpdateOne(ctx, scope(userID, id), bson.M{"$push": bson.M{"attachments": att}})
	if err != nil {
		return fmt.Errorf("failed to append attachment: %v", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) PullAttachment(ctx context.Context, userID string, id primitive.ObjectID, attachmentID string) error {
	result, err := r.collection.UpdateOne(ctx, scope(userID, id), bson.M{"$pull": bson.M{"attachments": bson.M{"id": attachmentID}}})
	if err != nil {
		return fmt.Errorf("failed to remove attachment: %v", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes the task and returns it so the caller can cascade
// attachment cleanup.
func (r *TaskRepo) Delete(ctx context.Context, userID string, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.collection.FindOneAndDelete(ctx, scope(userID, id)).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete task: %v", err)
	}
	return &task, nil
}
