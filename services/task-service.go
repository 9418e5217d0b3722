package services

import (
	"context"

	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskService covers direct task reads and edits outside the capture
// pipeline.
type TaskService struct {
	tasks TaskStore
	blobs BlobStore
}

func NewTaskService(tasks TaskStore, blobs BlobStore) *TaskService {
	return &TaskService{tasks: tasks, blobs: blobs}
}

func (s *TaskService) GetAllTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.tasks.List(ctx, userID)
}

func (s *TaskService) GetTaskByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Task, error) {
	return s.tasks.GetByID(ctx, userID, id)
}

func (s *TaskService) UpdateTask(ctx context.Context, userID string, id primitive.ObjectID, upd models.TaskUpdate) (*models.Task, error) {
	return s.tasks.Update(ctx, userID, id, upd)
}

// DeleteTask removes the task and cascades blob cleanup over its
// attachments. A blob that fails to delete is logged and skipped: the task
// document is already gone and an unreferenced blob is the tolerable side.
func (s *TaskService) DeleteTask(ctx context.Context, userID string, id primitive.ObjectID) error {
	task, err := s.tasks.Delete(ctx, userID, id)
	if err != nil {
		return err
	}

	for _, att := range task.Attachments {
		if err := s.blobs.Delete(ctx, att.StoragePath); err != nil {
			logging.Logger.Warnf("Event ID: BLOB_CASCADE_FAILED, Description: Failed to delete blob %s for task %s: %v", att.StoragePath, id.Hex(), err)
		}
	}
	return nil
}
