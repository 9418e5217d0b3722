package services

import (
	"context"
	"io"
	"time"

	"github.com/sujankapadia/snaplist/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The services consume narrow store interfaces so tests can substitute
// in-memory fakes for the Mongo, GridFS and Cassandra repositories.

type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Task, error)
	List(ctx context.Context, userID string) ([]models.Task, error)
	Update(ctx context.Context, userID string, id primitive.ObjectID, upd models.TaskUpdate) (*models.Task, error)
	SetNewCategoryFlag(ctx context.Context, userID string, id primitive.ObjectID, isNew bool) error
	PushAttachment(ctx context.Context, userID string, id primitive.ObjectID, att models.Attachment) error
	PullAttachment(ctx context.Context, userID string, id primitive.ObjectID, attachmentID string) error
	Delete(ctx context.Context, userID string, id primitive.ObjectID) (*models.Task, error)
}

type CategoryStore interface {
	List(ctx context.Context, userID string) ([]models.Category, error)
	Insert(ctx context.Context, category *models.Category) (*models.Category, error)
	InsertMany(ctx context.Context, categories []models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
}

type BlobStore interface {
	Put(ctx context.Context, storagePath, contentType string, source io.Reader) error
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
}

type NotificationStore interface {
	CreateNotification(notification *models.Notification) error
	GetNotificationsByUserID(userID string) ([]models.Notification, error)
	MarkNotificationAsRead(userID, notificationID, createdAt string) error
	DeleteNotification(userID, notificationID, createdAt string) error
}

// Extractor is the structured extraction client boundary.
type Extractor interface {
	Extract(ctx context.Context, rawText string, now time.Time, categories []models.Category) (*models.ExtractedTask, error)
}

// Streams delivers committed document changes, in commit order per
// collection. No ordering holds across the two collections.
type Streams interface {
	WatchTasks(ctx context.Context, userID string) (<-chan models.TaskEvent, error)
	WatchCategories(ctx context.Context, userID string) (<-chan models.CategoryEvent, error)
}
