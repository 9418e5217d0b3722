package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/sujankapadia/snaplist/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stand-ins for the Mongo, GridFS and Cassandra repositories.

type fakeTaskStore struct {
	mu        sync.Mutex
	tasks     map[primitive.ObjectID]*models.Task
	insertErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[primitive.ObjectID]*models.Task)}
}

func (f *fakeTaskStore) Insert(ctx context.Context, task *models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now().UTC()
	if task.Attachments == nil {
		task.Attachments = []models.Attachment{}
	}
	stored := *task
	f.tasks[task.ID] = &stored
	return task, nil
}

func (f *fakeTaskStore) get(userID string, id primitive.ObjectID) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, models.ErrNotFound
	}
	return task, nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, err := f.get(userID, id)
	if err != nil {
		return nil, err
	}
	copied := *task
	copied.Attachments = append([]models.Attachment(nil), task.Attachments...)
	return &copied, nil
}

func (f *fakeTaskStore) List(ctx context.Context, userID string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, task := range f.tasks {
		if task.UserID == userID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, userID string, id primitive.ObjectID, upd models.TaskUpdate) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, err := f.get(userID, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Category != nil {
		task.Category = *upd.Category
	}
	if upd.Urgency != nil {
		task.Urgency = *upd.Urgency
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	if upd.Notes != nil {
		task.Notes = *upd.Notes
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) SetNewCategoryFlag(ctx context.Context, userID string, id primitive.ObjectID, isNew bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, err := f.get(userID, id)
	if err != nil {
		return err
	}
	task.IsNewCategory = isNew
	return nil
}

func (f *fakeTaskStore) PushAttachment(ctx context.Context, userID string, id primitive.ObjectID, att models.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, err := f.get(userID, id)
	if err != nil {
		return err
	}
	task.Attachments = append(task.Attachments, att)
	return nil
}

func (f *fakeTaskStore) PullAttachment(ctx context.Context, userID string, id primitive.ObjectID, attachmentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, err := f.get(userID, id)
	if err != nil {
		return err
	}
	kept := task.Attachments[:0]
	for _, att := range task.Attachments {
		if att.ID != attachmentID {
			kept = append(kept, att)
		}
	}
	task.Attachments = kept
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, userID string, id primitive.ObjectID) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, err := f.get(userID, id)
	if err != nil {
		return nil, err
	}
	delete(f.tasks, id)
	return task, nil
}

type fakeCategoryStore struct {
	mu              sync.Mutex
	categories      []models.Category
	insertManyCalls int
	listErr         error
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{}
}

func (f *fakeCategoryStore) List(ctx context.Context, userID string) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Category
	for _, cat := range f.categories {
		if cat.UserID == userID {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) Insert(ctx context.Context, category *models.Category) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cat := range f.categories {
		if cat.UserID == category.UserID && cat.Name == category.Name {
			return nil, models.ErrDuplicateCategory
		}
	}
	category.ID = primitive.NewObjectID()
	f.categories = append(f.categories, *category)
	return category, nil
}

func (f *fakeCategoryStore) InsertMany(ctx context.Context, categories []models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertManyCalls++
	for i := range categories {
		categories[i].ID = primitive.NewObjectID()
		f.categories = append(f.categories, categories[i])
	}
	return nil
}

func (f *fakeCategoryStore) Update(ctx context.Context, category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, cat := range f.categories {
		if cat.ID == category.ID && cat.UserID == category.UserID {
			f.categories[i] = *category
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeCategoryStore) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, cat := range f.categories {
		if cat.ID == id && cat.UserID == userID {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

type fakeBlobStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	putErr    error
	deleteErr error
	deleted   []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(ctx context.Context, storagePath, contentType string, source io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(source)
	if err != nil {
		return err
	}
	f.blobs[storagePath] = data
	return nil
}

func (f *fakeBlobStore) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[storagePath]
	if !ok {
		return nil, models.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, storagePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.blobs[storagePath]; !ok {
		return models.ErrBlobNotFound
	}
	delete(f.blobs, storagePath)
	f.deleted = append(f.deleted, storagePath)
	return nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (f *fakeNotificationStore) CreateNotification(notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationStore) GetNotificationsByUserID(userID string) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkNotificationAsRead(userID, notificationID, createdAt string) error {
	return nil
}

func (f *fakeNotificationStore) DeleteNotification(userID, notificationID, createdAt string) error {
	return nil
}

type fakeExtractor struct {
	result *models.ExtractedTask
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, rawText string, now time.Time, categories []models.Category) (*models.ExtractedTask, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStreams struct {
	taskEvents     chan models.TaskEvent
	categoryEvents chan models.CategoryEvent
}

func newFakeStreams() *fakeStreams {
	return &fakeStreams{
		taskEvents:     make(chan models.TaskEvent, 16),
		categoryEvents: make(chan models.CategoryEvent, 16),
	}
}

func (f *fakeStreams) WatchTasks(ctx context.Context, userID string) (<-chan models.TaskEvent, error) {
	return f.taskEvents, nil
}

func (f *fakeStreams) WatchCategories(ctx context.Context, userID string) (<-chan models.CategoryEvent, error) {
	return f.categoryEvents, nil
}
