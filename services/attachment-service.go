package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttachmentService keeps the blob store and the task's embedded attachment
// array consistent. Upload writes the binary first, then appends metadata;
// delete removes the binary first, then the metadata. A crash between the
// two delete steps leaves an orphaned metadata entry, which is tolerated and
// detectable, never auto-repaired here.
type AttachmentService struct {
	tasks TaskStore
	blobs BlobStore
}

func NewAttachmentService(tasks TaskStore, blobs BlobStore) *AttachmentService {
	return &AttachmentService{tasks: tasks, blobs: blobs}
}

func storagePath(userID string, taskID primitive.ObjectID, filename string) string {
	return fmt.Sprintf("users/%s/tasks/%s/attachments/%d_%s", userID, taskID.Hex(), time.Now().UTC().UnixMilli(), filename)
}

func (s *AttachmentService) Upload(ctx context.Context, userID string, taskID primitive.ObjectID, filename, contentType string, source io.Reader) (*models.Attachment, error) {
	if _, err := s.tasks.GetByID(ctx, userID, taskID); err != nil {
		return nil, err
	}

	path := storagePath(userID, taskID, filename)
	if err := s.blobs.Put(ctx, path, contentType, source); err != nil {
		if errors.Is(err, models.ErrQuotaExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrUploadTransport, err)
	}

	att := models.Attachment{
		ID:          uuid.New().String(),
		Name:        filename,
		Type:        contentType,
		StoragePath: path,
		CreatedAt:   time.Now().UTC(),
	}
	att.URL = fmt.Sprintf("/api/tasks/%s/attachments/%s", taskID.Hex(), att.ID)

	if err := s.tasks.PushAttachment(ctx, userID, taskID, att); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: ATTACHMENT_UPLOADED, Description: Stored attachment %s for task %s", att.ID, taskID.Hex())
	return &att, nil
}

// Open streams an attachment's binary for download.
func (s *AttachmentService) Open(ctx context.Context, userID string, taskID primitive.ObjectID, attachmentID string) (io.ReadCloser, *models.Attachment, error) {
	att, err := s.find(ctx, userID, taskID, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.blobs.Open(ctx, att.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return stream, att, nil
}

// Remove is the two-phase delete: blob first, metadata second. If the blob
// delete fails the attachment array is left untouched so no metadata ever
// points at a blob that was known to be removable but wasn't removed.
func (s *AttachmentService) Remove(ctx context.Context, userID string, taskID primitive.ObjectID, attachmentID string) error {
	att, err := s.find(ctx, userID, taskID, attachmentID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, att.StoragePath); err != nil {
		return err
	}

	if err := s.tasks.PullAttachment(ctx, userID, taskID, attachmentID); err != nil {
		return err
	}

	logging.Logger.Infof("Event ID: ATTACHMENT_DELETED, Description: Removed attachment %s from task %s", attachmentID, taskID.Hex())
	return nil
}

func (s *AttachmentService) find(ctx context.Context, userID string, taskID primitive.ObjectID, attachmentID string) (*models.Attachment, error) {
	task, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	for i := range task.Attachments {
		if task.Attachments[i].ID == attachmentID {
			return &task.Attachments[i], nil
		}
	}
	return nil, models.ErrNotFound
}
