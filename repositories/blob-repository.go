package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sujankapadia/snaplist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlobRepo stores attachment binaries in a GridFS bucket, addressed by their
// storage path (users/{userId}/tasks/{taskId}/attachments/{timestamp}_{name}).
// The bucket streams take deadlines rather than contexts, so each operation
// propagates the caller's deadline when it carries one.
type BlobRepo struct {
	bucket *gridfs.Bucket
}

func NewBlobRepo(db *mongo.Database) (*BlobRepo, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob bucket: %v", err)
	}
	return &BlobRepo{bucket: bucket}, nil
}

func (r *BlobRepo) Put(ctx context.Context, storagePath, contentType string, source io.Reader) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := r.bucket.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("failed to store blob: %v", err)
		}
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := r.bucket.UploadFromStream(storagePath, source, opts); err != nil {
		return fmt.Errorf("failed to store blob: %v", err)
	}
	return nil
}

func (r *BlobRepo) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := r.bucket.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to open blob: %v", err)
		}
	}
	stream, err := r.bucket.OpenDownloadStreamByName(storagePath)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, models.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %v", err)
	}
	return stream, nil
}

func (r *BlobRepo) Delete(ctx context.Context, storagePath string) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := r.bucket.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("%w: %v", models.ErrDeleteTransport, err)
		}
	}
	cursor, err := r.bucket.Find(bson.M{"filename": storagePath})
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrDeleteTransport, err)
	}
	defer cursor.Close(ctx)

	var files []struct {
		ID interface{} `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("%w: %v", models.ErrDeleteTransport, err)
	}
	if len(files) == 0 {
		return models.ErrBlobNotFound
	}

	for _, f := range files {
		if err := r.bucket.Delete(f.ID); err != nil {
			return fmt.Errorf("%w: %v", models.ErrDeleteTransport, err)
		}
	}
	return nil
}
