package repositories

import (
	"context"
	"fmt"

	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeStreamer adapts MongoDB change streams into the per-collection event
// channels the sync layer consumes. Events arrive in commit order within one
// stream; nothing is guaranteed across the two streams.
type ChangeStreamer struct {
	tasks      *mongo.Collection
	categories *mongo.Collection
}

func NewChangeStreamer(tasks, categories *mongo.Collection) *ChangeStreamer {
	return &ChangeStreamer{tasks: tasks, categories: categories}
}

// userPipeline matches documents in one user's partition. Delete events carry
// no full document, so they pass through for every user and the session
// applier drops the ones it does not know.
func userPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "fullDocument.userId", Value: userID}},
			bson.D{{Key: "operationType", Value: "delete"}},
		}}}}},
	}
}

func (cs *ChangeStreamer) WatchTasks(ctx context.Context, userID string) (<-chan models.TaskEvent, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := cs.tasks.Watch(ctx, userPipeline(userID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to watch tasks: %v", err)
	}

	out := make(chan models.TaskEvent)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var ev struct {
				OperationType string `bson:"operationType"`
				DocumentKey   struct {
					ID primitive.ObjectID `bson:"_id"`
				} `bson:"documentKey"`
				FullDocument *models.Task `bson:"fullDocument"`
			}
			if err := stream.Decode(&ev); err != nil {
				logging.Logger.Errorf("Event ID: STREAM_DECODE_FAILED, Description: Failed to decode task change event: %v", err)
				continue
			}
			out <- models.TaskEvent{
				Op:   models.ChangeOp(ev.OperationType),
				ID:   ev.DocumentKey.ID.Hex(),
				Task: ev.FullDocument,
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			logging.Logger.Errorf("Event ID: STREAM_CLOSED, Description: Task change stream ended: %v", err)
		}
	}()
	return out, nil
}

func (cs *ChangeStreamer) WatchCategories(ctx context.Context, userID string) (<-chan models.CategoryEvent, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := cs.categories.Watch(ctx, userPipeline(userID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to watch categories: %v", err)
	}

	out := make(chan models.CategoryEvent)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var ev struct {
				OperationType string `bson:"operationType"`
				DocumentKey   struct {
					ID primitive.ObjectID `bson:"_id"`
				} `bson:"documentKey"`
				FullDocument *models.Category `bson:"fullDocument"`
			}
			if err := stream.Decode(&ev); err != nil {
				logging.Logger.Errorf("Event ID: STREAM_DECODE_FAILED, Description: Failed to decode category change event: %v", err)
				continue
			}
			out <- models.CategoryEvent{
				Op:       models.ChangeOp(ev.OperationType),
				ID:       ev.DocumentKey.ID.Hex(),
				Category: ev.FullDocument,
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			logging.Logger.Errorf("Event ID: STREAM_CLOSED, Description: Category change stream ended: %v", err)
		}
	}()
	return out, nil
}
