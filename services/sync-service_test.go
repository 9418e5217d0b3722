package services

import (
	"context"
	"testing"
	"time"

	"github.com/sujankapadia/snaplist/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplyTaskEvent(t *testing.T) {
	id := primitive.NewObjectID()
	task := models.Task{ID: id, UserID: "u1", Title: "a"}
	tasks := map[string]models.Task{}

	applyTaskEvent(tasks, models.TaskEvent{Op: models.OpInsert, ID: id.Hex(), Task: &task})
	if got := tasks[id.Hex()].Title; got != "a" {
		t.Fatalf("insert not applied, got %q", got)
	}

	updated := task
	updated.Title = "b"
	applyTaskEvent(tasks, models.TaskEvent{Op: models.OpUpdate, ID: id.Hex(), Task: &updated})
	if got := tasks[id.Hex()].Title; got != "b" {
		t.Errorf("update not applied, got %q", got)
	}

	t.Run("update with missing document is skipped", func(t *testing.T) {
		applyTaskEvent(tasks, models.TaskEvent{Op: models.OpUpdate, ID: id.Hex(), Task: nil})
		if got := tasks[id.Hex()].Title; got != "b" {
			t.Errorf("nil-document update must be a no-op, got %q", got)
		}
	})

	applyTaskEvent(tasks, models.TaskEvent{Op: models.OpDelete, ID: id.Hex()})
	if len(tasks) != 0 {
		t.Error("delete not applied")
	}

	t.Run("foreign delete is a no-op", func(t *testing.T) {
		applyTaskEvent(tasks, models.TaskEvent{Op: models.OpDelete, ID: primitive.NewObjectID().Hex()})
		if len(tasks) != 0 {
			t.Error("unknown delete must not change state")
		}
	})
}

func TestApplyCategoryEvent(t *testing.T) {
	id := primitive.NewObjectID()
	cat := models.Category{ID: id, UserID: "u1", Name: "Work"}
	categories := map[string]models.Category{}

	applyCategoryEvent(categories, models.CategoryEvent{Op: models.OpInsert, ID: id.Hex(), Category: &cat})
	if len(categories) != 1 {
		t.Fatal("insert not applied")
	}
	applyCategoryEvent(categories, models.CategoryEvent{Op: models.OpDelete, ID: id.Hex()})
	if len(categories) != 0 {
		t.Error("delete not applied")
	}
}

func TestSession_FirstUseSeedsEmptyCategorySet(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	svc := NewSyncService(tasks, NewCategoryService(tasks, categories), newFakeStreams())
	defer svc.Close()

	sess, err := svc.Session(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := sess.Snapshot()
	if len(snap.Categories) != 8 {
		t.Errorf("first session must seed 8 default categories, got %d", len(snap.Categories))
	}
	if categories.insertManyCalls != 1 {
		t.Errorf("expected one seed batch, got %d", categories.insertManyCalls)
	}
}

func TestSession_SecondUserSessionDoesNotReseed(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	svc := NewSyncService(tasks, NewCategoryService(tasks, categories), newFakeStreams())
	defer svc.Close()

	if _, err := svc.Session(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.Close()

	svc2 := NewSyncService(tasks, NewCategoryService(tasks, categories), newFakeStreams())
	defer svc2.Close()
	if _, err := svc2.Session(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if categories.insertManyCalls != 1 {
		t.Errorf("non-empty category set must not be reseeded, got %d batches", categories.insertManyCalls)
	}
}

func TestSession_RepublishesOnChangeEvents(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	streams := newFakeStreams()
	svc := NewSyncService(tasks, NewCategoryService(tasks, categories), streams)
	defer svc.Close()

	sess, err := svc.Session(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub := sess.Subscribe()
	initial := <-sub
	if len(initial.Tasks) != 0 {
		t.Fatalf("expected empty initial task set, got %d", len(initial.Tasks))
	}

	id := primitive.NewObjectID()
	streams.taskEvents <- models.TaskEvent{
		Op:   models.OpInsert,
		ID:   id.Hex(),
		Task: &models.Task{ID: id, UserID: "u1", Title: "from another device", CreatedAt: time.Now()},
	}

	select {
	case snap := <-sub:
		if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "from another device" {
			t.Errorf("republished snapshot missing the new task: %+v", snap.Tasks)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot republished after change event")
	}
}

func TestSession_UnsubscribeStopsDelivery(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	streams := newFakeStreams()
	svc := NewSyncService(tasks, NewCategoryService(tasks, categories), streams)
	defer svc.Close()

	sess, err := svc.Session(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gone := sess.Subscribe()
	<-gone
	kept := sess.Subscribe()
	<-kept
	sess.Unsubscribe(gone)

	id := primitive.NewObjectID()
	streams.taskEvents <- models.TaskEvent{
		Op:   models.OpInsert,
		ID:   id.Hex(),
		Task: &models.Task{ID: id, UserID: "u1", Title: "still syncing", CreatedAt: time.Now()},
	}

	select {
	case <-kept:
	case <-time.After(2 * time.Second):
		t.Fatal("remaining subscriber no longer receives snapshots")
	}

	select {
	case snap := <-gone:
		t.Errorf("removed subscriber still received a snapshot: %v", snap.Tasks)
	default:
	}
}

func TestSession_SnapshotOrderIsCanonical(t *testing.T) {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	offsets := map[string]time.Duration{"first": 0, "second": time.Hour, "third": 2 * time.Hour}

	sess := &Session{
		userID:     "u1",
		tasks:      map[string]models.Task{},
		categories: map[string]models.Category{},
		cancel:     func() {},
	}
	for _, title := range []string{"third", "first", "second"} {
		id := primitive.NewObjectID()
		sess.tasks[id.Hex()] = models.Task{ID: id, UserID: "u1", Title: title, CreatedAt: base.Add(offsets[title])}
	}

	snap := sess.Snapshot()
	want := []string{"first", "second", "third"}
	for i, task := range snap.Tasks {
		if task.Title != want[i] {
			t.Fatalf("expected canonical createdAt order %v, got position %d = %q", want, i, task.Title)
		}
	}
}
