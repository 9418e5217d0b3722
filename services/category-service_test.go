package services

import (
	"context"
	"testing"

	"github.com/sujankapadia/snaplist/models"
)

func seedTask(t *testing.T, tasks *fakeTaskStore, category string, isNew bool) *models.Task {
	t.Helper()
	task, err := tasks.Insert(context.Background(), &models.Task{
		UserID:        "u1",
		Title:         "Paint the fence",
		Category:      category,
		Urgency:       models.UrgencyMedium,
		IsNewCategory: isNew,
	})
	if err != nil {
		t.Fatalf("failed to insert task: %v", err)
	}
	return task
}

func inPalette(hue int) bool {
	for _, h := range models.HuePalette {
		if h == hue {
			return true
		}
	}
	return false
}

func TestAccept_CreatesCategoryAndClearsFlag(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	svc := NewCategoryService(tasks, categories)
	task := seedTask(t, tasks, "Outdoor", true)

	got, err := svc.Accept(context.Background(), "u1", task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsNewCategory {
		t.Error("accept must clear isNewCategory")
	}

	stored, _ := categories.List(context.Background(), "u1")
	if len(stored) != 1 || stored[0].Name != "Outdoor" {
		t.Fatalf("expected one category named Outdoor, got %v", stored)
	}
	if !inPalette(stored[0].Hue) {
		t.Errorf("hue %d is not in the fixed palette", stored[0].Hue)
	}
}

func TestAccept_IsIdempotent(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	svc := NewCategoryService(tasks, categories)
	task := seedTask(t, tasks, "Outdoor", true)

	if _, err := svc.Accept(context.Background(), "u1", task.ID); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	if _, err := svc.Accept(context.Background(), "u1", task.ID); err != nil {
		t.Fatalf("second accept failed: %v", err)
	}

	stored, _ := categories.List(context.Background(), "u1")
	count := 0
	for _, cat := range stored {
		if cat.Name == "Outdoor" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one Outdoor category, got %d", count)
	}
}

func TestAccept_ConcurrentAcceptsYieldOneCategory(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	svc := NewCategoryService(tasks, categories)
	first := seedTask(t, tasks, "Outdoor", true)
	second := seedTask(t, tasks, "Outdoor", true)

	done := make(chan error, 2)
	go func() {
		_, err := svc.Accept(context.Background(), "u1", first.ID)
		done <- err
	}()
	go func() {
		_, err := svc.Accept(context.Background(), "u1", second.ID)
		done <- err
	}()
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("accept %d failed: %v", i, err)
		}
	}

	stored, _ := categories.List(context.Background(), "u1")
	if len(stored) != 1 {
		t.Errorf("expected exactly one category after concurrent accepts, got %d", len(stored))
	}
}

func TestAccept_CaseSensitiveNameCheck(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	categories.Insert(context.Background(), &models.Category{UserID: "u1", Name: "outdoor"})
	svc := NewCategoryService(tasks, categories)
	task := seedTask(t, tasks, "Outdoor", true)

	if _, err := svc.Accept(context.Background(), "u1", task.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// "outdoor" and "Outdoor" are distinct names; both exist afterwards.
	stored, _ := categories.List(context.Background(), "u1")
	if len(stored) != 2 {
		t.Errorf("expected 2 categories (case-sensitive names), got %d", len(stored))
	}
}

func TestDismiss_KeepsOneOffLabel(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	svc := NewCategoryService(tasks, categories)
	task := seedTask(t, tasks, "Outdoor", true)

	got, err := svc.Dismiss(context.Background(), "u1", task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsNewCategory {
		t.Error("dismiss must clear isNewCategory")
	}
	if got.Category != "Outdoor" {
		t.Errorf("dismiss must keep the label, got %q", got.Category)
	}

	stored, _ := categories.List(context.Background(), "u1")
	if len(stored) != 0 {
		t.Errorf("dismiss must not create a category, got %v", stored)
	}
}

func TestSeedDefaults_WritesOneBatchOfEight(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	svc := NewCategoryService(tasks, categories)

	if err := svc.SeedDefaults(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := categories.List(context.Background(), "u1")
	if len(stored) != 8 {
		t.Fatalf("expected 8 seeded categories, got %d", len(stored))
	}
	if categories.insertManyCalls != 1 {
		t.Errorf("seed must be a single batch write, got %d calls", categories.insertManyCalls)
	}
	for _, cat := range stored {
		if !inPalette(cat.Hue) {
			t.Errorf("seeded category %q has hue %d outside the palette", cat.Name, cat.Hue)
		}
	}
}

func TestSeedDefaults_SkipsNonEmptySet(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	categories.Insert(context.Background(), &models.Category{UserID: "u1", Name: "Existing"})
	svc := NewCategoryService(tasks, categories)

	if err := svc.SeedDefaults(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := categories.List(context.Background(), "u1")
	if len(stored) != 1 {
		t.Errorf("seeding against a non-empty set must be a no-op, got %d categories", len(stored))
	}
	if categories.insertManyCalls != 0 {
		t.Errorf("expected no batch writes, got %d", categories.insertManyCalls)
	}
}

func TestCreate_RejectsDuplicateName(t *testing.T) {
	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()
	svc := NewCategoryService(tasks, categories)

	if _, err := svc.Create(context.Background(), "u1", "Work", "job things"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(context.Background(), "u1", "Work", "again"); err != models.ErrDuplicateCategory {
		t.Errorf("expected ErrDuplicateCategory, got %v", err)
	}
}
