package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryService owns the category set: first-run seeding, manual edits,
// and the accept/dismiss reconciliation of AI-suggested categories.
type CategoryService struct {
	tasks      TaskStore
	categories CategoryStore
}

func NewCategoryService(tasks TaskStore, categories CategoryStore) *CategoryService {
	return &CategoryService{tasks: tasks, categories: categories}
}

func randomHue() int {
	return models.HuePalette[rand.Intn(len(models.HuePalette))]
}

// Accept creates a Category for the task's suggested label and clears the
// isNewCategory flag. Safe against double-submission: the name is checked
// case-sensitively first, and a duplicate-key collision from a concurrent
// accept still resolves to exactly one Category.
func (s *CategoryService) Accept(ctx context.Context, userID string, taskID primitive.ObjectID) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsNewCategory {
		return task, nil
	}
	if task.Category == "" {
		return nil, fmt.Errorf("task %s has no category to accept", taskID.Hex())
	}

	existing, err := s.categories.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, cat := range existing {
		if cat.Name == task.Category {
			found = true
			break
		}
	}

	if !found {
		_, err := s.categories.Insert(ctx, &models.Category{
			UserID: userID,
			Name:   task.Category,
			Hue:    randomHue(),
		})
		if err != nil && !errors.Is(err, models.ErrDuplicateCategory) {
			return nil, err
		}
		if errors.Is(err, models.ErrDuplicateCategory) {
			logging.Logger.Infof("Event ID: CATEGORY_ACCEPT_RACE, Description: Category %q already created for user %s", task.Category, userID)
		}
	}

	if err := s.tasks.SetNewCategoryFlag(ctx, userID, taskID, false); err != nil {
		return nil, err
	}
	task.IsNewCategory = false
	return task, nil
}

// Dismiss clears the flag without creating a Category. The task keeps its
// label as a one-off without a backing entity; that is a supported state.
func (s *CategoryService) Dismiss(ctx context.Context, userID string, taskID primitive.ObjectID) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsNewCategory {
		return task, nil
	}
	if err := s.tasks.SetNewCategoryFlag(ctx, userID, taskID, false); err != nil {
		return nil, err
	}
	task.IsNewCategory = false
	return task, nil
}

// SeedDefaults writes the 8-category default set as a single batch, and only
// when the user's category set is empty. Two clients racing through an empty
// check can both seed; that is a known, accepted limitation of the design.
func (s *CategoryService) SeedDefaults(ctx context.Context, userID string) error {
	existing, err := s.categories.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seed := make([]models.Category, len(models.DefaultCategories))
	for i, cat := range models.DefaultCategories {
		seed[i] = models.Category{
			UserID:      userID,
			Name:        cat.Name,
			Description: cat.Description,
			Hue:         randomHue(),
		}
	}

	if err := s.categories.InsertMany(ctx, seed); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: CATEGORIES_SEEDED, Description: Seeded %d default categories for user %s", len(seed), userID)
	return nil
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]models.Category, error) {
	return s.categories.List(ctx, userID)
}

func (s *CategoryService) Create(ctx context.Context, userID, name, description string) (*models.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	return s.categories.Insert(ctx, &models.Category{
		UserID:      userID,
		Name:        name,
		Description: description,
		Hue:         randomHue(),
	})
}

func (s *CategoryService) Update(ctx context.Context, category *models.Category) error {
	if category.Name == "" {
		return fmt.Errorf("category name is required")
	}
	return s.categories.Update(ctx, category)
}

// Delete removes only the Category entity. Tasks referencing its name keep
// an orphan label, which the view and sync layers tolerate.
func (s *CategoryService) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	return s.categories.Delete(ctx, userID, id)
}
