package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/models"

	"github.com/sony/gobreaker"
)

// CaptureService runs the capture pipeline: free text goes through the
// extraction client, the result becomes a Task in the user's partition. The
// remote model's isNewCategory verdict is stored verbatim; reconciliation is
// the CategoryService's job.
type CaptureService struct {
	extractor     Extractor
	breaker       *gobreaker.CircuitBreaker
	tasks         TaskStore
	categories    CategoryStore
	notifications *NotificationService
}

func NewCaptureService(extractor Extractor, breaker *gobreaker.CircuitBreaker, tasks TaskStore, categories CategoryStore, notifications *NotificationService) *CaptureService {
	return &CaptureService{
		extractor:     extractor,
		breaker:       breaker,
		tasks:         tasks,
		categories:    categories,
		notifications: notifications,
	}
}

// Capture turns rawText into a persisted Task. On failure nothing is
// written; the caller keeps the input so the user can resubmit.
func (s *CaptureService) Capture(ctx context.Context, userID, username, rawText string) (*models.Task, error) {
	if len(strings.TrimSpace(rawText)) < 2 {
		return nil, models.ErrEmptyInput
	}

	categories, err := s.categories.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories for extraction context: %v", err)
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.extractor.Extract(ctx, rawText, time.Now(), categories)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", models.ErrExtractionTransport, err)
		}
		s.notify(userID, username, "Could not understand that task. Please try again.")
		return nil, err
	}
	extracted := result.(*models.ExtractedTask)

	task := &models.Task{
		UserID:        userID,
		Title:         extracted.Title,
		Category:      extracted.Category,
		Urgency:       extracted.Urgency,
		DueDate:       extracted.DueDate,
		Notes:         extracted.Notes,
		Completed:     false,
		IsNewCategory: extracted.IsNewCategory,
		Attachments:   []models.Attachment{},
	}

	created, err := s.tasks.Insert(ctx, task)
	if err != nil {
		s.notify(userID, username, "Your task could not be saved. Please try again.")
		return nil, err
	}

	logging.Logger.Infof("Event ID: TASK_CAPTURED, Description: Captured task %s for user %s", created.ID.Hex(), userID)
	return created, nil
}

// CaptureVoice runs one cancelable voice session and feeds its final
// transcript into the capture pipeline. onDone receives the outcome once the
// recognizer produces a result; a stopped session produces nothing.
func (s *CaptureService) CaptureVoice(userID, username string, recognizer Recognizer, onDone func(*models.Task, error)) *VoiceSession {
	return StartVoiceCapture(recognizer, func(transcript string) {
		task, err := s.Capture(context.Background(), userID, username, transcript)
		if onDone != nil {
			onDone(task, err)
		}
	})
}

func (s *CaptureService) notify(userID, username, message string) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.CreateNotification(userID, username, message); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFY_FAILED, Description: Failed to store notification for user %s: %v", userID, err)
	}
}
