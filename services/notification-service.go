package services

import (
	"fmt"
	"time"

	"github.com/sujankapadia/snaplist/models"
)

// NotificationService manages the transient, dismissible notices surfaced to
// the user when a capture, upload or delete fails. Nothing here is fatal to
// the running session.
type NotificationService struct {
	repo NotificationStore
}

func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

func (ns *NotificationService) CreateNotification(userID, username, message string) error {
	if userID == "" || message == "" {
		return fmt.Errorf("userID and message are required")
	}
	notification := models.Notification{
		UserID:    userID,
		Username:  username,
		Message:   message,
		CreatedAt: time.Now().UTC(),
		IsRead:    false,
	}
	return ns.repo.CreateNotification(&notification)
}

func (ns *NotificationService) GetNotifications(userID string) ([]models.Notification, error) {
	return ns.repo.GetNotificationsByUserID(userID)
}

func (ns *NotificationService) MarkNotificationAsRead(userID, notificationID, createdAt string) error {
	if userID == "" || notificationID == "" || createdAt == "" {
		return fmt.Errorf("userID, notificationID, and createdAt are required")
	}
	return ns.repo.MarkNotificationAsRead(userID, notificationID, createdAt)
}

func (ns *NotificationService) DeleteNotification(userID, notificationID, createdAt string) error {
	return ns.repo.DeleteNotification(userID, notificationID, createdAt)
}
