package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sujankapadia/snaplist/middleware"
	"github.com/sujankapadia/snaplist/models"
	"github.com/sujankapadia/snaplist/services"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (nh *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := nh.service.GetNotifications(middleware.UserID(r))
	if err != nil {
		http.Error(w, "Failed to fetch notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

func (nh *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NotificationID string `json:"notificationId"`
		CreatedAt      string `json:"createdAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := nh.service.MarkNotificationAsRead(middleware.UserID(r), req.NotificationID, req.CreatedAt); err != nil {
		http.Error(w, "Failed to update notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Notification marked as read"}`))
}

// Dismiss deletes one notice from the inbox.
func (nh *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	notificationID := mux.Vars(r)["notificationID"]
	createdAt := r.URL.Query().Get("createdAt")
	if createdAt == "" {
		http.Error(w, "Missing createdAt parameter", http.StatusBadRequest)
		return
	}

	if err := nh.service.DeleteNotification(middleware.UserID(r), notificationID, createdAt); err != nil {
		http.Error(w, "Failed to delete notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Notification dismissed"}`))
}
