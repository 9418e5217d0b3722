package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/middleware"
	"github.com/sujankapadia/snaplist/models"
	"github.com/sujankapadia/snaplist/services"
)

type CaptureHandler struct {
	service *services.CaptureService
}

func NewCaptureHandler(service *services.CaptureService) *CaptureHandler {
	return &CaptureHandler{service: service}
}

// Capture accepts free text and returns the structured task created from it.
// Failures are non-fatal: the client keeps the input for resubmission.
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	task, err := h.service.Capture(r.Context(), middleware.UserID(r), middleware.Username(r), req.Text)
	if err != nil {
		logging.Logger.Warnf("Event ID: CAPTURE_FAILED, Description: Capture failed for user %s: %v", middleware.UserID(r), err)
		switch {
		case errors.Is(err, models.ErrEmptyInput):
			http.Error(w, "Input is too short to capture", http.StatusBadRequest)
		case errors.Is(err, models.ErrMalformedResponse):
			http.Error(w, "The extraction service returned an unusable response", http.StatusBadGateway)
		case errors.Is(err, models.ErrExtractionTransport):
			http.Error(w, "The extraction service is unreachable", http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}
