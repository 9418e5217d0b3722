package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/middleware"
	"github.com/sujankapadia/snaplist/models"
	"github.com/sujankapadia/snaplist/services"

	"github.com/gorilla/mux"
)

const maxAttachmentSize = 32 << 20 // 32 MB

type AttachmentHandler struct {
	service *services.AttachmentService
}

func NewAttachmentHandler(service *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		http.Error(w, "Invalid multipart payload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	att, err := h.service.Upload(r.Context(), middleware.UserID(r), id, header.Filename, contentType, file)
	if err != nil {
		logging.Logger.Warnf("Event ID: UPLOAD_FAILED, Description: Attachment upload failed for task %s: %v", id.Hex(), err)
		switch {
		case errors.Is(err, models.ErrQuotaExceeded):
			http.Error(w, "Storage quota exceeded", http.StatusInsufficientStorage)
		case errors.Is(err, models.ErrUploadTransport):
			http.Error(w, "Attachment upload failed", http.StatusBadGateway)
		default:
			writeServiceError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(att)
}

func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}
	attachmentID := mux.Vars(r)["attachmentID"]

	stream, att, err := h.service.Open(r.Context(), middleware.UserID(r), id, attachmentID)
	if err != nil {
		if errors.Is(err, models.ErrBlobNotFound) {
			// Orphaned metadata from a crashed two-phase delete.
			http.Error(w, "Attachment binary is missing", http.StatusGone)
			return
		}
		writeServiceError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", att.Type)
	w.Header().Set("Content-Disposition", `attachment; filename="`+att.Name+`"`)
	io.Copy(w, stream)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}
	attachmentID := mux.Vars(r)["attachmentID"]

	if err := h.service.Remove(r.Context(), middleware.UserID(r), id, attachmentID); err != nil {
		logging.Logger.Warnf("Event ID: ATTACHMENT_DELETE_FAILED, Description: Delete failed for attachment %s: %v", attachmentID, err)
		switch {
		case errors.Is(err, models.ErrBlobNotFound):
			http.Error(w, "Attachment binary not found", http.StatusNotFound)
		case errors.Is(err, models.ErrDeleteTransport):
			http.Error(w, "Attachment delete failed", http.StatusBadGateway)
		default:
			writeServiceError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Attachment removed successfully"}`))
}
