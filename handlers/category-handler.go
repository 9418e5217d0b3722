package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sujankapadia/snaplist/middleware"
	"github.com/sujankapadia/snaplist/models"
	"github.com/sujankapadia/snaplist/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryHandler struct {
	service *services.CategoryService
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context(), middleware.UserID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Category name is required", http.StatusBadRequest)
		return
	}

	category, err := h.service.Create(r.Context(), middleware.UserID(r), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateCategory) {
			http.Error(w, "A category with that name already exists", http.StatusConflict)
			return
		}
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(category)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["categoryID"])
	if err != nil {
		http.Error(w, "Invalid category ID format", http.StatusBadRequest)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Hue         int    `json:"hue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	category := &models.Category{
		ID:          id,
		UserID:      middleware.UserID(r),
		Name:        req.Name,
		Description: req.Description,
		Hue:         req.Hue,
	}
	if err := h.service.Update(r.Context(), category); err != nil {
		if errors.Is(err, models.ErrDuplicateCategory) {
			http.Error(w, "A category with that name already exists", http.StatusConflict)
			return
		}
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(category)
}

// DeleteCategory removes the category only; tasks keep the orphaned label.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["categoryID"])
	if err != nil {
		http.Error(w, "Invalid category ID format", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), middleware.UserID(r), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Category deleted successfully"}`))
}

// AcceptSuggestion promotes a task's suggested category into a real one.
func (h *CategoryHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	task, err := h.service.Accept(r.Context(), middleware.UserID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// DismissSuggestion keeps the label as a one-off without creating a category.
func (h *CategoryHandler) DismissSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}

	task, err := h.service.Dismiss(r.Context(), middleware.UserID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}
