package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sujankapadia/snaplist/middleware"
	"github.com/sujankapadia/snaplist/models"
	"github.com/sujankapadia/snaplist/services"
	"github.com/sujankapadia/snaplist/views"
)

// ViewHandler serves the derived list: the live sync snapshot run through
// the view engine with the client's filter/sort state.
type ViewHandler struct {
	sync   *services.SyncService
	engine *views.Engine
}

func NewViewHandler(sync *services.SyncService) *ViewHandler {
	return &ViewHandler{sync: sync, engine: views.NewEngine()}
}

func parseQuery(r *http.Request) models.ViewQuery {
	q := models.ViewQuery{
		Status:   models.StatusActive,
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Due:      models.DateAll,
		Sort:     models.SortByNewest,
		Now:      time.Now(),
	}
	if r.URL.Query().Get("status") == string(models.StatusCompleted) {
		q.Status = models.StatusCompleted
	}
	switch models.DateFilter(r.URL.Query().Get("due")) {
	case models.DateToday:
		q.Due = models.DateToday
	case models.DateWeek:
		q.Due = models.DateWeek
	case models.DateMonth:
		q.Due = models.DateMonth
	}
	switch models.SortMethod(r.URL.Query().Get("sort")) {
	case models.SortByDueDate:
		q.Sort = models.SortByDueDate
	case models.SortByUrgency:
		q.Sort = models.SortByUrgency
	case models.SortByCategory:
		q.Sort = models.SortByCategory
	}
	return q
}

type viewResponse struct {
	Tasks      []models.Task     `json:"tasks"`
	Categories []models.Category `json:"categories"`
}

func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	session, err := h.sync.Session(r.Context(), middleware.UserID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snapshot := session.Snapshot()
	derived := h.engine.Derive(snapshot.Tasks, parseQuery(r))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(viewResponse{Tasks: derived, Categories: snapshot.Categories})
}

// StreamView pushes the derived list over server-sent events: the current
// snapshot immediately, then a fresh derivation on every republished
// snapshot until the client disconnects.
func (h *ViewHandler) StreamView(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	session, err := h.sync.Session(r.Context(), middleware.UserID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updates := session.Subscribe()
	defer session.Unsubscribe(updates)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	q := parseQuery(r)
	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			q.Now = time.Now()
			payload, err := json.Marshal(viewResponse{Tasks: h.engine.Derive(snap.Tasks, q), Categories: snap.Categories})
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
