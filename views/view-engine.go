package views

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sujankapadia/snaplist/models"
)

// Derive is the pure filter/sort pipeline behind the rendered list. Filters
// run in a fixed order, each over the previous stage's subset: status,
// search, category, date window. Exactly one sort method applies;
// sort.SliceStable preserves input order between equal elements.
func Derive(tasks []models.Task, q models.ViewQuery) []models.Task {
	out := make([]models.Task, 0, len(tasks))

	for _, t := range tasks {
		if q.Status == models.StatusCompleted {
			if !t.Completed {
				continue
			}
		} else if t.Completed {
			continue
		}
		out = append(out, t)
	}

	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		filtered := out[:0]
		for _, t := range out {
			if strings.Contains(strings.ToLower(t.Title), search) || strings.Contains(strings.ToLower(t.Notes), search) {
				filtered = append(filtered, t)
			}
		}
		out = filtered
	}

	if q.Category != "" {
		filtered := out[:0]
		for _, t := range out {
			if t.Category == q.Category {
				filtered = append(filtered, t)
			}
		}
		out = filtered
	}

	if cutoff, ok := dateCutoff(q); ok {
		filtered := out[:0]
		for _, t := range out {
			// Tasks with no due date are excluded from every dated window.
			if t.DueDate != nil && !t.DueDate.After(cutoff) {
				filtered = append(filtered, t)
			}
		}
		out = filtered
	}

	sortTasks(out, q.Sort)
	return out
}

func dateCutoff(q models.ViewQuery) (time.Time, bool) {
	now := q.Now
	switch q.Due {
	case models.DateToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), now.Location()), true
	case models.DateWeek:
		return now.Add(7 * 24 * time.Hour), true
	case models.DateMonth:
		return now.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}

func sortTasks(tasks []models.Task, method models.SortMethod) {
	switch method {
	case models.SortByDueDate:
		sort.SliceStable(tasks, func(i, j int) bool {
			// Nulls sort last.
			if tasks[i].DueDate == nil {
				return false
			}
			if tasks[j].DueDate == nil {
				return true
			}
			return tasks[i].DueDate.Before(*tasks[j].DueDate)
		})
	case models.SortByUrgency:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Urgency.Rank() > tasks[j].Urgency.Rank()
		})
	case models.SortByCategory:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Category < tasks[j].Category
		})
	case models.SortByNewest:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}
}

// Engine memoizes Derive on a structural key of its inputs, so redundant
// recomputes between change events are skipped.
type Engine struct {
	mu     sync.Mutex
	key    uint64
	valid  bool
	result []models.Task
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Derive(tasks []models.Task, q models.ViewQuery) []models.Task {
	key := structuralKey(tasks, q)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.valid && e.key == key {
		return append([]models.Task(nil), e.result...)
	}

	result := Derive(tasks, q)
	e.key = key
	e.valid = true
	e.result = append([]models.Task(nil), result...)
	return result
}

func structuralKey(tasks []models.Task, q models.ViewQuery) uint64 {
	h := fnv.New64a()
	for _, t := range tasks {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%t|%t|", t.ID.Hex(), t.Title, t.Category, t.Urgency, t.Notes, t.Completed, t.IsNewCategory)
		if t.DueDate != nil {
			fmt.Fprintf(h, "%d", t.DueDate.UnixNano())
		}
		fmt.Fprintf(h, "|%d|%d;", t.CreatedAt.UnixNano(), len(t.Attachments))
	}
	// Now only feeds the date-window cutoffs, so it enters the key at minute
	// resolution; a nanosecond clock would defeat the cache on every request.
	fmt.Fprintf(h, "#%s|%s|%s|%s|%s|%d", q.Status, q.Search, q.Category, q.Due, q.Sort, q.Now.Truncate(time.Minute).Unix())
	return h.Sum64()
}
