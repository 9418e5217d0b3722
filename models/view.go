package models

import "time"

type StatusFilter string

const (
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

type DateFilter string

const (
	DateAll   DateFilter = "all"
	DateToday DateFilter = "today"
	DateWeek  DateFilter = "week"
	DateMonth DateFilter = "month"
)

type SortMethod string

const (
	SortByDueDate  SortMethod = "dueDate"
	SortByUrgency  SortMethod = "urgency"
	SortByCategory SortMethod = "category"
	SortByNewest   SortMethod = "newest"
)

// ViewQuery is the full filter/sort state of the rendered list. Now anchors
// the relative date windows.
type ViewQuery struct {
	Status   StatusFilter
	Search   string
	Category string
	Due      DateFilter
	Sort     SortMethod
	Now      time.Time
}
