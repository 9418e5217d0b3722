package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskUrgency string

const (
	UrgencyHigh   TaskUrgency = "High"
	UrgencyMedium TaskUrgency = "Medium"
	UrgencyLow    TaskUrgency = "Low"
)

// Rank orders urgencies for sorting. Unrecognized values rank 0 and sort last.
func (u TaskUrgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	}
	return 0
}

type Task struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        string             `json:"-" bson:"userId"`
	Title         string             `json:"title" bson:"title"`
	Category      string             `json:"category" bson:"category"`
	Urgency       TaskUrgency        `json:"urgency" bson:"urgency"`
	DueDate       *time.Time         `json:"dueDate" bson:"dueDate,omitempty"`
	Notes         string             `json:"notes" bson:"notes"`
	Completed     bool               `json:"completed" bson:"completed"`
	IsNewCategory bool               `json:"isNewCategory" bson:"isNewCategory"`
	Attachments   []Attachment       `json:"attachments" bson:"attachments"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

// ExtractedTask is the validated output of the structured extraction step.
// It carries the remote model's category suggestion verbatim; reconciliation
// against the user's category set happens later.
type ExtractedTask struct {
	Title         string      `json:"title"`
	Category      string      `json:"category"`
	IsNewCategory bool        `json:"isNewCategory"`
	Urgency       TaskUrgency `json:"urgency"`
	DueDate       *time.Time  `json:"dueDate"`
	Notes         string      `json:"notes"`
}

// TaskUpdate lists the directly editable Task fields. Nil pointers mean
// "leave unchanged".
type TaskUpdate struct {
	Title     *string      `json:"title,omitempty"`
	Category  *string      `json:"category,omitempty"`
	Urgency   *TaskUrgency `json:"urgency,omitempty"`
	DueDate   *time.Time   `json:"dueDate,omitempty"`
	Notes     *string      `json:"notes,omitempty"`
	Completed *bool        `json:"completed,omitempty"`
}
