package models

type ChangeOp string

const (
	OpInsert  ChangeOp = "insert"
	OpUpdate  ChangeOp = "update"
	OpReplace ChangeOp = "replace"
	OpDelete  ChangeOp = "delete"
)

// TaskEvent is one committed change to the tasks collection. Task is nil for
// deletes and for update events whose document lookup raced a delete.
type TaskEvent struct {
	Op   ChangeOp
	ID   string
	Task *Task
}

type CategoryEvent struct {
	Op       ChangeOp
	ID       string
	Category *Category
}
