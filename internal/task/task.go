// Package task defines the task record and the pure rules over it:
// which section a task belongs to and how the list is ordered.
package task

import "github.com/reeshuffled/dodue/internal/dates"

// Task is the sole persisted entity. The store owns every instance;
// there is no stable id, identity is pointer identity.
type Task struct {
	Name    string
	DoDate  dates.Date
	DueDate dates.Date
}

// Field selects which task attribute an edit targets.
type Field int

const (
	FieldName Field = iota
	FieldDoDate
	FieldDueDate
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldDoDate:
		return "do date"
	case FieldDueDate:
		return "due date"
	default:
		return "unknown"
	}
}
