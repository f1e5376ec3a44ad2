package task

import "github.com/reeshuffled/dodue/internal/dates"

// Bucket is the section a task renders under.
type Bucket int

const (
	Overdue Bucket = iota
	DoNow
	DoLater
)

func (b Bucket) String() string {
	switch b {
	case Overdue:
		return "overdue"
	case DoNow:
		return "do now"
	case DoLater:
		return "do later"
	default:
		return "unknown"
	}
}

// Classify assigns t to exactly one bucket relative to today. A past
// due date wins even when the do date is still ahead. The result is
// never cached: "today" moves, so every render evaluates again.
func Classify(t *Task, today dates.Date) Bucket {
	if t.DoDate.Before(today) || t.DueDate.Before(today) {
		return Overdue
	}
	if t.DoDate.Equal(today) {
		return DoNow
	}
	return DoLater
}
