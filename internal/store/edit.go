package store

import "github.com/reeshuffled/dodue/internal/task"

// editSession is the single uncommitted inline edit. At most one field
// across the whole list may be open at a time.
type editSession struct {
	task     *task.Task
	field    task.Field
	value    string // current input value
	original string // last known good, restored on cancel
}

// StartEdit opens an edit on one field of t and returns the initial
// input value. An already-open session is force-committed with its
// current input value first: switching fields commits, it never
// discards typed input. The commit error, if any, is returned alongside
// the freshly opened session.
func (s *Store) StartEdit(t *task.Task, field task.Field) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var commitErr error
	if s.editing != nil {
		commitErr = s.commitLocked()
	}
	initial := editValue(t, field)
	s.editing = &editSession{task: t, field: field, value: initial, original: initial}
	return initial, commitErr
}

// SetEditValue records the in-progress input value so a forced commit
// sees what the user has typed so far.
func (s *Store) SetEditValue(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing != nil {
		s.editing.value = value
	}
}

// CommitEdit applies the open session through Update and closes it.
// On a validation failure the field keeps its last known good value.
func (s *Store) CommitEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked()
}

func (s *Store) commitLocked() error {
	es := s.editing
	if es == nil {
		return nil
	}
	s.editing = nil
	if es.value == es.original {
		return nil
	}
	return s.updateLocked(es.task, es.field, es.value)
}

// CancelEdit closes the open session and keeps the last known good
// value.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = nil
}

// Editing reports the open session, if any.
func (s *Store) Editing() (*task.Task, task.Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return nil, 0, false
	}
	return s.editing.task, s.editing.field, true
}

// editValue is the editable text for one field, in the form the input
// control expects.
func editValue(t *task.Task, field task.Field) string {
	switch field {
	case task.FieldDoDate:
		return t.DoDate.Input()
	case task.FieldDueDate:
		return t.DueDate.Input()
	default:
		return t.Name
	}
}
