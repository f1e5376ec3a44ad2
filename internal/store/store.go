// Package store owns the canonical task list, its persistence, the
// display preferences, and the single in-progress inline edit.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/reeshuffled/dodue/internal/dates"
	"github.com/reeshuffled/dodue/internal/storage"
	"github.com/reeshuffled/dodue/internal/task"
)

var (
	// ErrEmptyName rejects a task whose name is blank after trimming.
	ErrEmptyName = errors.New("task name is empty")
	// ErrDueBeforeDo rejects a due date earlier than the do date.
	ErrDueBeforeDo = errors.New("due date is before do date")
	// ErrUnknownTask reports an operation on a task the store does
	// not own.
	ErrUnknownTask = errors.New("task is not in the list")
)

// taskRecord is the persisted shape of one task.
type taskRecord struct {
	Name    string `json:"name"`
	DoDate  string `json:"doDate"`
	DueDate string `json:"dueDate"`
}

// Store is the single source of truth for tasks and preferences. Every
// successful mutation persists the whole collection and means the
// caller should re-sort and re-render. All methods are safe for
// concurrent use; the TUI drives the store from one goroutine, but
// nothing here depends on that.
type Store struct {
	mu       sync.Mutex
	provider storage.Provider
	logger   *log.Logger
	now      func() time.Time

	tasks   []*task.Task
	prefs   Prefs
	editing *editSession
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock, mainly for tests. The clock is
// queried fresh on every use: the app may stay open across midnight.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger attaches a debug logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open loads the persisted tasks and preferences from p. A medium with
// no documents yet yields an empty list and default preferences; the
// defaults are written back so later toggles start from a stored map.
func Open(p storage.Provider, opts ...Option) (*Store, error) {
	s := &Store{
		provider: p,
		logger:   log.New(io.Discard),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.loadTasks(); err != nil {
		return nil, err
	}
	if err := s.loadPrefs(); err != nil {
		return nil, err
	}
	return s, nil
}

// Today is the current calendar day, never cached.
func (s *Store) Today() dates.Date { return dates.FromTime(s.now()) }

// Tasks returns the canonical list in its current order.
func (s *Store) Tasks() []*task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Create appends a new task. The name must be non-blank and both dates
// must be real calendar dates in the date-entry form; the due date may
// not precede the do date. Nothing is persisted on rejection.
func (s *Store) Create(name, doInput, dueInput string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	do, err := dates.ParseInput(doInput)
	if err != nil {
		return nil, err
	}
	due, err := dates.ParseInput(dueInput)
	if err != nil {
		return nil, err
	}
	if due.Before(do) {
		return nil, ErrDueBeforeDo
	}

	t := &task.Task{Name: name, DoDate: do, DueDate: due}
	s.tasks = append(s.tasks, t)
	s.logger.Debug("created task", "name", name, "do", do.Stored(), "due", due.Stored())
	return t, s.saveTasks()
}

// Update mutates one field of t in place. Date values arrive in the
// date-entry form and go through the normalizer; moving the due date
// before the do date is refused. A successful update is persisted and
// may move the task between sections, so the caller re-renders.
func (s *Store) Update(t *task.Task, field task.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(t, field, value)
}

func (s *Store) updateLocked(t *task.Task, field task.Field, value string) error {
	switch field {
	case task.FieldName:
		name := strings.TrimSpace(value)
		if name == "" {
			return ErrEmptyName
		}
		t.Name = name
	case task.FieldDoDate:
		d, err := dates.ParseInput(value)
		if err != nil {
			return err
		}
		t.DoDate = d
	case task.FieldDueDate:
		d, err := dates.ParseInput(value)
		if err != nil {
			return err
		}
		if d.Before(t.DoDate) {
			return ErrDueBeforeDo
		}
		t.DueDate = d
	default:
		return fmt.Errorf("update: unknown field %d", field)
	}
	s.logger.Debug("updated task", "field", field.String(), "name", t.Name)
	return s.saveTasks()
}

// Delete removes t by identity. Irreversible; there is no undo.
func (s *Store) Delete(t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.tasks {
		if cur == t {
			if s.editing != nil && s.editing.task == t {
				s.editing = nil
			}
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.logger.Debug("deleted task", "name", t.Name)
			return s.saveTasks()
		}
	}
	return ErrUnknownTask
}

// SetDoDateToToday moves t's do date to the current day.
func (s *Store) SetDoDateToToday(t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.DoDate = dates.FromTime(s.now())
	s.logger.Debug("rescheduled task for today", "name", t.Name)
	return s.saveTasks()
}

// Plan is the render order for one pass over the list.
type Plan struct {
	Overdue []*task.Task
	DoNow   []*task.Task
	DoLater []*task.Task
}

// MakePlan sorts the canonical list in place and splits it into the
// three sections for today. Classification is recomputed every time
// and never written back; the new list order rides along with the
// next persisted mutation.
func (s *Store) MakePlan(today dates.Date) Plan {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.SortAll(s.tasks)
	var p Plan
	for _, t := range s.tasks {
		switch task.Classify(t, today) {
		case task.Overdue:
			p.Overdue = append(p.Overdue, t)
		case task.DoNow:
			p.DoNow = append(p.DoNow, t)
		default:
			p.DoLater = append(p.DoLater, t)
		}
	}
	return p
}

func (s *Store) loadTasks() error {
	data, ok, err := s.provider.Load(storage.TasksKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var records []taskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode task list: %w", err)
	}
	for _, r := range records {
		do, err := dates.ParseStored(r.DoDate)
		if err != nil {
			s.logger.Warn("skipping task with bad do date", "name", r.Name, "value", r.DoDate)
			continue
		}
		due, err := dates.ParseStored(r.DueDate)
		if err != nil {
			s.logger.Warn("skipping task with bad due date", "name", r.Name, "value", r.DueDate)
			continue
		}
		s.tasks = append(s.tasks, &task.Task{Name: r.Name, DoDate: do, DueDate: due})
	}
	return nil
}

// saveTasks rewrites the whole collection. When the write fails the
// in-memory list stays authoritative and the error is handed to the
// caller to warn or retry; the mutation is never rolled back.
func (s *Store) saveTasks() error {
	records := make([]taskRecord, len(s.tasks))
	for i, t := range s.tasks {
		records[i] = taskRecord{
			Name:    t.Name,
			DoDate:  t.DoDate.Stored(),
			DueDate: t.DueDate.Stored(),
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode task list: %w", err)
	}
	if err := s.provider.Save(storage.TasksKey, data); err != nil {
		s.logger.Error("task save failed", "err", err)
		return err
	}
	return nil
}
