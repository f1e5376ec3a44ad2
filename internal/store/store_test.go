package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/reeshuffled/dodue/internal/dates"
	"github.com/reeshuffled/dodue/internal/storage"
	"github.com/reeshuffled/dodue/internal/task"
)

// fakeProvider keeps documents in memory and can be told to fail.
type fakeProvider struct {
	docs     map[string][]byte
	saves    int
	failSave bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{docs: map[string][]byte{}}
}

func (p *fakeProvider) Load(key string) ([]byte, bool, error) {
	data, ok := p.docs[key]
	return data, ok, nil
}

func (p *fakeProvider) Save(key string, data []byte) error {
	if p.failSave {
		return &storage.Error{Op: "save", Key: key, Err: errors.New("quota exceeded")}
	}
	p.saves++
	p.docs[key] = append([]byte(nil), data...)
	return nil
}

func (p *fakeProvider) Close() error { return nil }

// fixedClock pins "today" to 2024-03-05.
func fixedClock() time.Time {
	return time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)
}

func openStore(t *testing.T, p storage.Provider) *Store {
	t.Helper()
	s, err := Open(p, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestCreateAndReload(t *testing.T) {
	p := newFakeProvider()
	s := openStore(t, p)

	created, err := s.Create("buy milk", "2024-03-05", "2024-03-05")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Name != "buy milk" {
		t.Errorf("created name: got %q", created.Name)
	}

	// The persisted document matches the wire format exactly.
	want := `[{"name":"buy milk","doDate":"03/05/2024","dueDate":"03/05/2024"}]`
	if got := string(p.docs[storage.TasksKey]); got != want {
		t.Errorf("persisted document:\n got %s\nwant %s", got, want)
	}

	// A fresh store over the same medium sees the task.
	s2 := openStore(t, p)
	tasks := s2.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("reloaded %d tasks, want 1", len(tasks))
	}
	if tasks[0].Name != "buy milk" || tasks[0].DoDate.Stored() != "03/05/2024" {
		t.Errorf("reloaded task mismatch: %+v", tasks[0])
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	p := newFakeProvider()
	s := openStore(t, p)
	before := p.saves

	for _, name := range []string{"", "   ", "\t"} {
		if _, err := s.Create(name, "2024-03-05", "2024-03-06"); !errors.Is(err, ErrEmptyName) {
			t.Errorf("Create(%q): got %v, want ErrEmptyName", name, err)
		}
	}
	if len(s.Tasks()) != 0 {
		t.Error("rejected create still added a task")
	}
	if p.saves != before {
		t.Error("rejected create still persisted")
	}
}

func TestCreateRejectsBadDates(t *testing.T) {
	p := newFakeProvider()
	s := openStore(t, p)

	var perr *dates.ParseError
	if _, err := s.Create("x", "not-a-date", "2024-03-06"); !errors.As(err, &perr) {
		t.Errorf("bad do date: got %v, want *dates.ParseError", err)
	}
	if _, err := s.Create("x", "2024-03-05", "2024-02-30"); !errors.As(err, &perr) {
		t.Errorf("bad due date: got %v, want *dates.ParseError", err)
	}
	if _, err := s.Create("x", "2024-03-05", "2024-03-04"); !errors.Is(err, ErrDueBeforeDo) {
		t.Errorf("due before do: got %v, want ErrDueBeforeDo", err)
	}
	if len(s.Tasks()) != 0 {
		t.Error("rejected create still added a task")
	}
}

func TestCreateTrimsName(t *testing.T) {
	s := openStore(t, newFakeProvider())

	created, err := s.Create("  buy milk  ", "2024-03-05", "2024-03-06")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Name != "buy milk" {
		t.Errorf("name not trimmed: %q", created.Name)
	}
}

func TestUpdate(t *testing.T) {
	p := newFakeProvider()
	s := openStore(t, p)

	tk, err := s.Create("buy milk", "2024-03-05", "2024-03-06")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Update(tk, task.FieldName, "buy oat milk"); err != nil {
		t.Fatalf("Update name failed: %v", err)
	}
	if tk.Name != "buy oat milk" {
		t.Errorf("name not updated: %q", tk.Name)
	}

	if err := s.Update(tk, task.FieldDoDate, "2024-03-10"); err != nil {
		t.Fatalf("Update do date failed: %v", err)
	}
	if tk.DoDate.Stored() != "03/10/2024" {
		t.Errorf("do date not normalized: %q", tk.DoDate.Stored())
	}

	if err := s.Update(tk, task.FieldDueDate, "2024-03-12"); err != nil {
		t.Fatalf("Update due date failed: %v", err)
	}

	// Every successful update persisted.
	var records []taskRecord
	if err := json.Unmarshal(p.docs[storage.TasksKey], &records); err != nil {
		t.Fatalf("decode persisted document: %v", err)
	}
	if records[0].Name != "buy oat milk" || records[0].DoDate != "03/10/2024" || records[0].DueDate != "03/12/2024" {
		t.Errorf("persisted record mismatch: %+v", records[0])
	}
}

func TestUpdateRejectsBadValues(t *testing.T) {
	s := openStore(t, newFakeProvider())

	tk, err := s.Create("buy milk", "2024-03-05", "2024-03-06")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Update(tk, task.FieldName, "  "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name: got %v, want ErrEmptyName", err)
	}
	var perr *dates.ParseError
	if err := s.Update(tk, task.FieldDueDate, "bogus"); !errors.As(err, &perr) {
		t.Errorf("bad due date: got %v, want *dates.ParseError", err)
	}
	if err := s.Update(tk, task.FieldDueDate, "2024-03-01"); !errors.Is(err, ErrDueBeforeDo) {
		t.Errorf("due before do: got %v, want ErrDueBeforeDo", err)
	}
	if tk.Name != "buy milk" || tk.DueDate.Stored() != "03/06/2024" {
		t.Errorf("rejected update still mutated the task: %+v", tk)
	}
}

func TestDelete(t *testing.T) {
	p := newFakeProvider()
	s := openStore(t, p)

	a, _ := s.Create("a", "2024-03-05", "2024-03-05")
	b, _ := s.Create("b", "2024-03-05", "2024-03-05")

	if err := s.Delete(a); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0] != b {
		t.Errorf("wrong task deleted: %+v", tasks)
	}
	if err := s.Delete(a); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("double delete: got %v, want ErrUnknownTask", err)
	}

	var records []taskRecord
	if err := json.Unmarshal(p.docs[storage.TasksKey], &records); err != nil {
		t.Fatalf("decode persisted document: %v", err)
	}
	if len(records) != 1 || records[0].Name != "b" {
		t.Errorf("persisted list mismatch: %+v", records)
	}
}

func TestSetDoDateToToday(t *testing.T) {
	s := openStore(t, newFakeProvider())

	tk, _ := s.Create("later", "2024-03-20", "2024-03-25")
	if err := s.SetDoDateToToday(tk); err != nil {
		t.Fatalf("SetDoDateToToday failed: %v", err)
	}
	if tk.DoDate.Stored() != "03/05/2024" {
		t.Errorf("do date: got %q, want today", tk.DoDate.Stored())
	}
}

func TestMakePlan(t *testing.T) {
	s := openStore(t, newFakeProvider())

	s.Create("slipped", "2024-03-01", "2024-03-02")
	s.Create("today b", "2024-03-05", "2024-03-07")
	s.Create("today a", "2024-03-05", "2024-03-07")
	s.Create("someday", "2024-03-09", "2024-03-10")

	plan := s.MakePlan(s.Today())
	if len(plan.Overdue) != 1 || plan.Overdue[0].Name != "slipped" {
		t.Errorf("overdue section: %+v", names(plan.Overdue))
	}
	if got := names(plan.DoNow); len(got) != 2 || got[0] != "today a" || got[1] != "today b" {
		t.Errorf("do-now section out of order: %v", got)
	}
	if len(plan.DoLater) != 1 || plan.DoLater[0].Name != "someday" {
		t.Errorf("do-later section: %+v", names(plan.DoLater))
	}

	// The canonical order reflects the sort.
	tasks := s.Tasks()
	want := []string{"slipped", "today a", "today b", "someday"}
	for i, n := range want {
		if tasks[i].Name != n {
			t.Fatalf("canonical position %d: got %q, want %q", i, tasks[i].Name, n)
		}
	}
}

func TestReclassificationNeedsNoWrite(t *testing.T) {
	p := newFakeProvider()
	day := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	s, err := Open(p, WithClock(func() time.Time { return day }))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tk, _ := s.Create("buy milk", "2024-03-05", "2024-03-05")
	writes := p.saves

	if got := task.Classify(tk, s.Today()); got != task.DoNow {
		t.Fatalf("on the day: got %v, want DoNow", got)
	}

	// Five days pass with no edits.
	day = day.AddDate(0, 0, 5)
	plan := s.MakePlan(s.Today())
	if len(plan.Overdue) != 1 {
		t.Errorf("after day change: task not reclassified overdue")
	}
	if p.saves != writes {
		t.Errorf("reclassification wrote to storage: %d extra saves", p.saves-writes)
	}
}

func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	p := newFakeProvider()
	s := openStore(t, p)

	p.failSave = true
	created, err := s.Create("buy milk", "2024-03-05", "2024-03-06")

	var serr *storage.Error
	if !errors.As(err, &serr) {
		t.Fatalf("Create with failing medium: got %v, want *storage.Error", err)
	}
	if created == nil {
		t.Fatal("failed save dropped the created task")
	}
	if len(s.Tasks()) != 1 {
		t.Fatal("in-memory list lost the task after a failed save")
	}

	// Once the medium recovers, the next mutation persists everything.
	p.failSave = false
	if err := s.Update(created, task.FieldName, "buy oat milk"); err != nil {
		t.Fatalf("Update after recovery failed: %v", err)
	}
	var records []taskRecord
	if err := json.Unmarshal(p.docs[storage.TasksKey], &records); err != nil {
		t.Fatalf("decode persisted document: %v", err)
	}
	if len(records) != 1 || records[0].Name != "buy oat milk" {
		t.Errorf("recovered write mismatch: %+v", records)
	}
}

func TestLoadAllAbsentIsEmpty(t *testing.T) {
	s := openStore(t, newFakeProvider())
	if got := s.Tasks(); len(got) != 0 {
		t.Errorf("empty medium: got %d tasks, want 0", len(got))
	}
}

func names(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}
