package storage

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dodue.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadMissingKey(t *testing.T) {
	s := openTemp(t)

	data, ok, err := s.Load(TasksKey)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok || data != nil {
		t.Errorf("missing key: got ok=%v data=%q, want absent", ok, data)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTemp(t)

	doc := []byte(`[{"name":"buy milk","doDate":"03/05/2024","dueDate":"03/05/2024"}]`)
	if err := s.Save(TasksKey, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, err := s.Load(TasksKey)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("saved document not found")
	}
	if string(got) != string(doc) {
		t.Errorf("Load: got %q, want %q", got, doc)
	}
}

func TestSaveReplacesWholeDocument(t *testing.T) {
	s := openTemp(t)

	if err := s.Save(PrefsKey, []byte(`{"showLaterTasks":true}`)); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := s.Save(PrefsKey, []byte(`{"showLaterTasks":false}`)); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, ok, err := s.Load(PrefsKey)
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"showLaterTasks":false}` {
		t.Errorf("Load after rewrite: got %q", got)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	s := openTemp(t)

	if err := s.Save(TasksKey, []byte(`[]`)); err != nil {
		t.Fatalf("Save tasks failed: %v", err)
	}
	if err := s.Save(PrefsKey, []byte(`{}`)); err != nil {
		t.Fatalf("Save prefs failed: %v", err)
	}

	tasks, ok, err := s.Load(TasksKey)
	if err != nil || !ok {
		t.Fatalf("Load tasks failed: ok=%v err=%v", ok, err)
	}
	prefs, ok, err := s.Load(PrefsKey)
	if err != nil || !ok {
		t.Fatalf("Load prefs failed: ok=%v err=%v", ok, err)
	}
	if string(tasks) != `[]` || string(prefs) != `{}` {
		t.Errorf("documents bled into each other: tasks=%q prefs=%q", tasks, prefs)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dodue.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Save(TasksKey, []byte(`[]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Load(TasksKey)
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if !ok {
		t.Error("document lost across reopen")
	}
}
