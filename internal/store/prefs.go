package store

import (
	"encoding/json"
	"fmt"

	"github.com/reeshuffled/dodue/internal/storage"
)

// Prefs is the flat map of display toggles. All default to true.
type Prefs struct {
	ShowOverdueTasks       bool `json:"showOverdueTasks"`
	ShowCurrentTasks       bool `json:"showCurrentTasks"`
	ShowLaterTasks         bool `json:"showLaterTasks"`
	ConfirmKeyboardDeletes bool `json:"confirmKeyboardDeletes"`
}

func defaultPrefs() Prefs {
	return Prefs{
		ShowOverdueTasks:       true,
		ShowCurrentTasks:       true,
		ShowLaterTasks:         true,
		ConfirmKeyboardDeletes: true,
	}
}

// Pref names one toggle.
type Pref int

const (
	PrefShowOverdue Pref = iota
	PrefShowCurrent
	PrefShowLater
	PrefConfirmDeletes
)

// Prefs returns the current preference values.
func (s *Store) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// TogglePref flips one toggle and persists the whole map. The flipped
// state is returned even when the write fails; in-memory wins until a
// save goes through.
func (s *Store) TogglePref(p Pref) (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch p {
	case PrefShowOverdue:
		s.prefs.ShowOverdueTasks = !s.prefs.ShowOverdueTasks
	case PrefShowCurrent:
		s.prefs.ShowCurrentTasks = !s.prefs.ShowCurrentTasks
	case PrefShowLater:
		s.prefs.ShowLaterTasks = !s.prefs.ShowLaterTasks
	case PrefConfirmDeletes:
		s.prefs.ConfirmKeyboardDeletes = !s.prefs.ConfirmKeyboardDeletes
	default:
		return s.prefs, fmt.Errorf("unknown preference %d", p)
	}
	return s.prefs, s.savePrefs()
}

// loadPrefs reads the stored map, or seeds and persists the defaults
// when none exists yet.
func (s *Store) loadPrefs() error {
	s.prefs = defaultPrefs()

	data, ok, err := s.provider.Load(storage.PrefsKey)
	if err != nil {
		return err
	}
	if !ok {
		return s.savePrefs()
	}
	if err := json.Unmarshal(data, &s.prefs); err != nil {
		return fmt.Errorf("decode preferences: %w", err)
	}
	return nil
}

func (s *Store) savePrefs() error {
	data, err := json.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.provider.Save(storage.PrefsKey, data); err != nil {
		s.logger.Error("preference save failed", "err", err)
		return err
	}
	return nil
}
