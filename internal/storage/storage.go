// Package storage persists whole JSON documents under fixed keys.
// Every save rewrites the entire document for its key; there is no
// versioning and no partial update.
package storage

import "fmt"

// Well-known document keys.
const (
	TasksKey = "tasks"
	PrefsKey = "preferences"
)

// Error reports a failed read or write of the persistence medium.
// Callers treat the in-memory state as authoritative until a save
// succeeds again.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Provider reads and writes whole documents keyed by name.
type Provider interface {
	// Load returns the document under key. A missing document is
	// reported through ok, not an error.
	Load(key string) (data []byte, ok bool, err error)
	// Save replaces the document under key.
	Save(key string, data []byte) error
	Close() error
}
