// Package logging opens the debug log file. The TUI owns the
// terminal, so log records go to a file instead of stderr.
package logging

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Open returns a logger writing to path, plus a close func. An empty
// path yields a discarding logger and a no-op close.
func Open(path string) (*log.Logger, func() error, error) {
	if path == "" {
		return log.New(io.Discard), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(f)
	logger.SetLevel(log.DebugLevel)
	logger.SetReportTimestamp(true)
	return logger, f.Close, nil
}
