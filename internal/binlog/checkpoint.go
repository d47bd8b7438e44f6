package binlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Checkpoint persists the executed GTID set so the watcher can resume
type Checkpoint struct {
	path string
}

// NewCheckpoint returns a checkpoint stored at path
func NewCheckpoint(path string) *Checkpoint {
	return &Checkpoint{path: path}
}

// Path returns the checkpoint file location
func (c *Checkpoint) Path() string {
	return c.path
}

// Load returns the saved GTID set. ok is false when no checkpoint exists yet.
func (c *Checkpoint) Load() (gtid string, ok bool, err error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read checkpoint %s: %w", c.path, err)
	}

	gtid = strings.TrimSpace(string(data))
	if gtid == "" {
		return "", false, nil
	}
	return gtid, true, nil
}

// Save replaces the checkpoint atomically via a temp file and rename
func (c *Checkpoint) Save(gtid string) error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".gtid-*")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint temp file: %w", err)
	}

	if _, err := tmp.WriteString(gtid + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}
