package wizard

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const appliedMarker = "true"

// FileFlag stores the "already applied" marker in a local file.
type FileFlag struct {
	path string
}

func NewFileFlag(path string) *FileFlag {
	return &FileFlag{path: path}
}

// DefaultFlagPath is <user config dir>/thanima-connect/applied.
func DefaultFlagPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "thanima-connect", "applied"), nil
}

func (f *FileFlag) Path() string { return f.path }

// Applied reports whether the marker file exists and holds the marker.
func (f *FileFlag) Applied() bool {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return false
	}
	return string(bytes.TrimSpace(b)) == appliedMarker
}

func (f *FileFlag) MarkApplied() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create flag dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(appliedMarker+"\n"), 0o644); err != nil {
		return fmt.Errorf("write flag: %w", err)
	}
	return nil
}

// Reset removes the marker. A missing file is not an error.
func (f *FileFlag) Reset() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
