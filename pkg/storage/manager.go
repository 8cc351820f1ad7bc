package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	errs "gharchiver/pkg/errors"
)

// Manager writes archive files under a root directory. Every write is
// atomic: a temp file in the destination directory renamed into place.
type Manager struct {
	root string
}

// NewManager creates root if needed and returns a Manager for it
func NewManager(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, &errs.StorageError{Op: "mkdir", Path: root, Err: err}
	}
	return &Manager{root: root}, nil
}

// Root returns the directory all relative paths resolve against
func (m *Manager) Root() string {
	return m.root
}

// Path joins rel onto the root
func (m *Manager) Path(rel ...string) string {
	return filepath.Join(append([]string{m.root}, rel...)...)
}

// WriteJSON overwrites rel with v as two-space indented JSON. Raw records
// are re-indented but otherwise kept byte for byte.
func (m *Manager) WriteJSON(rel string, v interface{}) (int64, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 0, &errs.StorageError{Op: "encode", Path: m.Path(rel), Err: err}
	}
	data = append(data, '\n')
	return WriteFileAtomic(m.Path(rel), bytes.NewReader(data))
}

// WriteText overwrites rel with text
func (m *Manager) WriteText(rel, text string) (int64, error) {
	return WriteFileAtomic(m.Path(rel), bytes.NewReader([]byte(text)))
}

// WriteStream overwrites rel with everything read from r
func (m *Manager) WriteStream(rel string, r io.Reader) (int64, error) {
	return WriteFileAtomic(m.Path(rel), r)
}

// Place stores data in the relative directory dir, de-duplicated by
// content. See the package function Place.
func (m *Manager) Place(data []byte, dir, baseName, ext string) (PlaceResult, error) {
	return Place(data, m.Path(dir), baseName, ext)
}

// WriteFileAtomic copies r into path via a temp file and rename, creating
// parent directories as needed. Nothing is left behind on failure.
func WriteFileAtomic(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, &errs.StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".gharchiver-*.tmp")
	if err != nil {
		return 0, &errs.StorageError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	closeErr := tmp.Close()

	if err != nil {
		os.Remove(tmpName)
		return n, &errs.StorageError{Op: "write", Path: path, Err: err}
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return n, &errs.StorageError{Op: "close", Path: path, Err: closeErr}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return n, &errs.StorageError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return n, &errs.StorageError{Op: "rename", Path: path, Err: fmt.Errorf("%s: %w", tmpName, err)}
	}

	return n, nil
}
