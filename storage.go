package biblio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// MemoryStorage is an in-process Storage, used as the test fake and for
// short-lived sessions that should not outlive the process.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.values[key]
	return val, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStorage persists keys as a flat JSON object in a single file. Every
// operation re-reads the file, so concurrent processes sharing the path
// observe each other's writes on their next call.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a FileStorage at path. The file and its parent
// directory are created lazily on the first Set.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultSessionPath returns the conventional per-user session file
// location, e.g. ~/.config/biblio/session.json on Linux.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "could not resolve user config directory")
	}
	return filepath.Join(dir, "biblio", "session.json"), nil
}

func (f *FileStorage) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	val, ok := values[key]
	return val, ok, nil
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

func (f *FileStorage) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not read session file")
	}

	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt session file is equivalent to an empty one; the worst
		// outcome is that the user logs in again.
		return map[string]string{}, nil
	}
	return values, nil
}

func (f *FileStorage) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create session directory")
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not encode session file")
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not write session file")
	}
	return nil
}
