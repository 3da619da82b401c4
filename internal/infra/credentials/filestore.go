// Package credentials keeps the speech service API key in a small YAML file,
// the server-side counterpart of a browser's local storage entry.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// APIKeyName is the fixed key the value is stored under.
const APIKeyName = "dwaniApiKey"

type FileStore struct {
	path     string
	fallback string

	mu  sync.RWMutex
	key string
}

// Open reads the store once. A missing file is not an error. fallback is
// returned by APIKey while no key has been saved.
func Open(path, fallback string) (*FileStore, error) {
	s := &FileStore{path: path, fallback: fallback}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing credentials %s: %w", path, err)
	}
	s.key = values[APIKeyName]

	return s, nil
}

func (s *FileStore) APIKey(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key != "" {
		return s.key, nil
	}
	return s.fallback, nil
}

// SetAPIKey persists key. The file is replaced atomically.
func (s *FileStore) SetAPIKey(_ context.Context, key string) error {
	key = strings.TrimSpace(key)

	data, err := yaml.Marshal(map[string]string{APIKeyName: key})
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	s.key = key
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
