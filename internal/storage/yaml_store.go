package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const stateFileName = "state.yaml"

// YAMLStore keeps values in a single YAML mapping on disk. Every mutation
// rewrites the file.
type YAMLStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// DefaultPath returns the state file location under the user config dir.
func DefaultPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, stateFileName), nil
}

// ErrCorruptState reports a state file that could not be parsed. OpenYAMLStore
// still returns a usable empty store alongside it.
var ErrCorruptState = errors.New("corrupt state file")

// OpenYAMLStore loads path. A missing file yields an empty store. A file that
// does not parse yields an empty store and an error wrapping ErrCorruptState;
// the next write replaces it.
func OpenYAMLStore(path string) (*YAMLStore, error) {
	store := &YAMLStore{path: path, values: map[string]string{}}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := yaml.Unmarshal(rawData, &store.values); err != nil {
		store.values = map[string]string{}
		return store, fmt.Errorf("%w: parse state yaml: %v", ErrCorruptState, err)
	}
	if store.values == nil {
		store.values = map[string]string{}
	}
	return store, nil
}

// Path returns the backing file.
func (store *YAMLStore) Path() string {
	return store.path
}

func (store *YAMLStore) Get(key string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	value, ok := store.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (store *YAMLStore) Set(key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.values[key] = value
	return store.saveLocked()
}

func (store *YAMLStore) Remove(key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.values[key]; !ok {
		return nil
	}
	delete(store.values, key)
	return store.saveLocked()
}

func (store *YAMLStore) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(store.values)
	if err != nil {
		return fmt.Errorf("marshal state yaml: %w", err)
	}

	// Write beside the target and rename so a crash never leaves a torn file.
	temp, err := os.CreateTemp(filepath.Dir(store.path), stateFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(serialized); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("chmod state file: %w", err)
	}
	if err := os.Rename(tempPath, store.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
