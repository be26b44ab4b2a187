package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// fileSettings is the on-disk layout of a settings file.
type fileSettings struct {
	SLAACSecretKey string `toml:"slaac_secret_key,omitempty"`
}

// FileStorage is a Settings implementation backed by a TOML file.
// Writes go to a temporary file that is renamed over the original, so a
// crash never leaves a half-written key behind.
//
// All methods are safe for concurrent use.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage returns a FileStorage for path. The file is created on the
// first save; its directory must exist.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the settings file path.
func (f *FileStorage) Path() string {
	return f.path
}

// LoadSLAACSecretKey reads the secret key from the settings file.
func (f *FileStorage) LoadSLAACSecretKey() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		return nil, err
	}
	if s.SLAACSecretKey == "" {
		return nil, ErrNotFound
	}

	key, err := hex.DecodeString(s.SLAACSecretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: secret key: %v", ErrCorrupt, err)
	}
	return key, nil
}

// SaveSLAACSecretKey writes the secret key to the settings file.
func (f *FileStorage) SaveSLAACSecretKey(key []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrCorrupt) {
		return err
	}
	s.SLAACSecretKey = hex.EncodeToString(key)

	return f.write(s)
}

func (f *FileStorage) read() (fileSettings, error) {
	var s fileSettings

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, fmt.Errorf("storage: read %s: %w", f.path, err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return fileSettings{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}

func (f *FileStorage) write(s fileSettings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("storage: encode settings: %w", err)
	}

	tmp, err := createTemp(filepath.Dir(f.path), ".settings-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: chmod settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close settings: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("storage: replace %s: %w", f.path, err)
	}
	return nil
}

// tempFile is the part of *os.File used to stage a write.
type tempFile interface {
	io.Writer
	Chmod(mode os.FileMode) error
	Sync() error
	Close() error
	Name() string
}

var createTemp = func(dir, pattern string) (tempFile, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Verify FileStorage implements Settings.
var _ Settings = (*FileStorage)(nil)
