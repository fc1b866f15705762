// Package storage persists collections as JSON arrays in flat files.
//
// Every write goes to a temp file in the target's directory, is fsynced and
// then renamed over the target, so readers only ever see a complete array.
// Reads never fail: a file that cannot be read or parsed is rewritten as []
// and reads as empty.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flapboard/core/internal/domain/entities"
	"github.com/flapboard/core/internal/infrastructure/logger"
)

var emptyArray = []byte("[]")

// Options configures a Store
type Options struct {
	// Lock serializes every Load, Save and Update. Stores opened with the
	// same Lock exclude each other; nil gives the store its own lock.
	Lock    sync.Locker
	Logger  *logger.Logger
	Metrics *Metrics
}

// Store is a JSON array of T kept in a single file
type Store[T any] struct {
	path    string
	name    string
	mu      sync.Locker
	logger  *logger.Logger
	metrics *Metrics

	// beforeRename runs after the temp file is synced and closed. Tests use
	// it to stop a save between the temp write and the rename.
	beforeRename func(tmpPath string) error
}

// Open prepares the store at path, creating the file if needed
func Open[T any](path string, opts Options) (*Store[T], error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}

	s := &Store[T]{
		path:    path,
		name:    filepath.Base(path),
		mu:      opts.Lock,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if s.mu == nil {
		s.mu = &sync.Mutex{}
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	s.logger = s.logger.WithComponent("store").WithFields("file", s.name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create store directory: %v", entities.ErrStorage, err)
	}

	if err := s.ensure(); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the file backing the store
func (s *Store[T]) Path() string {
	return s.path
}

// Name returns the base name of the backing file
func (s *Store[T]) Name() string {
	return s.name
}

func (s *Store[T]) ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(s.path, emptyArray, 0o644); err != nil {
			return fmt.Errorf("%w: failed to create %s: %v", entities.ErrStorage, s.name, err)
		}
		s.logger.Infow("Created store file", "path", s.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %v", entities.ErrStorage, s.name, err)
	}

	if json.Valid(data) {
		return nil
	}

	s.logger.LogStoreReset(s.path, "ensure", errors.New("invalid JSON"))
	s.metrics.observeReset(s.name, "ensure")
	if err := os.WriteFile(s.path, emptyArray, 0o644); err != nil {
		return fmt.Errorf("%w: failed to reset %s: %v", entities.ErrStorage, s.name, err)
	}
	return nil
}

// Load returns every record in the file. It never fails: on any read or
// parse error the file is reset to [] and an empty slice is returned.
func (s *Store[T]) Load() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Save replaces the whole file with records
func (s *Store[T]) Save(records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(records)
}

// Update loads the records, applies fn and saves the result, all under one
// hold of the lock. If fn returns an error nothing is written.
func (s *Store[T]) Update(fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := fn(s.load())
	if err != nil {
		return err
	}
	return s.save(records)
}

func (s *Store[T]) load() []T {
	records, err := s.read()
	if err == nil {
		return records
	}

	s.logger.LogStoreReset(s.path, "load", err)
	s.metrics.observeReset(s.name, "load")
	if werr := os.WriteFile(s.path, emptyArray, 0o644); werr != nil {
		s.logger.WithError(werr).Errorw("Failed to reset store file", "path", s.path)
	}
	return []T{}
}

func (s *Store[T]) read() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		// only a bare null decodes to a nil slice
		return nil, errors.New("store file holds null, expected an array")
	}
	return records, nil
}

func (s *Store[T]) save(records []T) (err error) {
	defer func() {
		s.metrics.observeWrite(s.name, err)
		if err != nil {
			s.logger.WithError(err).Errorw("Failed to write store file", "path", s.path)
		}
	}()

	if records == nil {
		records = []T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", entities.ErrStorage, s.name, err)
	}

	dir := filepath.Dir(s.path)
	prefix := strings.TrimSuffix(s.name, filepath.Ext(s.name)) + "_"
	tmp, err := os.CreateTemp(dir, prefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", entities.ErrStorage, err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				s.logger.WithError(rmErr).Warnw("Failed to remove temp file", "path", tmpPath)
			}
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %v", entities.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: failed to sync temp file: %v", entities.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close temp file: %v", entities.ErrStorage, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: failed to set temp file mode: %v", entities.ErrStorage, err)
	}

	if s.beforeRename != nil {
		if err := s.beforeRename(tmpPath); err != nil {
			return fmt.Errorf("%w: %v", entities.ErrStorage, err)
		}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %v", entities.ErrStorage, s.name, err)
	}
	committed = true

	syncDir(dir)
	return nil
}

// syncDir makes the rename itself durable where the platform allows it
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
