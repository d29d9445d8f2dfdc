package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aatumaykin/nexcrew/internal/fsutil"
	"github.com/aatumaykin/nexcrew/internal/lock"
	"github.com/aatumaykin/nexcrew/internal/logger"
)

// Store keeps the settings document as JSON on disk. Reads and writes go
// through one per-path queue so concurrent Apply calls never lose updates.
type Store struct {
	path   string
	queue  *lock.Queue
	logger *logger.Logger
}

// NewStore creates a store for the file at path.
func NewStore(path string, queue *lock.Queue, log *logger.Logger) *Store {
	if queue == nil {
		queue = lock.NewQueue()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		path:   path,
		queue:  queue,
		logger: log.Named("settings").With(logger.Field{Key: "path", Value: path}),
	}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored document. A missing file is a first run and a
// malformed one is logged; both yield an empty document.
func (s *Store) Load() map[string]any {
	var doc map[string]any
	_ = s.queue.Do(s.path, func() error {
		doc = s.read()
		return nil
	})
	return doc
}

// Apply merges patch into the stored document, saves it and returns the new
// document.
func (s *Store) Apply(patch map[string]any) (map[string]any, error) {
	var next map[string]any
	err := s.queue.Do(s.path, func() error {
		next = Merge(s.read(), patch)

		data, err := json.MarshalIndent(next, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		if err := fsutil.WriteFileAtomic(s.path, append(data, '\n'), 0600); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("settings update failed", err)
		return nil, err
	}

	s.logger.Debug("settings updated", logger.Field{Key: "keys", Value: len(patch)})
	return next, nil
}

func (s *Store) read() map[string]any {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read settings, using defaults", logger.Field{Key: "error", Value: err})
		}
		return map[string]any{}
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("malformed settings file, using defaults", logger.Field{Key: "error", Value: err})
		return map[string]any{}
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc
}
