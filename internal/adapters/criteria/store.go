// Package criteria persists the user's catch criteria as a JSON document
// at a per-user configuration location, seeding first runs from a bundled
// default and falling back to a hardcoded one.
package criteria

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pattarpon/pokescan/internal/domain/rules"
	"github.com/pattarpon/pokescan/pkg/logger"
	"github.com/pattarpon/pokescan/pkg/metrics"
)

const (
	configDirName    = "pokescan"
	criteriaFileName = "catch_criteria.json"
	filePermission   = 0o600
	dirPermission    = 0o755
)

//go:embed default_criteria.json
var bundledCriteria []byte

// Store holds the criteria state and its persistence path. Setters mutate
// in-memory state and persist synchronously before returning; concurrent
// readers observe either the old or the new value, never a partial write.
type Store struct {
	mu       sync.RWMutex
	path     string
	criteria rules.Criteria
	logger   logger.Logger
}

// New creates a store. Without WithPath the document lives under the
// user config directory, e.g. ~/.config/pokescan/catch_criteria.json.
func New(opts ...Option) *Store {
	s := &Store{
		criteria: rules.DefaultCriteria(),
		logger:   logger.Named("criteria"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.path == "" {
		s.path = defaultPath()
	}
	return s
}

func defaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		// No home directory; keep the file beside the process.
		return criteriaFileName
	}
	return filepath.Join(base, configDirName, criteriaFileName)
}

// Path returns the persistence location in use.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted document, seeding it first if absent. Any
// failure falls back to the bundled then hardcoded defaults and logs;
// the store always ends up usable.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		s.seedLocked(ctx)
	}

	loaded, err := readCriteria(s.path)
	if err != nil {
		s.logger.Warn(ctx, "criteria unreadable, using defaults",
			logger.String("path", s.path),
			logger.Error(err),
		)
		s.criteria = fallbackCriteria()
		return
	}
	s.criteria = loaded
	s.logger.Info(ctx, "criteria loaded",
		logger.String("path", s.path),
		logger.String("activeProfile", loaded.ActiveProfile),
		logger.Int("profiles", len(loaded.Profiles)),
	)
}

// Reload re-reads the persisted document, discarding any in-memory edits
// that were never saved. A read failure keeps the current state.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := readCriteria(s.path)
	if err != nil {
		s.logger.Warn(ctx, "criteria reload failed, keeping current state",
			logger.String("path", s.path),
			logger.Error(err),
		)
		return
	}
	s.criteria = loaded
}

// seedLocked writes a first-run document: the bundled default when it
// parses, else the hardcoded one. Callers hold the write lock.
func (s *Store) seedLocked(ctx context.Context) {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPermission); err != nil {
		s.logger.Warn(ctx, "cannot create criteria directory",
			logger.String("path", s.path),
			logger.Error(err),
		)
		return
	}

	seed := bundledCriteria
	var parsed rules.Criteria
	if err := json.Unmarshal(seed, &parsed); err != nil {
		s.logger.Warn(ctx, "bundled criteria malformed, seeding hardcoded default", logger.Error(err))
		seed, _ = json.MarshalIndent(rules.DefaultCriteria(), "", "  ")
	}

	if err := os.WriteFile(s.path, seed, filePermission); err != nil {
		s.logger.Warn(ctx, "cannot seed criteria file",
			logger.String("path", s.path),
			logger.Error(err),
		)
	}
}

// fallbackCriteria prefers the bundled document over the hardcoded one.
func fallbackCriteria() rules.Criteria {
	var c rules.Criteria
	if err := json.Unmarshal(bundledCriteria, &c); err != nil {
		return rules.DefaultCriteria()
	}
	return c
}

func readCriteria(path string) (rules.Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rules.Criteria{}, fmt.Errorf("%w: %w", ErrLoadCriteria, err)
	}
	var c rules.Criteria
	if err := json.Unmarshal(data, &c); err != nil {
		return rules.Criteria{}, fmt.Errorf("%w: %w", ErrLoadCriteria, err)
	}
	return c, nil
}

// Snapshot returns a copy safe to read without further synchronization.
func (s *Store) Snapshot() rules.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.criteria
	profiles := make(map[string]rules.Profile, len(s.criteria.Profiles))
	for name, p := range s.criteria.Profiles {
		profiles[name] = p
	}
	c.Profiles = profiles
	return c
}

// ProfileKeys returns the profile names in sorted order.
func (s *Store) ProfileKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.criteria.Profiles))
	for name := range s.criteria.Profiles {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// SetActiveProfile switches the active profile and persists immediately.
// The key must name an existing profile.
func (s *Store) SetActiveProfile(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.criteria.Profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	s.criteria.ActiveProfile = name
	return s.saveLocked(ctx)
}

// SetSoundEnabled toggles the alert sound flag and persists immediately.
func (s *Store) SetSoundEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.criteria.AlertSoundEnabled = enabled
	return s.saveLocked(ctx)
}

// Save persists the current in-memory state.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	data, err := json.MarshalIndent(s.criteria, "", "  ")
	if err != nil {
		metrics.RecordCriteriaSaveError()
		return fmt.Errorf("%w: %w", ErrSaveCriteria, err)
	}
	if err := os.WriteFile(s.path, data, filePermission); err != nil {
		metrics.RecordCriteriaSaveError()
		s.logger.Error(ctx, "criteria save failed",
			logger.String("path", s.path),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrSaveCriteria, err)
	}
	metrics.RecordCriteriaSave()
	return nil
}
