package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Keys exposed by Store. The dispatch service reads the first two.
const (
	KeyServiceEnabled = "service.enabled"
	KeyOriginsFilter  = "service.origins.filter"
	KeyCORSEnabled    = "http.cors.enabled"
	KeyCORSOrigins    = "http.cors.origins"
)

const watchDebounce = 100 * time.Millisecond

// Store is a live, concurrency-safe view of a configuration file. It
// satisfies the dispatch configuration source: lookups are served from a
// flattened key space that Set and Reload replace under a lock.
type Store struct {
	path string
	log  zerolog.Logger

	mu    sync.RWMutex
	file  File
	bools map[string]bool
	lists map[string][]string
	hooks []func(File)
}

// NewStore wraps an already loaded document. path may be empty, in which
// case Reload and Watch are unavailable.
func NewStore(path string, f File, log zerolog.Logger) *Store {
	s := &Store{path: path, log: log.With().Str("component", "config").Logger()}
	s.replace(f)
	return s
}

// OpenStore loads, normalizes and validates path and wraps the result.
func OpenStore(path string, log zerolog.Logger) (*Store, error) {
	f, err := loadValid(path)
	if err != nil {
		return nil, err
	}
	return NewStore(path, f, log), nil
}

func loadValid(path string) (File, error) {
	f, err := Load(path)
	if err != nil {
		return File{}, err
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		return File{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return f, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// File returns a copy of the current document.
func (s *Store) File() File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.file
	f.Providers = append([]ProviderConfig(nil), s.file.Providers...)
	return f
}

// GetBool returns the boolean at key, or def when it is unset.
func (s *Store) GetBool(key string, def bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.bools[key]; ok {
		return v
	}
	return def
}

// GetStrings returns a copy of the list at key.
func (s *Store) GetStrings(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.lists[key]...)
}

// Set overrides one key until the next Reload. Booleans accept bool or a
// string parsed by strconv.ParseBool; lists accept []string or a
// comma-separated string.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bools[key]; ok {
		b, err := toBool(value)
		if err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		s.bools[key] = b
		return nil
	}
	if _, ok := s.lists[key]; ok {
		l, err := toList(value)
		if err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		s.lists[key] = l
		return nil
	}
	return fmt.Errorf("set %s: unknown key", key)
}

// OnReload registers fn to run with the new document after every
// successful Reload.
func (s *Store) OnReload(fn func(File)) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Reload re-reads the backing file. On error the current values are kept.
func (s *Store) Reload() error {
	if s.path == "" {
		return fmt.Errorf("reload: store has no backing file")
	}
	f, err := loadValid(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	prevEnabled := s.bools[KeyServiceEnabled]
	s.replace(f)
	hooks := make([]func(File), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	s.log.Info().Str("path", s.path).Bool("enabled", f.Service.Enabled).Bool("enabled_changed", prevEnabled != f.Service.Enabled).Msg("configuration reloaded")
	for _, fn := range hooks {
		fn(f)
	}
	return nil
}

// Watch reloads the store whenever its file is written, created or renamed
// into place, until ctx is done. Bursts of events are coalesced. It blocks
// and returns nil when ctx ends.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("watch: store has no backing file")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Editors usually replace the file, so watch the directory.
	dir, name := filepath.Split(filepath.Clean(s.path))
	if dir == "" {
		dir = "."
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.log.Info().Str("path", s.path).Msg("watching configuration")

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("configuration watcher error")
		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.log.Error().Err(err).Str("path", s.path).Msg("configuration reload failed; keeping previous values")
			}
		}
	}
}

// replace installs f. Callers hold s.mu for writing, or own s exclusively.
func (s *Store) replace(f File) {
	s.file = f
	s.bools = map[string]bool{
		KeyServiceEnabled: f.Service.Enabled,
		KeyCORSEnabled:    f.HTTP.CORS.Enabled,
	}
	s.lists = map[string][]string{
		KeyOriginsFilter: append([]string(nil), f.Service.Origins.Filter...),
		KeyCORSOrigins:   append([]string(nil), f.HTTP.CORS.Origins...),
	}
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(x))
	default:
		return false, fmt.Errorf("want bool, got %T", v)
	}
}

func toList(v any) ([]string, error) {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...), nil
	case string:
		return SplitCSV(x), nil
	default:
		return nil, fmt.Errorf("want []string or string, got %T", v)
	}
}
