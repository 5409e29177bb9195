package dispatch

import "sync"

// Configuration keys read from the ConfigSource.
const (
	KeyEnabled       = "service.enabled"
	KeyOriginsFilter = "service.origins.filter"
)

// ProviderSource supplies the providers known to the surrounding platform
// at initialization time.
type ProviderSource interface {
	ListProviders() ([]Provider, error)
}

// ConfigSource supplies runtime settings. Implementations must be safe for
// concurrent use; GetBool is called on every Dispatch.
type ConfigSource interface {
	GetBool(key string, def bool) bool
	GetStrings(key string) []string
}

// StaticProviders is a fixed ProviderSource.
type StaticProviders []Provider

func (s StaticProviders) ListProviders() ([]Provider, error) {
	out := make([]Provider, len(s))
	copy(out, s)
	return out, nil
}

// MapSettings is an in-memory ConfigSource, mostly useful for embedding and
// tests. Values may be changed at any time.
type MapSettings struct {
	mu    sync.RWMutex
	bools map[string]bool
	lists map[string][]string
}

// NewMapSettings returns settings with the enablement flag set to enabled
// and the given origins blocked.
func NewMapSettings(enabled bool, origins ...string) *MapSettings {
	s := &MapSettings{bools: map[string]bool{}, lists: map[string][]string{}}
	s.bools[KeyEnabled] = enabled
	if len(origins) > 0 {
		s.lists[KeyOriginsFilter] = append([]string(nil), origins...)
	}
	return s
}

// SetBool stores a boolean setting.
func (s *MapSettings) SetBool(key string, v bool) {
	s.mu.Lock()
	s.bools[key] = v
	s.mu.Unlock()
}

// SetStrings stores a list setting.
func (s *MapSettings) SetStrings(key string, v []string) {
	s.mu.Lock()
	s.lists[key] = append([]string(nil), v...)
	s.mu.Unlock()
}

func (s *MapSettings) GetBool(key string, def bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.bools[key]; ok {
		return v
	}
	return def
}

func (s *MapSettings) GetStrings(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.lists[key]...)
}
