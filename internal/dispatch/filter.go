package dispatch

import (
	"sort"
	"strings"
)

// OriginFilter is the set of origins whose statements are dropped. It is
// immutable once built. A nil or empty filter blocks nothing.
type OriginFilter struct {
	origins map[string]struct{}
}

// NewOriginFilter builds a filter from configured origins. Entries are
// trimmed; blank entries are ignored.
func NewOriginFilter(origins []string) *OriginFilter {
	f := &OriginFilter{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if o = normalizeOrigin(o); o != "" {
			f.origins[o] = struct{}{}
		}
	}
	return f
}

// IsBlocked reports whether a statement from origin must be dropped. The
// origin is trimmed first and compared exactly (case-sensitive). A blank
// origin is never blocked.
func (f *OriginFilter) IsBlocked(origin string) bool {
	if f == nil || len(f.origins) == 0 {
		return false
	}
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	_, blocked := f.origins[origin]
	return blocked
}

// Len returns the number of blocked origins.
func (f *OriginFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.origins)
}

// Origins returns the blocked origins in sorted order.
func (f *OriginFilter) Origins() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.origins))
	for o := range f.origins {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

func normalizeOrigin(origin string) string { return strings.TrimSpace(origin) }
