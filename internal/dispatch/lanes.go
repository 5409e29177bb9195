package dispatch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// lanes holds one delivery pool per provider id. A provider that stalls
// only backs up, and eventually overflows, its own queue.
type lanes struct {
	build func() *pool

	mu      sync.Mutex
	byID    map[string]*pool
	started bool
	stopped bool
}

func newLanes(build func() *pool) *lanes {
	return &lanes{build: build, byID: make(map[string]*pool)}
}

// ensure returns the lane for id, creating it on first use. A lane created
// after start runs at once. It returns nil once the lanes are stopped.
func (l *lanes) ensure(id string) *pool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return nil
	}
	p, ok := l.byID[id]
	if !ok {
		p = l.build()
		l.byID[id] = p
		if l.started {
			p.start()
		}
	}
	return p
}

func (l *lanes) get(id string) *pool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byID[id]
}

func (l *lanes) start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped {
		return
	}
	l.started = true
	for _, p := range l.byID {
		p.start()
	}
}

// stop drains every lane in parallel until ctx is done.
func (l *lanes) stop(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	ps := make([]*pool, 0, len(l.byID))
	for _, p := range l.byID {
		ps = append(ps, p)
	}
	l.mu.Unlock()

	var g errgroup.Group
	for _, p := range ps {
		g.Go(func() error { return p.stop(ctx) })
	}
	return g.Wait()
}

// queued is the number of deliveries waiting across all lanes.
func (l *lanes) queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, p := range l.byID {
		n += p.len()
	}
	return n
}
