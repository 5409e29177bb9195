package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lrsd/pkg/types"
)

// OverflowPolicy decides which delivery is sacrificed when the queue is full.
type OverflowPolicy string

const (
	// OverflowRejectNew drops the delivery being submitted.
	OverflowRejectNew OverflowPolicy = "reject-new"
	// OverflowDropOldest evicts the oldest queued delivery to make room.
	OverflowDropOldest OverflowPolicy = "drop-oldest"
)

// ParseOverflowPolicy maps a config string onto a policy. Empty selects
// OverflowRejectNew.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch OverflowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverflowRejectNew:
		return OverflowRejectNew, nil
	case OverflowDropOldest:
		return OverflowDropOldest, nil
	default:
		return "", fmt.Errorf("unknown overflow policy %q (want %s or %s)", s, OverflowRejectNew, OverflowDropOldest)
	}
}

// Reasons a delivery never reaches its provider.
const (
	dropQueueFull = "queue_full"
	dropEvicted   = "evicted"
	dropShutdown  = "shutdown"
)

// delivery is one (statement, provider) unit of work.
type delivery struct {
	provider Provider
	stmt     types.Statement
	queuedAt time.Time
}

// pool runs the deliveries of one provider on a fixed set of workers fed by
// a bounded queue. submit never blocks: when the queue is full the overflow policy picks a
// victim and the drop callback is told about it.
type pool struct {
	workers int
	policy  OverflowPolicy
	queue   chan delivery
	run     func(delivery)
	drop    func(delivery, string)

	mu      sync.RWMutex
	started bool
	stopped bool
	abandon atomic.Bool
	wg      sync.WaitGroup
}

func newPool(workers, depth int, policy OverflowPolicy, run func(delivery), drop func(delivery, string)) *pool {
	return &pool{
		workers: workers,
		policy:  policy,
		queue:   make(chan delivery, depth),
		run:     run,
		drop:    drop,
	}
}

// start launches the workers. It returns immediately.
func (p *pool) start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	for range p.workers {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *pool) worker() {
	defer p.wg.Done()
	for d := range p.queue {
		if p.abandon.Load() {
			p.drop(d, dropShutdown)
			continue
		}
		p.run(d)
	}
}

// submit enqueues d without blocking and reports whether it was accepted.
func (p *pool) submit(d delivery) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.drop(d, dropShutdown)
		return false
	}
	select {
	case p.queue <- d:
		return true
	default:
	}
	if p.policy == OverflowDropOldest {
		select {
		case old := <-p.queue:
			p.drop(old, dropEvicted)
		default:
		}
		select {
		case p.queue <- d:
			return true
		default:
		}
	}
	p.drop(d, dropQueueFull)
	return false
}

// stop refuses new work and lets the workers drain the queue. If ctx ends
// first, whatever is still queued is dropped; provider calls already running
// are left to finish on their own.
func (p *pool) stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.abandon.Store(true)
		return fmt.Errorf("delivery pool drain: %w", ctx.Err())
	}
}

func (p *pool) len() int { return len(p.queue) }
