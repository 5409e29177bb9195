package dispatch

import (
	"time"

	"lrsd/pkg/types"
)

// State is the externally visible lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateActive        State = "active"
	StateDisabled      State = "disabled"
	StateShutdown      State = "shutdown"
)

// State reports the lifecycle state. Active and disabled follow the
// enablement flag at call time.
func (s *Service) State() State {
	switch s.phase.Load() {
	case phaseNew:
		return StateUninitialized
	case phaseShutdown:
		return StateShutdown
	}
	if !s.IsEnabled() {
		return StateDisabled
	}
	return StateActive
}

// Providers returns the registered provider ids in sorted order.
func (s *Service) Providers() []string {
	reg := s.registry.Load()
	if reg == nil {
		return nil
	}
	return reg.IDs()
}

// Origins returns the blocked origins loaded by Initialize.
func (s *Service) Origins() []string {
	return s.filter.Load().Origins()
}

// Stats returns a snapshot of the cumulative counters.
func (s *Service) Stats() types.DispatchStats {
	return types.DispatchStats{
		Dispatched: s.stats.dispatched.Load(),
		Filtered:   s.stats.filtered.Load(),
		Skipped:    s.stats.skipped.Load(),
		Delivered:  s.stats.delivered.Load(),
		Failed:     s.stats.failed.Load(),
		Dropped:    s.stats.dropped.Load(),
	}
}

// Status builds a detailed status response for /status.
func (s *Service) Status() types.StatusResponse {
	providers := s.Providers()
	if providers == nil {
		providers = []string{}
	}
	origins := s.Origins()
	if origins == nil {
		origins = []string{}
	}
	now := time.Now()
	return types.StatusResponse{
		State:          string(s.State()),
		Enabled:        s.IsEnabled(),
		Providers:      providers,
		Origins:        origins,
		Workers:        s.cfg.Workers,
		QueueLen:       s.lanes.queued(),
		QueueDepth:     s.cfg.QueueDepth,
		Overflow:       string(s.cfg.Overflow),
		Stats:          s.Stats(),
		UptimeSeconds:  int64(now.Sub(s.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

// Ready reports whether Dispatch currently delivers statements.
func (s *Service) Ready() bool {
	return s.State() == StateActive
}
