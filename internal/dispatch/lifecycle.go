package dispatch

import (
	"context"
)

// Initialize discovers providers and loads the origin filter (both only when
// the service is enabled), then starts the per-provider delivery lanes. Providers that were
// registered before Initialize are kept. A discovery failure is logged and
// does not abort startup.
func (s *Service) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase.Load() {
	case phaseRunning:
		return ErrAlreadyInitialized
	case phaseShutdown:
		return ErrShutdown
	}

	enabled := s.IsEnabled()
	discovered := 0
	if enabled && s.source != nil {
		discovered = s.discover()
	} else {
		s.log.Info().Bool("enabled", enabled).Bool("source", s.source != nil).Msg("did not search for providers")
	}

	var filter *OriginFilter
	if enabled && s.settings != nil {
		filter = NewOriginFilter(s.settings.GetStrings(KeyOriginsFilter))
		if filter.Len() == 0 {
			s.log.Info().Msg("origin filters are not configured: all statements will be passed through")
		} else {
			s.log.Info().Strs("origins", filter.Origins()).Msg("origin filters loaded")
		}
	}
	s.filter.Store(filter)

	s.lanes.start()
	s.phase.Store(phaseRunning)

	providers := s.registry.Load().Len()
	s.log.Info().
		Bool("enabled", enabled).
		Int("discovered", discovered).
		Int("providers", providers).
		Int("filters", filter.Len()).
		Int("workers", s.cfg.Workers).
		Int("queue_depth", s.cfg.QueueDepth).
		Str("overflow", string(s.cfg.Overflow)).
		Msg("statement dispatch initialized")
	s.publish(Event{Name: EventServiceInit, Fields: map[string]any{
		"enabled":    enabled,
		"discovered": discovered,
		"providers":  providers,
		"filters":    filter.Len(),
	}})
	return nil
}

// discover registers every provider the source knows about and returns how
// many were accepted.
func (s *Service) discover() int {
	found, err := s.source.ListProviders()
	if err != nil {
		s.log.Warn().Err(err).Msg("provider discovery failed")
	}
	n := 0
	for _, p := range found {
		if p == nil {
			continue
		}
		if _, err := s.Register(p); err != nil {
			s.log.Warn().Err(err).Msg("skipping discovered provider")
			continue
		}
		n++
	}
	s.log.Info().Int("found", len(found)).Int("registered", n).Msg("registered providers from discovery")
	return n
}

// Shutdown clears the registry and filter and drains the delivery lanes until
// ctx is done. It is safe to call more than once; later Dispatch calls are
// no-ops. The returned error only reports a drain cut short by ctx.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	prev := s.phase.Swap(phaseShutdown)
	s.mu.Unlock()
	if prev == phaseShutdown {
		return nil
	}

	if reg := s.registry.Swap(nil); reg != nil {
		reg.Clear()
	}
	s.filter.Store(nil)
	registeredProviders.Set(0)

	var err error
	if prev == phaseRunning {
		err = s.lanes.stop(ctx)
	}
	queueDepth.Set(0)
	if err != nil {
		s.log.Warn().Err(err).Int("abandoned", s.lanes.queued()).Msg("statement dispatch shut down before the queue drained")
	} else {
		s.log.Info().Msg("statement dispatch shut down")
	}
	s.publish(Event{Name: EventServiceShutdown})
	return err
}
