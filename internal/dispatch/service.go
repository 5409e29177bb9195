package dispatch

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"lrsd/pkg/types"
)

const tracerName = "lrsd/internal/dispatch"

// Lifecycle phases. Enabled/disabled is not a phase: it is read from the
// ConfigSource on every call.
const (
	phaseNew int32 = iota
	phaseRunning
	phaseShutdown
)

// Service is the statement dispatcher: the enable-gated Dispatch entry point,
// the provider registry it fans out to, and the lifecycle that builds and
// tears both down.
type Service struct {
	cfg      Config
	log      zerolog.Logger
	settings ConfigSource
	source   ProviderSource
	pub      EventPublisher
	tracer   trace.Tracer

	mu       sync.Mutex // serializes Initialize and Shutdown
	phase    atomic.Int32
	registry atomic.Pointer[Registry]
	filter   atomic.Pointer[OriginFilter]
	lanes    *lanes

	dropLog   *rate.Limiter
	stats     counters
	startTime time.Time
}

type counters struct {
	dispatched atomic.Uint64
	filtered   atomic.Uint64
	skipped    atomic.Uint64
	delivered  atomic.Uint64
	failed     atomic.Uint64
	dropped    atomic.Uint64
}

// New constructs a Service. Providers may be registered right away; Dispatch
// stays a no-op until Initialize has run.
func New(cfg Config) *Service {
	cfg = cfg.withDefaults()
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	s := &Service{
		cfg:       cfg,
		log:       cfg.Logger.With().Str("component", "dispatch").Logger(),
		settings:  cfg.Settings,
		source:    cfg.Providers,
		pub:       cfg.Publisher,
		tracer:    tp.Tracer(tracerName),
		dropLog:   rate.NewLimiter(rate.Every(time.Second), 5),
		startTime: time.Now(),
	}
	s.registry.Store(NewRegistry())
	s.lanes = newLanes(func() *pool {
		return newPool(cfg.Workers, cfg.QueueDepth, cfg.Overflow, s.deliver, s.dropped)
	})
	return s
}

// IsEnabled reads the enablement flag from the ConfigSource. It is never
// cached, so a configuration change takes effect on the next Dispatch.
func (s *Service) IsEnabled() bool {
	if s.settings == nil {
		return false
	}
	return s.settings.GetBool(KeyEnabled, false)
}

// Register adds or replaces a provider and reports whether one with the same
// id was already registered. It is accepted whether or not the service is
// enabled. A nil provider (typed nil pointers included) or an empty id fails
// with ErrInvalidArgument. The provider gets its own delivery lane.
func (s *Service) Register(p Provider) (bool, error) {
	id, err := providerID(p)
	if err != nil {
		return false, err
	}
	reg := s.registry.Load()
	if reg == nil || s.lanes.ensure(id) == nil {
		return false, ErrShutdown
	}
	existed, err := reg.Register(p)
	if err != nil {
		return false, err
	}
	registeredProviders.Set(float64(reg.Len()))
	name := EventProviderRegistered
	if existed {
		name = EventProviderReplaced
	}
	s.log.Info().Str("provider", id).Bool("replaced", existed).Msg("provider registered")
	s.publish(Event{Name: name, ProviderID: id})
	return existed, nil
}

// Dispatch hands stmt to every registered provider. It returns at once and
// never reports failure: when the service is disabled, has no providers, is
// not running, or origin is filtered, the statement is silently dropped.
func (s *Service) Dispatch(stmt types.Statement, origin string) {
	if !s.IsEnabled() {
		s.skip()
		return
	}
	reg := s.registry.Load()
	if s.phase.Load() != phaseRunning || reg == nil || reg.Len() == 0 {
		s.skip()
		return
	}
	if s.filter.Load().IsBlocked(origin) {
		s.stats.filtered.Add(1)
		recordStatement(outcomeFiltered)
		origin = normalizeOrigin(origin)
		s.log.Debug().Str("origin", origin).Str("statement_id", stmt.ID).Msg("statement skipped: origin matches the origin filter")
		s.publish(Event{Name: EventStatementFiltered, Fields: map[string]any{"origin": origin, "statement_id": stmt.ID}})
		return
	}

	providers := reg.Snapshot()
	s.stats.dispatched.Add(1)
	recordStatement(outcomeDispatched)
	s.log.Debug().Str("origin", normalizeOrigin(origin)).Stringer("statement", stmt).Int("providers", len(providers)).Msg("statement being processed")
	now := time.Now()
	for _, p := range providers {
		d := delivery{provider: p, stmt: stmt, queuedAt: now}
		lane := s.lanes.get(strings.TrimSpace(p.ID()))
		if lane == nil {
			s.dropped(d, dropShutdown)
			continue
		}
		lane.submit(d)
	}
	queueDepth.Set(float64(s.lanes.queued()))
}

func (s *Service) skip() {
	s.stats.skipped.Add(1)
	recordStatement(outcomeSkipped)
}

// dropped is called by the pool for every delivery that never reaches its
// provider. Warnings are rate limited; counters are not.
func (s *Service) dropped(d delivery, reason string) {
	total := s.stats.dropped.Add(1)
	id := d.provider.ID()
	recordDrop(id, reason)
	if s.dropLog.Allow() {
		s.log.Warn().Str("provider", id).Str("reason", reason).Str("statement_id", d.stmt.ID).Uint64("dropped_total", total).Msg("statement delivery dropped")
	}
	s.publish(Event{Name: EventDeliveryDropped, ProviderID: id, Fields: map[string]any{"reason": reason, "statement_id": d.stmt.ID}})
}

// publish forwards e to the configured publisher. A misbehaving publisher
// must not take a delivery worker down with it.
func (s *Service) publish(e Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("event", e.Name).Msg("event publisher panicked")
		}
	}()
	s.pub.Publish(e)
}
