package dispatch

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultWorkers    = 8
	defaultQueueDepth = 1024
)

// Config encapsulates all collaborators and tunables for Service construction.
type Config struct {
	// Settings supplies the enablement flag and the origin filter. Nil means
	// the service is always disabled.
	Settings ConfigSource
	// Providers is consulted once by Initialize when the service is enabled.
	Providers ProviderSource
	// Publisher receives observability records. Nil drops them.
	Publisher EventPublisher
	// Logger for lifecycle and failure records. The zero value discards.
	Logger zerolog.Logger
	// TracerProvider for delivery spans. Nil uses the otel global provider.
	TracerProvider trace.TracerProvider

	// Workers is the number of delivery goroutines per provider.
	Workers int
	// QueueDepth bounds the deliveries waiting for one provider's workers.
	QueueDepth int
	// Overflow selects what happens when a provider's queue is full.
	Overflow OverflowPolicy
	// DeliveryTimeout bounds the context handed to Provider.Accept. Zero
	// means no deadline.
	DeliveryTimeout time.Duration
}

// withDefaults returns a copy of cfg with unset tunables filled in.
func (cfg Config) withDefaults() Config {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = defaultQueueDepth
	}
	if cfg.Overflow == "" {
		cfg.Overflow = OverflowRejectNew
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	if cfg.DeliveryTimeout < 0 {
		cfg.DeliveryTimeout = 0
	}
	return cfg
}
