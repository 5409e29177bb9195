package dispatch

// Names of the observability records emitted by the Service.
const (
	EventServiceInit        = "service_init"
	EventServiceShutdown    = "service_shutdown"
	EventProviderRegistered = "provider_registered"
	EventProviderReplaced   = "provider_replaced"
	EventStatementFiltered  = "statement_filtered"
	EventDeliveryFailed     = "delivery_failed"
	EventDeliveryDropped    = "delivery_dropped"
)

// Event is an observability record emitted by the Service.
// Minimal and stable: name + provider id and optional fields via key/values.
type Event struct {
	Name       string
	ProviderID string
	Fields     map[string]any
}

// EventPublisher receives events from the Service. Implementations should be
// lightweight and non-blocking; Publish is called from delivery workers and
// from Dispatch itself, and must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
