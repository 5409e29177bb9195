package dispatch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lrsd/pkg/types"
)

// deliver runs one delivery unit on a worker of the provider's lane. Whatever the provider
// does (return an error, panic, run long) stays inside this call.
func (s *Service) deliver(d delivery) {
	id := d.provider.ID()
	ctx := context.Background()
	if s.cfg.DeliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
		defer cancel()
	}
	ctx, span := s.tracer.Start(ctx, "lrsd.deliver",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("lrsd.provider", id),
			attribute.String("lrsd.statement.id", d.stmt.ID),
			attribute.Int64("lrsd.queue_wait_ms", time.Since(d.queuedAt).Milliseconds()),
		),
	)
	defer span.End()

	start := time.Now()
	err := accept(ctx, d.provider, d.stmt)
	elapsed := time.Since(start)
	recordDelivery(id, err, elapsed)
	queueDepth.Set(float64(s.lanes.queued()))

	if err != nil {
		s.stats.failed.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error().Err(err).Str("provider", id).Stringer("statement", d.stmt).Dur("elapsed", elapsed).Msg("provider failed to process statement")
		s.publish(Event{Name: EventDeliveryFailed, ProviderID: id, Fields: map[string]any{"statement_id": d.stmt.ID, "error": err.Error()}})
		return
	}
	s.stats.delivered.Add(1)
}

// accept calls p.Accept and turns a panic into a *PanicError.
func accept(ctx context.Context, p Provider, stmt types.Statement) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{ProviderID: p.ID(), Value: r}
		}
	}()
	return p.Accept(ctx, stmt)
}
