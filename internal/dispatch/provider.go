package dispatch

import (
	"context"

	"lrsd/pkg/types"
)

// Provider records statements somewhere: a remote LRS, a log, a database.
// Accept may block for as long as it needs; it runs on a delivery worker,
// never on the dispatching goroutine. Any returned error (or panic) is
// logged and discarded.
type Provider interface {
	ID() string
	Accept(ctx context.Context, stmt types.Statement) error
}

type funcProvider struct {
	id string
	fn func(context.Context, types.Statement) error
}

func (p funcProvider) ID() string { return p.id }

func (p funcProvider) Accept(ctx context.Context, stmt types.Statement) error {
	return p.fn(ctx, stmt)
}

// ProviderFunc adapts a function into a Provider with the given id.
func ProviderFunc(id string, fn func(context.Context, types.Statement) error) Provider {
	return funcProvider{id: id, fn: fn}
}
