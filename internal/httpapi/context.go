package httpapi

import (
	"context"
)

// serverBaseCtx is a process-level context that is canceled on shutdown.
// Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context. Once it is done the
// intake refuses new statements with 503.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

func shuttingDown() bool { return serverBaseCtx.Err() != nil }
