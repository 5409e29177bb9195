package types

// DispatchResponse is returned by POST /statements.
type DispatchResponse struct {
	// Number of statements handed to the dispatcher.
	// example: 1
	Accepted int `json:"accepted" example:"1"`
}

// ProvidersResponse wraps the provider ids returned by GET /providers.
type ProvidersResponse struct {
	// Registered provider ids, sorted.
	// example: ["audit-log","lrs-remote"]
	Providers []string `json:"providers"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// DispatchStats are cumulative dispatcher counters since start.
type DispatchStats struct {
	// Statements that passed the gate and filter and were fanned out.
	// example: 120
	Dispatched uint64 `json:"dispatched" example:"120"`
	// Statements dropped by the origin filter.
	// example: 4
	Filtered uint64 `json:"filtered" example:"4"`
	// Statements ignored because the service was disabled or had no providers.
	// example: 0
	Skipped uint64 `json:"skipped" example:"0"`
	// Deliveries a provider completed without error.
	// example: 238
	Delivered uint64 `json:"delivered" example:"238"`
	// Deliveries a provider failed (error or panic).
	// example: 2
	Failed uint64 `json:"failed" example:"2"`
	// Deliveries dropped by the pool (saturation or shutdown).
	// example: 0
	Dropped uint64 `json:"dropped" example:"0"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Lifecycle state: uninitialized, active, disabled or shutdown.
	// example: active
	State string `json:"state" example:"active"`
	// Current value of the enablement flag.
	// example: true
	Enabled bool `json:"enabled" example:"true"`
	// Registered provider ids, sorted.
	Providers []string `json:"providers"`
	// Blocked origins, sorted. Empty means no filtering.
	Origins []string `json:"origins"`
	// Delivery workers per provider.
	// example: 8
	Workers int `json:"workers" example:"8"`
	// Deliveries waiting for a worker, summed over providers.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Maximum queued deliveries per provider before the overflow policy applies.
	// example: 1024
	QueueDepth int `json:"queue_depth" example:"1024"`
	// Overflow policy applied when the queue is full.
	// example: reject-new
	Overflow string `json:"overflow" example:"reject-new"`
	// Cumulative counters.
	Stats DispatchStats `json:"stats"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
