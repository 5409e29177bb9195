// Package dispatch fans learner-activity statements out to a pluggable set of
// recording providers. It is structured into small files by concern:
//
//   - service.go: Service type, constructor, Dispatch/Register/IsEnabled.
//   - lifecycle.go: Initialize and Shutdown (discovery, filter load, pool start/stop).
//   - config.go: Config and package defaults; New applies defaults.
//   - sources.go: ProviderSource and ConfigSource collaborators plus static helpers.
//   - provider.go: the Provider capability and ProviderFunc adapter.
//   - registry.go: concurrency-safe provider registry (upsert by id).
//   - filter.go: immutable origin filter.
//   - pool.go: bounded delivery pool with overflow policies.
//   - deliver.go: one isolated delivery unit (recover, log, trace, count).
//   - events.go / eventpub_memory.go: observability records.
//   - metrics.go: Prometheus collectors.
//   - status.go: Stats/Status reporting helpers.
//   - errors.go: error types and helpers (IsInvalidArgument).
//
// Dispatch is fire-and-forget: it never blocks on provider work and never
// reports a provider failure to the caller. Register is the only call that
// returns a caller-visible error, for a nil provider or an empty id.
package dispatch
