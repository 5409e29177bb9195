// Package providers holds the concrete statement recorders the daemon can
// build from configuration and the Catalog that hands them to the
// dispatcher.
//
//   - log.go: LogProvider, writes each statement as a structured log event.
//   - http.go: HTTPProvider, forwards statements to an xAPI endpoint.
//   - sqlite.go: SQLiteProvider, appends statements to a local database.
//   - catalog.go: builds providers from config and implements discovery.
package providers
