package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lrsd/pkg/types"
)

// OriginHeader carries the statement origin when the query parameter is absent.
const OriginHeader = "X-Statement-Origin"

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Dispatch(stmt types.Statement, origin string)
	Providers() []string
	Status() types.StatusResponse
	Ready() bool
}

// Rejection reasons recorded by IncrementRejected.
const (
	rejectMediaType = "unsupported_media_type"
	rejectTooLarge  = "too_large"
	rejectBadJSON   = "bad_json"
	rejectInvalid   = "invalid_statement"
	rejectShutdown  = "shutting_down"
)

var errNoStatements = errors.New("no statements in body")

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/statements", handleStatements(svc))
	r.Get("/providers", handleProviders(svc))
	r.Get("/status", handleStatus(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() && !shuttingDown() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleStatements dispatches one statement or a batch.
//
//	@Summary      Record statements
//	@Description  Accepts a single statement or an array and hands each to the dispatcher. Delivery is asynchronous; 202 means accepted, not delivered.
//	@Tags         statements
//	@Accept       json
//	@Produce      json
//	@Param        origin              query   string           false  "Origin tag checked against the origin filter"
//	@Param        X-Statement-Origin  header  string           false  "Origin tag when the query parameter is absent"
//	@Param        statement           body    types.Statement  true   "Statement (or array of statements)"
//	@Success      202  {object}  types.DispatchResponse
//	@Failure      400  {object}  types.ErrorResponse
//	@Failure      415  {object}  types.ErrorResponse
//	@Failure      503  {object}  types.ErrorResponse
//	@Router       /statements [post]
func handleStatements(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lvl := requestLogLevel(r)
		origin := r.URL.Query().Get("origin")
		if origin == "" {
			origin = r.Header.Get(OriginHeader)
		}
		reject := func(status int, reason, msg string, err error) {
			IncrementRejected(reason)
			writeJSONError(w, status, msg)
			logIntake(r, lvl, status, 0, origin, err)
		}

		if shuttingDown() {
			reject(http.StatusServiceUnavailable, rejectShutdown, "server is shutting down", errors.New("shutting down"))
			return
		}
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			reject(http.StatusUnsupportedMediaType, rejectMediaType, "Content-Type must be application/json", fmt.Errorf("content type %q", ct))
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		stmts, err := decodeStatements(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				// Still 400: the limit is not advertised.
				reject(http.StatusBadRequest, rejectTooLarge, "invalid JSON body", err)
			case errors.Is(err, errNoStatements):
				reject(http.StatusBadRequest, rejectBadJSON, err.Error(), err)
			default:
				reject(http.StatusBadRequest, rejectBadJSON, "invalid JSON body", err)
			}
			return
		}
		for i, s := range stmts {
			if err := validateStatement(s); err != nil {
				reject(http.StatusBadRequest, rejectInvalid, fmt.Sprintf("statement %d: %v", i, err), err)
				return
			}
		}

		for _, s := range stmts {
			svc.Dispatch(s.WithDefaults(), origin)
		}
		statementsReceived.Add(float64(len(stmts)))
		writeJSON(w, http.StatusAccepted, types.DispatchResponse{Accepted: len(stmts)})
		logIntake(r, lvl, http.StatusAccepted, len(stmts), origin, nil)
	}
}

// decodeStatements reads either a JSON object or a JSON array of objects.
func decodeStatements(body io.Reader) ([]types.Statement, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errNoStatements
	}
	if b[0] == '[' {
		var list []types.Statement
		if err := json.Unmarshal(b, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, errNoStatements
		}
		return list, nil
	}
	var one types.Statement
	if err := json.Unmarshal(b, &one); err != nil {
		return nil, err
	}
	return []types.Statement{one}, nil
}

// validateStatement rejects statements no recorder could make sense of.
// A pre-serialized statement is passed through as is.
func validateStatement(s types.Statement) error {
	if len(s.Raw) > 0 {
		return nil
	}
	if strings.TrimSpace(s.Verb.ID) == "" {
		return errors.New("verb.id is required")
	}
	if strings.TrimSpace(s.Object.ID) == "" {
		return errors.New("object.id is required")
	}
	return nil
}

// handleProviders lists registered providers.
//
//	@Summary   List providers
//	@Tags      providers
//	@Produce   json
//	@Success   200  {object}  types.ProvidersResponse
//	@Router    /providers [get]
func handleProviders(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := svc.Providers()
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, types.ProvidersResponse{Providers: ids})
	}
}

// handleStatus reports dispatcher state and counters.
//
//	@Summary   Dispatcher status
//	@Tags      status
//	@Produce   json
//	@Success   200  {object}  types.StatusResponse
//	@Router    /status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}
