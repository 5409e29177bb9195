package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lrsd/internal/config"
	"lrsd/internal/dispatch"
	"lrsd/internal/httpapi"
	"lrsd/internal/providers"
	"lrsd/pkg/types"
)

// stack is an in-process lrsd: config store, provider catalog, dispatcher
// and HTTP intake behind an httptest server.
type stack struct {
	srv     *httptest.Server
	svc     *dispatch.Service
	store   *config.Store
	catalog *providers.Catalog
	events  *dispatch.MemoryPublisher
}

func newStack(t *testing.T, store *config.Store) *stack {
	t.Helper()
	f := store.File()
	catalog, err := providers.Build(f.Providers, zerolog.Nop())
	if err != nil {
		t.Fatalf("build providers: %v", err)
	}
	overflow, err := dispatch.ParseOverflowPolicy(f.Service.Overflow)
	if err != nil {
		t.Fatalf("overflow: %v", err)
	}
	timeout, _ := f.Service.Timeout()
	events := dispatch.NewMemoryPublisher()
	svc := dispatch.New(dispatch.Config{
		Settings:        store,
		Providers:       catalog,
		Publisher:       events,
		Workers:         f.Service.Workers,
		QueueDepth:      f.Service.QueueDepth,
		Overflow:        overflow,
		DeliveryTimeout: timeout,
	})
	if err := svc.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	httpapi.SetBaseContext(context.Background())
	srv := httptest.NewServer(httpapi.NewMux(svc))
	s := &stack{srv: srv, svc: svc, store: store, catalog: catalog, events: events}
	t.Cleanup(func() {
		srv.Close()
		_ = s.stop()
	})
	return s
}

// stop drains pending deliveries and closes providers. Safe to call twice.
func (s *stack) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.svc.Shutdown(ctx); err != nil {
		return err
	}
	return s.catalog.Close()
}

func storeFor(t *testing.T, f config.File) *config.Store {
	t.Helper()
	f.Normalize()
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return config.NewStore("", f, zerolog.Nop())
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// lrsServer is an upstream learning record store that records every
// statement posted to it.
type lrsServer struct {
	*httptest.Server
	mu       sync.Mutex
	got      []types.Statement
	versions []string
	users    []string
	status   int
}

func newLRSServer(t *testing.T) *lrsServer {
	t.Helper()
	l := &lrsServer{status: http.StatusOK}
	l.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var st types.Statement
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		user, _, _ := r.BasicAuth()
		l.mu.Lock()
		l.got = append(l.got, st)
		l.versions = append(l.versions, r.Header.Get("X-Experience-API-Version"))
		l.users = append(l.users, user)
		status := l.status
		l.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(l.Close)
	return l
}

func (l *lrsServer) statements() []types.Statement {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.Statement(nil), l.got...)
}

func (l *lrsServer) setStatus(code int) {
	l.mu.Lock()
	l.status = code
	l.mu.Unlock()
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

const answered = `{"actor":{"id":"student-42"},"verb":{"id":"http://adlnet.gov/expapi/verbs/answered"},"object":{"id":"/assessment/123/item/7"}}`
