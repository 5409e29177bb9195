package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"lrsd/internal/config"
	"lrsd/internal/dispatch"
	"lrsd/internal/providers"
	"lrsd/pkg/types"
)

func TestE2E_StatementsReachRemoteLRS(t *testing.T) {
	lrs := newLRSServer(t)
	f := config.Default()
	f.Service.Enabled = true
	f.Providers = []config.ProviderConfig{{
		ID: "lrs-remote", Type: config.ProviderHTTP, Endpoint: lrs.URL,
		Username: "lrsd", Password: "secret",
	}}
	s := newStack(t, storeFor(t, f))

	resp, body := httpGet(t, s.srv.URL+"/providers")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "lrs-remote") {
		t.Fatalf("/providers %d %s", resp.StatusCode, body)
	}

	resp, body = httpPostJSON(t, s.srv.URL+"/statements", []byte("["+answered+","+answered+"]"))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("/statements %d %s", resp.StatusCode, body)
	}
	var dr types.DispatchResponse
	if err := json.Unmarshal(body, &dr); err != nil || dr.Accepted != 2 {
		t.Fatalf("response %s: %v", body, err)
	}

	if err := s.stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	got := lrs.statements()
	if len(got) != 2 {
		t.Fatalf("lrs received %d statements, want 2", len(got))
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Fatalf("statements need distinct ids: %q %q", got[0].ID, got[1].ID)
	}
	if got[0].Verb.ID != "http://adlnet.gov/expapi/verbs/answered" {
		t.Fatalf("verb=%q", got[0].Verb.ID)
	}
	lrs.mu.Lock()
	defer lrs.mu.Unlock()
	if lrs.versions[0] != providers.XAPIVersion || lrs.users[0] != "lrsd" {
		t.Fatalf("version=%q user=%q", lrs.versions[0], lrs.users[0])
	}
}

func TestE2E_OriginFilterBlocksStatements(t *testing.T) {
	lrs := newLRSServer(t)
	f := config.Default()
	f.Service.Enabled = true
	f.Service.Origins.Filter = config.StringList{"batchimport", "gradebook"}
	f.Providers = []config.ProviderConfig{{ID: "lrs", Type: config.ProviderHTTP, Endpoint: lrs.URL}}
	s := newStack(t, storeFor(t, f))

	if resp, body := httpPostJSON(t, s.srv.URL+"/statements?origin=batchimport", []byte(answered)); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("filtered post %d %s", resp.StatusCode, body)
	}
	if resp, body := httpPostJSON(t, s.srv.URL+"/statements?origin=BatchImport", []byte(answered)); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("case-variant post %d %s", resp.StatusCode, body)
	}
	if err := s.stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if n := len(lrs.statements()); n != 1 {
		t.Fatalf("lrs received %d statements, want 1 (only the case-variant origin)", n)
	}
	if n := len(s.events.Named(dispatch.EventStatementFiltered)); n != 1 {
		t.Fatalf("filtered events=%d, want 1", n)
	}
	if st := s.svc.Stats(); st.Filtered != 1 || st.Dispatched != 1 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestE2E_EnablementFollowsConfigReload(t *testing.T) {
	lrs := newLRSServer(t)
	path := tempPath(t, "lrsd.yaml")
	writeFile(t, path, `
service:
  enabled: true
providers:
  - id: lrs
    type: http
    endpoint: `+lrs.URL+`
`)
	store, err := config.OpenStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	s := newStack(t, store)

	if resp, _ := httpGet(t, s.srv.URL+"/readyz"); resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz while enabled=%d", resp.StatusCode)
	}

	writeFile(t, path, `
service:
  enabled: false
providers:
  - id: lrs
    type: http
    endpoint: `+lrs.URL+`
`)
	if err := store.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if resp, _ := httpGet(t, s.srv.URL+"/readyz"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/readyz while disabled=%d", resp.StatusCode)
	}
	httpPostJSON(t, s.srv.URL+"/statements", []byte(answered))

	var st types.StatusResponse
	_, body := httpGet(t, s.srv.URL+"/status")
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("status json: %v body=%s", err, body)
	}
	if st.State != string(dispatch.StateDisabled) || st.Enabled {
		t.Fatalf("status=%+v", st)
	}
	if err := s.stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if n := len(lrs.statements()); n != 0 {
		t.Fatalf("lrs received %d statements while disabled", n)
	}
	if st := s.svc.Stats(); st.Skipped != 1 {
		t.Fatalf("skipped=%d, want 1", st.Skipped)
	}
}

func TestE2E_FailingProviderDoesNotAffectOthers(t *testing.T) {
	lrs := newLRSServer(t)
	lrs.setStatus(http.StatusInternalServerError)
	db := tempPath(t, "statements.db")
	f := config.Default()
	f.Service.Enabled = true
	f.Providers = []config.ProviderConfig{
		{ID: "broken", Type: config.ProviderHTTP, Endpoint: lrs.URL},
		{ID: "archive", Type: config.ProviderSQLite, Path: db},
	}
	s := newStack(t, storeFor(t, f))

	if resp, body := httpPostJSON(t, s.srv.URL+"/statements", []byte(answered)); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("/statements %d %s", resp.StatusCode, body)
	}
	if err := s.stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if st := s.svc.Stats(); st.Delivered != 1 || st.Failed != 1 {
		t.Fatalf("stats=%+v", st)
	}

	archive, err := providers.OpenSQLiteProvider("check", db)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer archive.Close()
	n, err := archive.Count(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("archived=%d err=%v", n, err)
	}
}

func TestE2E_StatusReflectsConfiguration(t *testing.T) {
	f := config.Default()
	f.Service.Enabled = true
	f.Service.Workers = 3
	f.Service.QueueDepth = 16
	f.Service.Overflow = "drop-oldest"
	f.Service.Origins.Filter = config.StringList{"gradebook"}
	f.Providers = []config.ProviderConfig{{ID: "audit", Type: config.ProviderLog}}
	s := newStack(t, storeFor(t, f))

	resp, body := httpGet(t, s.srv.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status %d %s", resp.StatusCode, body)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("status json: %v", err)
	}
	if st.State != string(dispatch.StateActive) || !st.Enabled || st.Workers != 3 || st.QueueDepth != 16 || st.Overflow != "drop-oldest" {
		t.Fatalf("status=%+v", st)
	}
	if len(st.Providers) != 1 || st.Providers[0] != "audit" || len(st.Origins) != 1 || st.Origins[0] != "gradebook" {
		t.Fatalf("providers=%v origins=%v", st.Providers, st.Origins)
	}
}
