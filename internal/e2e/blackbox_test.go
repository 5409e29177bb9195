package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"

	"lrsd/internal/providers"
	"lrsd/pkg/types"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// <root>/internal/e2e/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "lrsd")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/lrsd")
	cmd.Dir = projectRoot(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("go build failed: %v\n%s", err, out)
	}
	return bin
}

type serverProc struct {
	cmd  *exec.Cmd
	base string
	done chan error
}

func startServer(t *testing.T, bin, configPath string, port int) *serverProc {
	t.Helper()
	cmd := exec.Command(bin, "serve", "--config", configPath, "--addr", fmt.Sprintf("127.0.0.1:%d", port))
	cmd.Env = append(os.Environ(), "LRSD_LOG_FORMAT=json", "LRSD_OTEL_ENDPOINT=")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	sp := &serverProc{cmd: cmd, base: fmt.Sprintf("http://127.0.0.1:%d", port), done: make(chan error, 1)}
	go func() { sp.done <- cmd.Wait() }()
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(sp.base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return sp
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// terminate sends SIGTERM and waits for a clean exit.
func (sp *serverProc) terminate(t *testing.T) {
	t.Helper()
	if err := sp.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("signal: %v", err)
	}
	select {
	case err := <-sp.done:
		if err != nil {
			t.Fatalf("server exit: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("server did not exit after SIGTERM")
	}
}

func TestBlackbox_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs the lrsd binary")
	}
	bin := buildBinary(t)
	db := tempPath(t, "statements.db")
	cfg := tempPath(t, "lrsd.yaml")
	writeFile(t, cfg, `
service:
  enabled: true
  origins:
    filter: [batchimport]
providers:
  - id: archive
    type: sqlite
    path: `+db+`
  - id: audit
    type: log
`)
	sp := startServer(t, bin, cfg, findFreePort(t))

	resp, body := httpGet(t, sp.base+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz %d %s", resp.StatusCode, body)
	}

	resp, body = httpGet(t, sp.base+"/providers")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/providers %d %s", resp.StatusCode, body)
	}
	var pr types.ProvidersResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		t.Fatalf("/providers json: %v body=%s", err, body)
	}
	if len(pr.Providers) != 2 || pr.Providers[0] != "archive" || pr.Providers[1] != "audit" {
		t.Fatalf("providers=%v", pr.Providers)
	}

	resp, body = httpPostJSON(t, sp.base+"/statements", []byte("["+answered+","+answered+"]"))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("/statements %d %s", resp.StatusCode, body)
	}
	resp, body = httpPostJSON(t, sp.base+"/statements?origin=batchimport", []byte(answered))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("/statements filtered %d %s", resp.StatusCode, body)
	}

	resp, _ = httpGet(t, sp.base+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics %d", resp.StatusCode)
	}

	sp.terminate(t)

	archive, err := providers.OpenSQLiteProvider("check", db)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer archive.Close()
	n, err := archive.Count(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("archived=%d err=%v", n, err)
	}
}

func TestBlackbox_RejectsMalformedStatement(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs the lrsd binary")
	}
	bin := buildBinary(t)
	cfg := tempPath(t, "lrsd.json")
	writeFile(t, cfg, `{"service":{"enabled":true},"providers":[{"id":"audit","type":"log"}]}`)
	sp := startServer(t, bin, cfg, findFreePort(t))

	resp, body := httpPostJSON(t, sp.base+"/statements", []byte(`{"actor":{"id":"x"}}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, body)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Code != http.StatusBadRequest {
		t.Fatalf("error body %s: %v", body, err)
	}
	sp.terminate(t)
}
