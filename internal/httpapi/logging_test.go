package httpapi

import (
	"bytes"
	"errors"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"DEBUG": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	SetRequestLogLevel("error")
	defer SetRequestLogLevel("")

	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("short query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "info")
	if got := requestLogLevel(r); got != LevelInfo {
		t.Fatalf("header override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("default level not applied: %v", got)
	}
}

func TestLogIntake_StandardLoggerFallback(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Writer()
	defer log.SetOutput(orig)
	log.SetOutput(&buf)

	r := httptest.NewRequest("POST", "/statements", nil)
	logIntake(r, LevelInfo, 202, 2, "gradebook", nil)
	logIntake(r, LevelError, 202, 1, "quiet", nil)
	logIntake(r, LevelError, 400, 0, "", errors.New("bad"))

	out := buf.String()
	if !strings.Contains(out, "status=202 accepted=2") || strings.Contains(out, "quiet") || !strings.Contains(out, "err=bad") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestLogIntake_Zerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	h := NewMux(&mockService{})
	postStatements(t, h, "/statements?log=info&origin=gradebook", oneStatement, nil)
	if out := buf.String(); !strings.Contains(out, `"origin":"gradebook"`) || !strings.Contains(out, `"accepted":1`) || !strings.Contains(out, `"request_id"`) {
		t.Fatalf("unexpected log output: %q", out)
	}
}
