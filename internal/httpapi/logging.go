package httpapi

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "disabled", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug", "trace":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel applies when a request carries no override.
var defaultLogLevel = LevelOff

// SetRequestLogLevel sets the default per-request log level
// (off, error, info or debug).
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logIntake records the outcome of one POST /statements request.
func logIntake(r *http.Request, lvl LogLevel, status, accepted int, origin string, err error) {
	if lvl == LevelOff || (err == nil && lvl < LevelInfo) {
		return
	}
	if zlog == nil {
		log.Printf("statements status=%d accepted=%d origin=%q err=%v", status, accepted, origin, err)
		return
	}
	z := zlog.Info()
	if err != nil {
		z = zlog.Error().Err(err)
	}
	z = z.Int("status", status).Int("accepted", accepted).Str("origin", origin)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("statements")
}
