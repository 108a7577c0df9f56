package httpapi

import (
	"log"
	"net/http"

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
	switch s {
	case "off", "":
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

var defaultLogLevel = LevelInfo

// SetDefaultLogLevel sets the request log level used when a request carries
// no override.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
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

// logFields is the subset of *zerolog.Event used by handlers to attach fields.
type logFields = *zerolog.Event

func logInfo(r *http.Request, msg string, fields func(logFields)) {
	if requestLogLevel(r) < LevelInfo {
		return
	}
	emit(r, zerolog.InfoLevel, msg, fields, nil)
}

func logDebug(r *http.Request, msg string, fields func(logFields)) {
	if requestLogLevel(r) < LevelDebug {
		return
	}
	emit(r, zerolog.DebugLevel, msg, fields, nil)
}

func logError(r *http.Request, msg string, status int, err error) {
	if requestLogLevel(r) < LevelError {
		return
	}
	emit(r, zerolog.ErrorLevel, msg, func(e logFields) { e.Int("status", status) }, err)
}

func emit(r *http.Request, lvl zerolog.Level, msg string, fields func(logFields), err error) {
	if zlog == nil {
		log.Printf("%s path=%s remote=%s err=%v", msg, r.URL.Path, r.RemoteAddr, err)
		return
	}
	e := zlog.WithLevel(lvl).Str("path", r.URL.Path).Str("method", r.Method).Str("remote", r.RemoteAddr)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		e = e.Str("request_id", rid)
	}
	if fields != nil {
		fields(e)
	}
	if err != nil {
		e = e.Err(err)
	}
	e.Msg(msg)
}
