package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Leveled logger shared by the server and the command-line tools.
// - printf-style Debug/Info/Warn/Error/Fatal helpers over log/slog
// - text or JSON output, selected by Setup
// - request-scoped loggers via FromContext

const levelFatal = slog.Level(12)

type ctxKey struct{}

var (
	mu     sync.RWMutex
	level            = new(slog.LevelVar)
	format           = "text"
	out    io.Writer = os.Stdout
	logger           = build(out, format)
)

func build(w io.Writer, f string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l >= levelFatal {
					a.Value = slog.StringValue("FATAL")
				}
			}
			return a
		},
	}
	if f == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	case "fatal":
		level.Set(levelFatal)
	default:
		level.Set(slog.LevelInfo)
	}
}

// Setup sets the level and the output format ("text" or "json").
func Setup(l, f string) {
	Init(l)
	mu.Lock()
	defer mu.Unlock()
	format = strings.ToLower(strings.TrimSpace(f))
	logger = build(out, format)
	slog.SetDefault(logger)
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger = build(out, format)
}

// L returns the process logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func logf(ctx context.Context, l slog.Level, msg string, v ...interface{}) {
	lg := FromContext(ctx)
	if !lg.Enabled(ctx, l) {
		return
	}
	if len(v) > 0 {
		msg = fmt.Sprintf(msg, v...)
	}
	lg.Log(ctx, l, msg)
}

func Debugf(format string, v ...interface{}) {
	logf(context.Background(), slog.LevelDebug, format, v...)
}
func Infof(format string, v ...interface{}) { logf(context.Background(), slog.LevelInfo, format, v...) }
func Warnf(format string, v ...interface{}) { logf(context.Background(), slog.LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) {
	logf(context.Background(), slog.LevelError, format, v...)
}

func Fatalf(format string, v ...interface{}) {
	L().Log(context.Background(), levelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	logf(context.Background(), slog.LevelInfo, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	switch l := level.Level(); {
	case l >= levelFatal:
		return "fatal"
	case l >= slog.LevelError:
		return "error"
	case l >= slog.LevelWarn:
		return "warn"
	case l >= slog.LevelInfo:
		return "info"
	}
	return "debug"
}

// WithRequestID returns a context whose loggers carry request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// FromContext returns the process logger, enriched with request_id when ctx
// carries one.
func FromContext(ctx context.Context) *slog.Logger {
	lg := L()
	if id := RequestID(ctx); id != "" {
		lg = lg.With("request_id", id)
	}
	return lg
}

// Ctx variants log through FromContext.
func DebugCtx(ctx context.Context, format string, v ...interface{}) {
	logf(ctx, slog.LevelDebug, format, v...)
}
func InfoCtx(ctx context.Context, format string, v ...interface{}) {
	logf(ctx, slog.LevelInfo, format, v...)
}
func WarnCtx(ctx context.Context, format string, v ...interface{}) {
	logf(ctx, slog.LevelWarn, format, v...)
}
func ErrorCtx(ctx context.Context, format string, v ...interface{}) {
	logf(ctx, slog.LevelError, format, v...)
}
