// Package logger provides the structured, levelled logger used across
// SmartShelf, built on log/slog.
//
// Handlers pull a request-scoped logger out of the context so every line is
// correlated with the request that produced it:
//
//	log := logger.WithCtx(r.Context())
//	log.Warn("backend rejected sale", "status", 409)
//	// → time=... level=WARN msg="backend rejected sale" request_id=1f0c… status=409
package logger

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/smartshelf/shelfweb/config"
)

var (
	L *slog.Logger

	mu   sync.Mutex
	base slog.Handler
)

func init() {
	opts := &slog.HandlerOptions{}

	switch config.AppEnv() {
	case "production", "prod":
		opts.Level = slog.LevelInfo
		base = slog.NewJSONHandler(os.Stdout, opts)
	default:
		opts.Level = slog.LevelDebug
		base = slog.NewTextHandler(os.Stdout, opts)
	}

	L = slog.New(base)
	slog.SetDefault(L)
}

// Attach fans every subsequent log record out to h as well as stdout.
// Used to plug in the MongoDB diagnostic sink at boot.
func Attach(h slog.Handler) {
	mu.Lock()
	defer mu.Unlock()

	L = slog.New(NewMultiHandler(base, h))
	slog.SetDefault(L)
}

// Detach restores the stdout-only handler.
func Detach() {
	mu.Lock()
	defer mu.Unlock()

	L = slog.New(base)
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log into ctx. Called by middleware.Logger.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
