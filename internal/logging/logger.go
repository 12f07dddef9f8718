// Package logging carries the server's structured logger.
//
// New(backend, w) selects the implementation named by LOG_BACKEND (or the
// log_backend JSON key) and writes JSON lines to w:
//
//	"", "slog"  log/slog JSON handler (default)
//	"logrus"    logrus JSON formatter
//
// Any other name is rejected so a typo in configuration fails at startup.
package logging

import "context"

// Logger is what services, repositories and the HTTP layer log through.
// Args are alternating key/value pairs:
//
//	log.Info(ctx, "registered", "email", req.Email, "id", id)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds pairs such as module or request_id to every later line.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog   = "slog"
	BackendLogrus = "logrus"
)
