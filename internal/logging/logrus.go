package logging

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a logrus entry to Logger. Key–value args become fields.
type LogrusLogger struct {
	e *logrus.Entry
}

func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	return &LogrusLogger{e: logrus.NewEntry(l)}
}

// NewJSONLogrusLogger writes JSON lines to w.
func NewJSONLogrusLogger(w io.Writer) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	return NewLogrusLogger(l)
}

func (g *LogrusLogger) Info(ctx context.Context, msg string, args ...any) {
	g.e.WithContext(ctx).WithFields(toFields(args)).Info(msg)
}

func (g *LogrusLogger) Warn(ctx context.Context, msg string, args ...any) {
	g.e.WithContext(ctx).WithFields(toFields(args)).Warn(msg)
}

func (g *LogrusLogger) Error(ctx context.Context, msg string, args ...any) {
	g.e.WithContext(ctx).WithFields(toFields(args)).Error(msg)
}

func (g *LogrusLogger) With(args ...any) Logger {
	return &LogrusLogger{e: g.e.WithFields(toFields(args))}
}

// toFields pairs args the way slog does: a dangling value is stored under "!BADKEY".
func toFields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			f["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		f[key] = args[i+1]
	}
	return f
}
