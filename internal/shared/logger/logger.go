package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// LogEntry is the structured line format every service emits.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service"`
	Action    string `json:"action"`
	Message   string `json:"message"`
	Hostname  string `json:"hostname"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// Logger is a small structured JSON logger writing to stdout.
type Logger struct {
	service  string
	hostname string
}

// New creates a logger tagged with the given service name.
func New(service string) *Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &Logger{service: service, hostname: hostname}
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID returns a context carrying a request id so log lines from
// one HTTP request (or webhook delivery) can be correlated.
func (l *Logger) WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func requestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func (l *Logger) emit(entry LogEntry) {
	b, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log marshal failed: %v\n", err)
		return
	}
	fmt.Println(string(b))
}

func (l *Logger) entry(ctx context.Context, level, action, msg string) LogEntry {
	return LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Service:   l.service,
		Action:    action,
		Message:   msg,
		Hostname:  l.hostname,
		RequestID: requestIDFrom(ctx),
	}
}

func (l *Logger) Info(ctx context.Context, action, msg string, details any) {
	e := l.entry(ctx, "INFO", action, msg)
	e.Details = details
	l.emit(e)
}

func (l *Logger) Debug(ctx context.Context, action, msg string, details any) {
	e := l.entry(ctx, "DEBUG", action, msg)
	e.Details = details
	l.emit(e)
}

// Warn is used for advisory conditions, e.g. a staff override that skips
// lifecycle states.
func (l *Logger) Warn(ctx context.Context, action, msg string, details any) {
	e := l.entry(ctx, "WARN", action, msg)
	e.Details = details
	l.emit(e)
}

func (l *Logger) Error(ctx context.Context, action, msg string, err error) {
	e := l.entry(ctx, "ERROR", action, msg)
	if err != nil {
		e.Error = err.Error()
	}
	l.emit(e)
}
