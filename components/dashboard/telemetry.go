package dashboard

import (
	"context"
	"log/slog"
	"sort"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// SlogTelemetry writes events as structured log records.
type SlogTelemetry struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogTelemetry logs events at info level. A nil logger uses slog.Default.
func NewSlogTelemetry(logger *slog.Logger) *SlogTelemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTelemetry{logger: logger, level: slog.LevelInfo}
}

// Record implements Telemetry. Provider errors are logged at warn level.
func (t *SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	level := t.level
	if _, failed := payload["error"]; failed {
		level = slog.LevelWarn
	}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.String("event", event))
	for _, key := range keys {
		attrs = append(attrs, slog.Any(key, payload[key]))
	}
	t.logger.LogAttrs(ctx, level, "dashboard event", attrs...)
}
