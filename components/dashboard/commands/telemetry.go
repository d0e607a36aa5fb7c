package commands

import (
	"context"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// Telemetry is the dashboard event sink; commands record one event per
// successful execution.
type Telemetry = dashboard.Telemetry

type discardTelemetry struct{}

func (discardTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry{}
	}
	return t
}
