package session

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Alia5/egodrive/internal/session"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	ticks     metric.Int64Counter
	handoffs  metric.Int64Counter
	devices   metric.Int64Counter
	errors    metric.Int64Counter
	reactions metric.Float64Histogram
}

// newMetrics uses the global meter provider, which is a no-op unless the
// binary installs one.
func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)
	out.ticks, err = m.Int64Counter(
		"session.ticks",
		metric.WithDescription("Ticks by governing control source"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}
	out.handoffs, err = m.Int64Counter(
		"session.handoffs",
		metric.WithDescription("Changes of the governing control source"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating handoff counter: %w", err)
	}
	out.devices, err = m.Int64Counter(
		"session.device.transitions",
		metric.WithDescription("Device connection state changes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating device counter: %w", err)
	}
	out.errors, err = m.Int64Counter(
		"session.action.errors",
		metric.WithDescription("Vehicle actions that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error counter: %w", err)
	}
	out.reactions, err = m.Float64Histogram(
		"session.takeover.reaction",
		metric.WithDescription("Time from take-over request to first human input"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reaction histogram: %w", err)
	}
	return &out, nil
}
