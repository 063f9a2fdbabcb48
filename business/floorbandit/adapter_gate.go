package floorbandit

import "context"

// AdapterGate decides if a demand adapter may be served floor decisions
// (registered, enabled, not suspended).
type AdapterGate interface {
	Allow(ctx context.Context, adapterID string) (bool, error)
}

// NoopAdapterGate is the default implementation that allows everything.
type NoopAdapterGate struct{}

func (NoopAdapterGate) Allow(ctx context.Context, adapterID string) (bool, error) {
	return true, nil
}
