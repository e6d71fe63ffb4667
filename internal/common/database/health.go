package database

import "context"

// Pinger is any backend that can answer a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckAll pings every backend and returns the failures keyed by name. An empty map means ready.
func CheckAll(ctx context.Context, backends map[string]Pinger) map[string]string {
	failed := make(map[string]string)
	for name, b := range backends {
		if err := b.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	return failed
}
