// Package health tracks whether the coach service can serve traffic.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Checker is implemented by component-level checkers (docstore, generator).
type Checker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// Pinger can be implemented by components to expose a dedicated probe.
// HealthPing must return nil when the component is healthy.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

// ServiceChecker folds component checkers into one service flag.
type ServiceChecker struct {
	healthy atomic.Bool
	deps    []Checker
	log     zerolog.Logger
}

func NewServiceChecker(log zerolog.Logger, deps ...Checker) *ServiceChecker {
	return &ServiceChecker{deps: deps, log: log}
}

func (h *ServiceChecker) IsHealthy() bool { return h.healthy.Load() }

// Unhealthy lists the names of components currently failing.
func (h *ServiceChecker) Unhealthy() []string {
	var out []string
	for _, c := range h.deps {
		if !c.IsHealthy() {
			out = append(out, c.Name())
		}
	}
	return out
}

// Start re-evaluates dependency health every interval until ctx is done.
func (h *ServiceChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := false
	eval := func() {
		down := h.Unhealthy()
		cur := len(down) == 0
		h.healthy.Store(cur)
		if cur == prev {
			return
		}
		if cur {
			h.log.Info().Msg("service health: UP")
		} else {
			h.log.Error().Strs("failing", down).Msg("service health: DOWN")
		}
		prev = cur
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}
