package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandilya-stack/coach-server/internal/docstore"
)

// DocStoreChecker probes the document store on an interval.
type DocStoreChecker struct {
	ds           docstore.Store
	healthy      atomic.Bool
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewDocStoreChecker(ds docstore.Store, log zerolog.Logger, probeTimeout time.Duration) *DocStoreChecker {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &DocStoreChecker{ds: ds, log: log, probeTimeout: probeTimeout}
}

func (c *DocStoreChecker) Name() string { return "docstore" }

func (c *DocStoreChecker) IsHealthy() bool { return c.healthy.Load() }

func (c *DocStoreChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
		defer cancel()
		c.healthy.Store(c.probe(probeCtx))
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

func (c *DocStoreChecker) probe(ctx context.Context) bool {
	var err error
	if p, ok := c.ds.(Pinger); ok {
		err = p.HealthPing(ctx)
	} else {
		err = c.ds.Ping(ctx)
	}
	if err != nil {
		c.log.Error().Stack().Str("checker", c.Name()).Err(err).Msg("docstore health check failed")
		return false
	}
	return true
}
