package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/sandilya-stack/coach-server/internal/docstore/memory"
)

type fakeChecker struct {
	name    string
	healthy atomic.Bool
}

func (f *fakeChecker) Name() string                         { return f.name }
func (f *fakeChecker) IsHealthy() bool                      { return f.healthy.Load() }
func (f *fakeChecker) Start(context.Context, time.Duration) {}

func TestServiceCheckerTransitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &fakeChecker{name: "a"}
	b := &fakeChecker{name: "b"}
	a.healthy.Store(true)
	b.healthy.Store(true)

	svc := NewServiceChecker(zerolog.Nop(), a, b)
	go svc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, svc.IsHealthy)

	b.healthy.Store(false)
	waitTrue(t, func() bool { return !svc.IsHealthy() })
	assert.Equal(t, []string{"b"}, svc.Unhealthy())

	b.healthy.Store(true)
	waitTrue(t, svc.IsHealthy)
}

type failingPinger struct {
	*memory.Store
	fail atomic.Bool
}

func (f *failingPinger) HealthPing(context.Context) error {
	if f.fail.Load() {
		return errors.New("unreachable")
	}
	return nil
}

func TestDocStoreCheckerUsesHealthPing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ds := &failingPinger{Store: memory.New()}
	c := NewDocStoreChecker(ds, zerolog.Nop(), time.Second)
	go c.Start(ctx, 10*time.Millisecond)

	waitTrue(t, c.IsHealthy)
	ds.fail.Store(true)
	waitTrue(t, func() bool { return !c.IsHealthy() })
}

func TestDocStoreCheckerFallsBackToPing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewDocStoreChecker(memory.New(), zerolog.Nop(), 0)
	go c.Start(ctx, 10*time.Millisecond)
	waitTrue(t, c.IsHealthy)
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}
