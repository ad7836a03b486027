// Package docstoretest holds the compliance suite every docstore backend must pass.
package docstoretest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sandilya-stack/coach-server/internal/docstore"
	"github.com/sandilya-stack/coach-server/internal/model"
)

// Run exercises a docstore.Store implementation.
// makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) docstore.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique root so backends shared between tests do not collide.
	root := docstore.Join("users", "u-"+uuid.New().String())
	sessions := docstore.Join(root, "sessions")
	p1 := docstore.Join(sessions, "s1")
	p2 := docstore.Join(sessions, "s2")

	// Get on a missing document
	if _, err := s.Get(ctx, p1); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}

	// Create
	d, err := s.Create(ctx, p1, []byte(`{"text":"one"}`))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Version != 1 || d.Collection != sessions || d.Path != p1 {
		t.Fatalf("Create: unexpected document %+v", d)
	}
	if _, err := s.Create(ctx, p1, []byte(`{"text":"again"}`)); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("Create duplicate: want ErrConflict, got %v", err)
	}

	got, err := s.Get(ctx, p1)
	if err != nil || string(got.Data) != `{"text":"one"}` || got.Version != 1 {
		t.Fatalf("Get: got=%+v err=%v", got, err)
	}

	// Update with CAS
	upd, err := s.Update(ctx, p1, []byte(`{"text":"two"}`), 1)
	if err != nil || upd.Version != 2 {
		t.Fatalf("Update: got=%+v err=%v", upd, err)
	}
	if _, err := s.Update(ctx, p1, []byte(`{"text":"stale"}`), 1); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("Update stale: want ErrConflict, got %v", err)
	}
	if got, _ := s.Get(ctx, p1); got == nil || string(got.Data) != `{"text":"two"}` {
		t.Fatalf("stale update must not be applied: %+v", got)
	}
	if _, err := s.Update(ctx, docstore.Join(sessions, "missing"), []byte(`{}`), 1); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Update missing: want ErrNotFound, got %v", err)
	}

	// GetOrCreate is idempotent and never overwrites
	prefs := docstore.Join(root, "preferences", "tagCounts")
	g1, err := s.GetOrCreate(ctx, prefs, []byte(`{"n":0}`))
	if err != nil || g1.Version != 1 {
		t.Fatalf("GetOrCreate first: got=%+v err=%v", g1, err)
	}
	if _, err := s.Update(ctx, prefs, []byte(`{"n":1}`), 1); err != nil {
		t.Fatalf("Update prefs: %v", err)
	}
	g2, err := s.GetOrCreate(ctx, prefs, []byte(`{"n":0}`))
	if err != nil || string(g2.Data) != `{"n":1}` || g2.Version != 2 {
		t.Fatalf("GetOrCreate second: got=%+v err=%v", g2, err)
	}

	// Query returns direct children only, oldest first
	time.Sleep(5 * time.Millisecond) // ensure monotonic creation time ordering
	if _, err := s.Create(ctx, p2, []byte(`{"text":"three"}`)); err != nil {
		t.Fatalf("Create s2: %v", err)
	}
	if _, err := s.Create(ctx, docstore.Join(sessions, "s1", "notes", "n1"), []byte(`{}`)); err != nil {
		t.Fatalf("Create nested: %v", err)
	}
	lst, err := s.Query(ctx, sessions)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(lst) != 2 || lst[0].Path != p1 || lst[1].Path != p2 {
		paths := make([]string, 0, len(lst))
		for _, d := range lst {
			paths = append(paths, d.Path)
		}
		t.Fatalf("Query: unexpected result %v", paths)
	}
	if empty, err := s.Query(ctx, docstore.Join("users", "nobody", "sessions")); err != nil || len(empty) != 0 {
		t.Fatalf("Query empty: n=%d err=%v", len(empty), err)
	}

	// Concurrent GetOrCreate materializes a single document
	race := docstore.Join(root, "preferences", "race")
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.GetOrCreate(ctx, race, []byte(`{"n":0}`)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent GetOrCreate: %v", err)
	}
	if d, err := s.Get(ctx, race); err != nil || d.Version != 1 {
		t.Fatalf("concurrent GetOrCreate result: got=%+v err=%v", d, err)
	}

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
