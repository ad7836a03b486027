package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sandilya-stack/coach-server/internal/docstore"
	"github.com/sandilya-stack/coach-server/internal/docstore/docstoretest"
)

func newTempStore(t *testing.T) docstore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coach.db")
	s, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	docstoretest.Run(t, newTempStore)
}

func TestSQLiteStore_ReopenKeepsDocuments(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "coach.db")

	s, err := New(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Create(ctx, "users/u1/sessions/s1", []byte(`{"text":"hi"}`)); err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = s.Close()

	s2, err := New(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()
	d, err := s2.Get(ctx, "users/u1/sessions/s1")
	if err != nil || string(d.Data) != `{"text":"hi"}` {
		t.Fatalf("get after reopen: got=%+v err=%v", d, err)
	}
}
