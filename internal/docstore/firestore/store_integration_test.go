package firestore

import (
	"context"
	"os"
	"testing"

	"github.com/sandilya-stack/coach-server/internal/docstore"
	"github.com/sandilya-stack/coach-server/internal/docstore/docstoretest"
)

func TestFirestoreStore_Compliance(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping firestore docstore integration test")
	}
	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		s, err := NewStore(context.Background(), "coach-test")
		if err != nil {
			t.Fatalf("firestore client: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
