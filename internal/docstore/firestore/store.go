// Package firestore stores documents in Cloud Firestore under the same slash paths the engine uses.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sandilya-stack/coach-server/internal/docstore"
)

type Store struct {
	client *firestore.Client
	now    func() time.Time
}

// NewStore creates a Firestore store for the given project.
// FIRESTORE_EMULATOR_HOST is honoured by the client library.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Close() error { return s.client.Close() }

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type documentDoc struct {
	Collection string    `firestore:"collection"`
	Data       string    `firestore:"data"`
	Version    int64     `firestore:"version"`
	CreatedAt  time.Time `firestore:"created_at"`
	UpdatedAt  time.Time `firestore:"updated_at"`
}

func toDocument(path string, d documentDoc) *docstore.Document {
	return &docstore.Document{
		Path:       path,
		Collection: d.Collection,
		Data:       []byte(d.Data),
		Version:    d.Version,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (s *Store) ref(path string) (*firestore.DocumentRef, error) {
	if err := docstore.ValidatePath(path); err != nil {
		return nil, err
	}
	ref := s.client.Doc(path)
	if ref == nil {
		return nil, fmt.Errorf("invalid firestore document path %q", path)
	}
	return ref, nil
}

func (s *Store) newDoc(path string, data []byte) documentDoc {
	now := s.now()
	return documentDoc{
		Collection: docstore.CollectionOf(path),
		Data:       string(data),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ─────────────────────────────────────────
// docstore.Store implementation
// ─────────────────────────────────────────

func (s *Store) Get(ctx context.Context, path string) (*docstore.Document, error) {
	ref, err := s.ref(path)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, docstore.NotFound(path)
		}
		return nil, fmt.Errorf("firestore Get: %w", err)
	}
	var doc documentDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore Get decode: %w", err)
	}
	return toDocument(path, doc), nil
}

func (s *Store) Create(ctx context.Context, path string, data []byte) (*docstore.Document, error) {
	ref, err := s.ref(path)
	if err != nil {
		return nil, err
	}
	doc := s.newDoc(path, data)
	if _, err := ref.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, docstore.Conflict(path)
		}
		return nil, fmt.Errorf("firestore Create: %w", err)
	}
	return toDocument(path, doc), nil
}

func (s *Store) GetOrCreate(ctx context.Context, path string, data []byte) (*docstore.Document, error) {
	ref, err := s.ref(path)
	if err != nil {
		return nil, err
	}
	doc := s.newDoc(path, data)
	if _, err := ref.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return s.Get(ctx, path)
		}
		return nil, fmt.Errorf("firestore GetOrCreate: %w", err)
	}
	return toDocument(path, doc), nil
}

func (s *Store) Update(ctx context.Context, path string, data []byte, expectedVersion int64) (*docstore.Document, error) {
	ref, err := s.ref(path)
	if err != nil {
		return nil, err
	}
	var next documentDoc
	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return docstore.NotFound(path)
			}
			return err
		}
		var cur documentDoc
		if err := snap.DataTo(&cur); err != nil {
			return err
		}
		if cur.Version != expectedVersion {
			return docstore.Conflict(path)
		}
		next = cur
		next.Data = string(data)
		next.Version = cur.Version + 1
		next.UpdatedAt = s.now()
		return tx.Set(ref, next)
	})
	if err != nil {
		return nil, err
	}
	return toDocument(path, next), nil
}

func (s *Store) Query(ctx context.Context, collection string) ([]*docstore.Document, error) {
	col := s.client.Collection(collection)
	if col == nil {
		return nil, fmt.Errorf("invalid firestore collection path %q", collection)
	}

	iter := col.OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*docstore.Document
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore Query: %w", err)
		}

		var doc documentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode documentDoc: %w", err)
		}
		out = append(out, toDocument(docstore.Join(collection, snap.Ref.ID), doc))
	}
	return out, nil
}

// Ping reads a sentinel document; NotFound means the backend answered.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Doc("health/ping").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return err
	}
	return nil
}

// HealthPing implements health.Pinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.Ping(ctx) }
