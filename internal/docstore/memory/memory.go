// Package memory is an in-process docstore used for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sandilya-stack/coach-server/internal/docstore"
)

type Store struct {
	mu   sync.Mutex
	docs map[string]*docstore.Document
	seq  int64
	// order breaks CreatedAt ties so Query stays in insertion order.
	order map[string]int64
	now   func() time.Time
}

func New() *Store {
	return &Store{
		docs:  make(map[string]*docstore.Document),
		order: make(map[string]int64),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func clone(d *docstore.Document) *docstore.Document {
	out := *d
	out.Data = append([]byte(nil), d.Data...)
	return &out
}

func (s *Store) Get(_ context.Context, path string) (*docstore.Document, error) {
	if err := docstore.ValidatePath(path); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[path]
	if !ok {
		return nil, docstore.NotFound(path)
	}
	return clone(d), nil
}

func (s *Store) insertLocked(path string, data []byte) *docstore.Document {
	now := s.now()
	s.seq++
	d := &docstore.Document{
		Path:       path,
		Collection: docstore.CollectionOf(path),
		Data:       append([]byte(nil), data...),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.docs[path] = d
	s.order[path] = s.seq
	return clone(d)
}

func (s *Store) Create(_ context.Context, path string, data []byte) (*docstore.Document, error) {
	if err := docstore.ValidatePath(path); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; ok {
		return nil, docstore.Conflict(path)
	}
	return s.insertLocked(path, data), nil
}

func (s *Store) GetOrCreate(_ context.Context, path string, data []byte) (*docstore.Document, error) {
	if err := docstore.ValidatePath(path); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[path]; ok {
		return clone(d), nil
	}
	return s.insertLocked(path, data), nil
}

func (s *Store) Update(_ context.Context, path string, data []byte, expectedVersion int64) (*docstore.Document, error) {
	if err := docstore.ValidatePath(path); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[path]
	if !ok {
		return nil, docstore.NotFound(path)
	}
	if d.Version != expectedVersion {
		return nil, docstore.Conflict(path)
	}
	d.Data = append([]byte(nil), data...)
	d.Version++
	d.UpdatedAt = s.now()
	return clone(d), nil
}

func (s *Store) Query(_ context.Context, collection string) ([]*docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*docstore.Document
	for _, d := range s.docs {
		if d.Collection == collection {
			out = append(out, clone(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.order[out[i].Path] < s.order[out[j].Path]
	})
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }
