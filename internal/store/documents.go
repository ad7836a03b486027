package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/sandilya-stack/coach-server/internal/docstore"
	"github.com/sandilya-stack/coach-server/internal/metrics"
	"github.com/sandilya-stack/coach-server/internal/model"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
	prefsCollection    = "preferences"
	prefsDocID         = "tagCounts"
)

func sessionsPath(userID string) string {
	return docstore.Join(usersCollection, userID, sessionsCollection)
}

func sessionPath(userID, sessionID string) string {
	return docstore.Join(sessionsPath(userID), sessionID)
}

func preferencesPath(userID string) string {
	return docstore.Join(usersCollection, userID, prefsCollection, prefsDocID)
}

// sessionDoc is the persisted shape of a session; the id is the last path segment.
type sessionDoc struct {
	Text         string                    `json:"text"`
	CreatedAt    time.Time                 `json:"createdAt"`
	Analysis     *model.Analysis           `json:"analysis"`
	PreviousTips []model.PreviousTipsBatch `json:"previousTips"`
	Generation   int64                     `json:"generation"`
	// Counted holds countKey entries for right swipes already added to preferences.
	Counted map[string]bool `json:"counted,omitempty"`
}

func (d *sessionDoc) toModel(id string) *model.Session {
	prev := d.PreviousTips
	if prev == nil {
		prev = []model.PreviousTipsBatch{}
	}
	return &model.Session{
		ID:           id,
		Text:         d.Text,
		CreatedAt:    d.CreatedAt,
		Analysis:     d.Analysis,
		PreviousTips: prev,
		Generation:   d.Generation,
	}
}

type preferencesDoc struct {
	TagCounts model.TagCounts `json:"tagCounts"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func decode(doc *docstore.Document, v any) error {
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", doc.Path, err)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Options tunes the optimistic-concurrency retry loop.
type Options struct {
	// MaxAttempts bounds how many times a mutation is re-applied after a version conflict.
	MaxAttempts    uint64
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Now            func() time.Time
	NewID          func() string
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 5
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 10 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 200 * time.Millisecond
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// errNoChange lets a mutation skip the write while still succeeding.
var errNoChange = errors.New("no change")

// mutate applies fn to a fresh read of the document and writes it back with a version check.
// On a version conflict the whole read-modify-write is retried with backoff; once attempts are
// exhausted model.ErrConflict is returned. Any other error from fn aborts without writing.
func mutate[T any](ctx context.Context, ds docstore.Store, opts Options, log zerolog.Logger, path string, fn func(*T) error) (*T, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = opts.InitialBackoff
	exp.MaxInterval = opts.MaxBackoff
	exp.Multiplier = 2
	var b backoff.BackOff = backoff.WithMaxRetries(exp, opts.MaxAttempts-1)
	b = backoff.WithContext(b, ctx)

	var result *T
	attempt := 0
	op := func() error {
		attempt++
		doc, err := ds.Get(ctx, path)
		if err != nil {
			return backoff.Permanent(err)
		}
		var v T
		if err := decode(doc, &v); err != nil {
			return backoff.Permanent(err)
		}
		if err := fn(&v); err != nil {
			if errors.Is(err, errNoChange) {
				result = &v
				return nil
			}
			return backoff.Permanent(err)
		}
		data, err := encode(&v)
		if err != nil {
			return backoff.Permanent(err)
		}
		if _, err := ds.Update(ctx, path, data, doc.Version); err != nil {
			if errors.Is(err, model.ErrConflict) {
				log.Debug().Str("path", path).Int("attempt", attempt).Msg("version conflict, retrying")
				metrics.ConflictRetriesTotal.Inc()
				return err
			}
			return backoff.Permanent(err)
		}
		result = &v
		return nil
	}
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return result, nil
}
