package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sandilya-stack/coach-server/internal/docstore"
	"github.com/sandilya-stack/coach-server/internal/model"
)

// New returns a Store persisting sessions and preferences as documents in ds.
func New(ds docstore.Store, log zerolog.Logger, opts Options) Store {
	opts = opts.withDefaults()
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	return &documentStore{
		sessions: &sessions{ds: ds, opts: opts, log: log.With().Str("store", "sessions").Logger()},
		prefs:    &preferences{ds: ds, opts: opts, log: log.With().Str("store", "preferences").Logger()},
	}
}

type documentStore struct {
	sessions *sessions
	prefs    *preferences
}

func (s *documentStore) Sessions() Sessions       { return s.sessions }
func (s *documentStore) Preferences() Preferences { return s.prefs }

type sessions struct {
	ds   docstore.Store
	opts Options
	log  zerolog.Logger
}

func (s *sessions) Create(ctx context.Context, userID, text string) (*model.CreatedSession, error) {
	id := s.opts.NewID()
	doc := sessionDoc{
		Text:         text,
		CreatedAt:    s.opts.Now(),
		Analysis:     nil,
		PreviousTips: []model.PreviousTipsBatch{},
	}
	data, err := encode(&doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.ds.Create(ctx, sessionPath(userID, id), data); err != nil {
		return nil, err
	}
	return &model.CreatedSession{ID: id, Text: text, CreatedAt: doc.CreatedAt}, nil
}

func (s *sessions) Get(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	doc, err := s.ds.Get(ctx, sessionPath(userID, sessionID))
	if err != nil {
		return nil, err
	}
	var sd sessionDoc
	if err := decode(doc, &sd); err != nil {
		return nil, err
	}
	return sd.toModel(sessionID), nil
}

func (s *sessions) All(ctx context.Context, userID string) ([]*model.Session, error) {
	docs, err := s.ds.Query(ctx, sessionsPath(userID))
	if err != nil {
		return nil, err
	}
	out := make([]*model.Session, 0, len(docs))
	for _, d := range docs {
		var sd sessionDoc
		if err := decode(d, &sd); err != nil {
			return nil, err
		}
		out = append(out, sd.toModel(lastSegment(d.Path)))
	}
	return out, nil
}

func (s *sessions) List(ctx context.Context, userID string) ([]*model.SessionSummary, error) {
	all, err := s.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.SessionSummary, 0, len(all))
	for _, sess := range all {
		out = append(out, sess.Summary())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *sessions) SetAnalysis(ctx context.Context, userID, sessionID string, a *model.Analysis) error {
	_, err := mutate(ctx, s.ds, s.opts, s.log, sessionPath(userID, sessionID), func(d *sessionDoc) error {
		d.Analysis = a
		return nil
	})
	return err
}

func (s *sessions) SetAnalysisIf(ctx context.Context, userID, sessionID string, a *model.Analysis, generation int64) error {
	_, err := mutate(ctx, s.ds, s.opts, s.log, sessionPath(userID, sessionID), func(d *sessionDoc) error {
		if d.Generation != generation {
			return fmt.Errorf("session %s regenerated (generation %d, expected %d): %w", sessionID, d.Generation, generation, model.ErrConflict)
		}
		d.Analysis = a
		return nil
	})
	return err
}

// tipRef addresses a tip by the list it lives in; batch is -1 for the current analysis.
type tipRef struct {
	batch int
	index int
}

const currentBatch = -1

// locateTip scans the current analysis first, then archived batches oldest first.
// The first match wins since tip ids are only unique within one list.
func locateTip(d *sessionDoc, tipID string) (tipRef, bool) {
	if d.Analysis != nil {
		for i := range d.Analysis.Tips {
			if d.Analysis.Tips[i].ID == tipID {
				return tipRef{batch: currentBatch, index: i}, true
			}
		}
	}
	for b := range d.PreviousTips {
		for i := range d.PreviousTips[b].Tips {
			if d.PreviousTips[b].Tips[i].ID == tipID {
				return tipRef{batch: b, index: i}, true
			}
		}
	}
	return tipRef{}, false
}

// countKey names a tip within the session for the Counted set.
func countKey(ref tipRef, tipID string) string {
	if ref.batch == currentBatch {
		return "current/" + tipID
	}
	return fmt.Sprintf("%d/%s", ref.batch, tipID)
}

func (d *sessionDoc) tip(ref tipRef) *model.Tip {
	if ref.batch == currentBatch {
		return &d.Analysis.Tips[ref.index]
	}
	return &d.PreviousTips[ref.batch].Tips[ref.index]
}

func (s *sessions) UpdateTipSwipe(ctx context.Context, userID, sessionID, tipID string, dir model.SwipeDirection) (*model.SwipeResult, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: invalid swipe direction %q", model.ErrValidation, dir)
	}
	var res model.SwipeResult
	_, err := mutate(ctx, s.ds, s.opts, s.log, sessionPath(userID, sessionID), func(d *sessionDoc) error {
		ref, ok := locateTip(d, tipID)
		if !ok {
			return fmt.Errorf("tip %s in session %s: %w", tipID, sessionID, model.ErrNotFound)
		}
		t := d.tip(ref)
		res = model.SwipeResult{Tag: t.Tag, Previous: t.SwipeDirection}
		next := dir
		t.SwipeDirection = &next

		key := countKey(ref, tipID)
		switch {
		case dir == model.SwipeLeft:
			delete(d.Counted, key)
		case !d.Counted[key]:
			if d.Counted == nil {
				d.Counted = make(map[string]bool)
			}
			d.Counted[key] = true
			res.Claimed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *sessions) ReleaseSwipeCount(ctx context.Context, userID, sessionID, tipID string) error {
	_, err := mutate(ctx, s.ds, s.opts, s.log, sessionPath(userID, sessionID), func(d *sessionDoc) error {
		ref, ok := locateTip(d, tipID)
		if !ok {
			return fmt.Errorf("tip %s in session %s: %w", tipID, sessionID, model.ErrNotFound)
		}
		key := countKey(ref, tipID)
		if !d.Counted[key] {
			return errNoChange
		}
		delete(d.Counted, key)
		return nil
	})
	return err
}

func (s *sessions) Regenerate(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	d, err := mutate(ctx, s.ds, s.opts, s.log, sessionPath(userID, sessionID), func(d *sessionDoc) error {
		if d.Analysis == nil {
			return errNoChange
		}
		d.PreviousTips = append(d.PreviousTips, model.PreviousTipsBatch{
			GeneratedAt: s.opts.Now(),
			Tips:        d.Analysis.Tips,
		})
		archived := fmt.Sprintf("%d/", len(d.PreviousTips)-1)
		for key := range d.Counted {
			if id, ok := strings.CutPrefix(key, "current/"); ok {
				delete(d.Counted, key)
				d.Counted[archived+id] = true
			}
		}
		d.Analysis = nil
		d.Generation++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d.toModel(sessionID), nil
}

func lastSegment(path string) string {
	c := docstore.CollectionOf(path)
	if c == "" {
		return path
	}
	return path[len(c)+1:]
}
