package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sandilya-stack/coach-server/internal/docstore"
	"github.com/sandilya-stack/coach-server/internal/model"
)

type preferences struct {
	ds   docstore.Store
	opts Options
	log  zerolog.Logger
}

// materialize creates the all-zero document if it does not exist yet.
func (p *preferences) materialize(ctx context.Context, userID string) (*docstore.Document, error) {
	data, err := encode(&preferencesDoc{TagCounts: model.DefaultTagCounts(), UpdatedAt: p.opts.Now()})
	if err != nil {
		return nil, err
	}
	return p.ds.GetOrCreate(ctx, preferencesPath(userID), data)
}

func (p *preferences) Get(ctx context.Context, userID string) (model.TagCounts, error) {
	doc, err := p.materialize(ctx, userID)
	if err != nil {
		return nil, err
	}
	var pd preferencesDoc
	if err := decode(doc, &pd); err != nil {
		return nil, err
	}
	return pd.TagCounts.Normalize(), nil
}

func (p *preferences) Increment(ctx context.Context, userID string, tag model.Tag) (int, error) {
	if !tag.Valid() {
		return 0, fmt.Errorf("%w: unknown tag %q", model.ErrValidation, tag)
	}
	if _, err := p.materialize(ctx, userID); err != nil {
		return 0, err
	}
	pd, err := mutate(ctx, p.ds, p.opts, p.log, preferencesPath(userID), func(d *preferencesDoc) error {
		d.TagCounts = d.TagCounts.Normalize()
		d.TagCounts[tag]++
		d.UpdatedAt = p.opts.Now()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pd.TagCounts[tag], nil
}
