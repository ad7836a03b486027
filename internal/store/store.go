package store

import (
	"context"

	"github.com/sandilya-stack/coach-server/internal/model"
)

// Store exposes persistence operations required by services.
// The document-backed implementation lives in this package (see New).
type Store interface {
	Sessions() Sessions
	Preferences() Preferences
}

// Sessions persists one document per brain-dump session, scoped per user.
type Sessions interface {
	Create(ctx context.Context, userID, text string) (*model.CreatedSession, error)
	Get(ctx context.Context, userID, sessionID string) (*model.Session, error)
	// List returns summaries, newest first.
	List(ctx context.Context, userID string) ([]*model.SessionSummary, error)
	// All returns full sessions in creation order.
	All(ctx context.Context, userID string) ([]*model.Session, error)
	SetAnalysis(ctx context.Context, userID, sessionID string, a *model.Analysis) error
	// SetAnalysisIf fails with model.ErrConflict if the session was regenerated after generation was observed.
	SetAnalysisIf(ctx context.Context, userID, sessionID string, a *model.Analysis, generation int64) error
	UpdateTipSwipe(ctx context.Context, userID, sessionID, tipID string, dir model.SwipeDirection) (*model.SwipeResult, error)
	// ReleaseSwipeCount undoes the claim taken by a right swipe whose preference increment failed,
	// so a retried swipe claims it again.
	ReleaseSwipeCount(ctx context.Context, userID, sessionID, tipID string) error
	// Regenerate archives the current tips and clears the analysis; it returns the resulting session.
	Regenerate(ctx context.Context, userID, sessionID string) (*model.Session, error)
}

// Preferences persists the per-user tag counters.
type Preferences interface {
	Get(ctx context.Context, userID string) (model.TagCounts, error)
	Increment(ctx context.Context, userID string, tag model.Tag) (int, error)
}
