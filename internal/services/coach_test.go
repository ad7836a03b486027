package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandilya-stack/coach-server/internal/docstore/memory"
	"github.com/sandilya-stack/coach-server/internal/model"
	"github.com/sandilya-stack/coach-server/internal/store"
)

const user = "user-1"

// --- Fakes ---

type fakeAnalyzer struct {
	calls  int
	err    error
	before func() // runs before the analysis is returned
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string, counts model.TagCounts) (*model.Analysis, error) {
	f.calls++
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrUpstream, err)
	}
	tags := []model.Tag{model.TagBreathe, model.TagSimplify, model.TagSocial}
	tips := make([]model.Tip, 0, len(tags))
	for i, tag := range tags {
		tips = append(tips, model.Tip{
			ID:           fmt.Sprintf("tip_%d_%d", f.calls, i+1),
			Title:        string(tag),
			Description:  "do " + string(tag),
			Tag:          tag,
			Category:     model.CategoryImmediate,
			Priority:     i + 1,
			TimeEstimate: "1 min",
			ActionType:   model.ActionNone,
		})
	}
	return &model.Analysis{Empathy: "I hear you.", IdentifiedProblems: []string{text}, Tips: tips}, nil
}

func newService(t *testing.T, a Analyzer) (*CoachService, store.Store) {
	t.Helper()
	st := store.New(memory.New(), zerolog.Nop(), store.Options{InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	return NewCoachService(st, a, zerolog.Nop(), Options{MaxTextLength: 50}), st
}

func createAnalyzed(t *testing.T, svc *CoachService, text string) (*model.CreatedSession, *model.Analysis) {
	t.Helper()
	created, err := svc.CreateSession(context.Background(), user, text)
	require.NoError(t, err)
	a, err := svc.AnalyzeSession(context.Background(), user, created.ID)
	require.NoError(t, err)
	return created, a
}

func TestCreateSessionValidation(t *testing.T) {
	svc, _ := newService(t, &fakeAnalyzer{})
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, user, "   ")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.CreateSession(ctx, user, strings.Repeat("x", 51))
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.CreateSession(ctx, "", "text")
	assert.ErrorIs(t, err, model.ErrValidation)

	created, err := svc.CreateSession(ctx, user, "  stuck on taxes  ")
	require.NoError(t, err)
	assert.Equal(t, "stuck on taxes", created.Text)
}

func TestAnalyzeSessionStoresAnalysis(t *testing.T) {
	svc, _ := newService(t, &fakeAnalyzer{})
	created, a := createAnalyzed(t, svc, "stuck")

	got, err := svc.GetSession(context.Background(), user, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, a.Tips, got.Analysis.Tips)

	list, err := svc.ListSessions(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].HasAnalysis)
}

func TestAnalyzeSessionNotFound(t *testing.T) {
	an := &fakeAnalyzer{}
	svc, _ := newService(t, an)
	_, err := svc.AnalyzeSession(context.Background(), user, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Zero(t, an.calls)
}

func TestAnalyzeSessionUpstreamFailureLeavesNoAnalysis(t *testing.T) {
	an := &fakeAnalyzer{err: fmt.Errorf("%w: timeout", model.ErrUpstream)}
	svc, _ := newService(t, an)
	created, err := svc.CreateSession(context.Background(), user, "stuck")
	require.NoError(t, err)

	_, err = svc.AnalyzeSession(context.Background(), user, created.ID)
	assert.ErrorIs(t, err, model.ErrUpstream)

	got, err := svc.GetSession(context.Background(), user, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Analysis)
}

func TestLeftSwipeNeverIncrements(t *testing.T) {
	svc, _ := newService(t, &fakeAnalyzer{})
	ctx := context.Background()
	created, a := createAnalyzed(t, svc, "stuck")

	before, err := svc.GetPreferences(ctx, user)
	require.NoError(t, err)

	for _, tp := range a.Tips {
		out, err := svc.SwipeTip(ctx, user, created.ID, tp.ID, model.SwipeLeft)
		require.NoError(t, err)
		assert.True(t, out.Success)
		assert.Nil(t, out.TagCount)
	}

	after, err := svc.GetPreferences(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRightSwipeIncrementsOncePerTip(t *testing.T) {
	svc, _ := newService(t, &fakeAnalyzer{})
	ctx := context.Background()
	created, a := createAnalyzed(t, svc, "stuck")
	first := a.Tips[0]

	out, err := svc.SwipeTip(ctx, user, created.ID, first.ID, model.SwipeRight)
	require.NoError(t, err)
	require.NotNil(t, out.TagCount)
	assert.Equal(t, 1, *out.TagCount)

	// repeated right swipe reports but does not double count
	out, err = svc.SwipeTip(ctx, user, created.ID, first.ID, model.SwipeRight)
	require.NoError(t, err)
	require.NotNil(t, out.TagCount)
	assert.Equal(t, 1, *out.TagCount)

	// left then right counts again
	_, err = svc.SwipeTip(ctx, user, created.ID, first.ID, model.SwipeLeft)
	require.NoError(t, err)
	out, err = svc.SwipeTip(ctx, user, created.ID, first.ID, model.SwipeRight)
	require.NoError(t, err)
	assert.Equal(t, 2, *out.TagCount)

	counts, err := svc.GetPreferences(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[first.Tag])
}

func TestSwipeTipNotFound(t *testing.T) {
	svc, _ := newService(t, &fakeAnalyzer{})
	ctx := context.Background()
	created, _ := createAnalyzed(t, svc, "stuck")

	_, err := svc.SwipeTip(ctx, user, "missing-session", "t1", model.SwipeLeft)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.SwipeTip(ctx, user, created.ID, "missing-tip", model.SwipeRight)
	assert.ErrorIs(t, err, model.ErrNotFound)

	counts, err := svc.GetPreferences(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTagCounts(), counts)
}

func TestSwipeTipRejectsInvalidDirection(t *testing.T) {
	svc, _ := newService(t, &fakeAnalyzer{})
	_, err := svc.SwipeTip(context.Background(), user, "s", "t", "down")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRegenerateArchivesAndReanalyzes(t *testing.T) {
	svc, _ := newService(t, &fakeAnalyzer{})
	ctx := context.Background()
	created, first := createAnalyzed(t, svc, "stuck")

	_, err := svc.SwipeTip(ctx, user, created.ID, first.Tips[1].ID, model.SwipeRight)
	require.NoError(t, err)

	second, err := svc.RegenerateTips(ctx, user, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Tips[0].ID, second.Tips[0].ID)

	got, err := svc.GetSession(ctx, user, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, second.Tips, got.Analysis.Tips)
	require.Len(t, got.PreviousTips, 1)
	assert.True(t, got.PreviousTips[0].Tips[1].SwipedRight())

	// archived tips stay swipeable
	_, err = svc.SwipeTip(ctx, user, created.ID, first.Tips[0].ID, model.SwipeRight)
	require.NoError(t, err)
}

func TestRegenerateFailureLeavesNoAnalysis(t *testing.T) {
	an := &fakeAnalyzer{}
	svc, _ := newService(t, an)
	ctx := context.Background()
	created, _ := createAnalyzed(t, svc, "stuck")

	an.err = fmt.Errorf("%w: quota", model.ErrUpstream)
	_, err := svc.RegenerateTips(ctx, user, created.ID)
	assert.ErrorIs(t, err, model.ErrUpstream)

	got, err := svc.GetSession(ctx, user, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Analysis)
	assert.Len(t, got.PreviousTips, 1)
}

func TestRegenerateCancelledLeavesNoAnalysis(t *testing.T) {
	an := &fakeAnalyzer{}
	svc, _ := newService(t, an)
	created, _ := createAnalyzed(t, svc, "stuck")

	ctx, cancel := context.WithCancel(context.Background())
	an.before = cancel
	_, err := svc.RegenerateTips(ctx, user, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	got, err := svc.GetSession(context.Background(), user, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Analysis)
	assert.Len(t, got.PreviousTips, 1)
}

func TestStaleAnalysisIsRejectedAfterRegenerate(t *testing.T) {
	an := &fakeAnalyzer{}
	svc, st := newService(t, an)
	ctx := context.Background()
	created, _ := createAnalyzed(t, svc, "stuck")

	// a regenerate commits while this analyze call is in flight
	an.before = func() {
		an.before = nil
		_, err := st.Sessions().Regenerate(ctx, user, created.ID)
		require.NoError(t, err)
	}
	_, err := svc.AnalyzeSession(ctx, user, created.ID)
	assert.ErrorIs(t, err, model.ErrConflict)

	got, err := svc.GetSession(ctx, user, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Analysis)
	assert.Len(t, got.PreviousTips, 1)
}

func TestRegenerateMissingSession(t *testing.T) {
	an := &fakeAnalyzer{}
	svc, _ := newService(t, an)
	_, err := svc.RegenerateTips(context.Background(), user, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Zero(t, an.calls)
}

type failingIncrements struct {
	store.Preferences
	remaining int
}

func (p *failingIncrements) Increment(ctx context.Context, userID string, tag model.Tag) (int, error) {
	if p.remaining > 0 {
		p.remaining--
		return 0, fmt.Errorf("preferences: %w", model.ErrConflict)
	}
	return p.Preferences.Increment(ctx, userID, tag)
}

type storeWithPrefs struct {
	store.Store
	prefs store.Preferences
}

func (s storeWithPrefs) Preferences() store.Preferences { return s.prefs }

func TestRightSwipeRetryCountsAfterFailedIncrement(t *testing.T) {
	base := store.New(memory.New(), zerolog.Nop(), store.Options{InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	prefs := &failingIncrements{Preferences: base.Preferences(), remaining: 1}
	svc := NewCoachService(storeWithPrefs{Store: base, prefs: prefs}, &fakeAnalyzer{}, zerolog.Nop(), Options{})
	ctx := context.Background()
	created, a := createAnalyzed(t, svc, "stuck")
	first := a.Tips[0]

	_, err := svc.SwipeTip(ctx, user, created.ID, first.ID, model.SwipeRight)
	require.ErrorIs(t, err, model.ErrConflict)

	out, err := svc.SwipeTip(ctx, user, created.ID, first.ID, model.SwipeRight)
	require.NoError(t, err)
	require.NotNil(t, out.TagCount)
	assert.Equal(t, 1, *out.TagCount)

	out, err = svc.SwipeTip(ctx, user, created.ID, first.ID, model.SwipeRight)
	require.NoError(t, err)
	assert.Equal(t, 1, *out.TagCount)
}
