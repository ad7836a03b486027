package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandilya-stack/coach-server/internal/model"
)

func TestValuableTipsAcrossCurrentAndHistory(t *testing.T) {
	svc, _ := newService(t, &fakeAnalyzer{})
	ctx := context.Background()

	a, analysisA := createAnalyzed(t, svc, "session A")
	b, analysisB := createAnalyzed(t, svc, "session B")

	_, err := svc.SwipeTip(ctx, user, a.ID, analysisA.Tips[0].ID, model.SwipeRight)
	require.NoError(t, err)
	_, err = svc.SwipeTip(ctx, user, b.ID, analysisB.Tips[2].ID, model.SwipeRight)
	require.NoError(t, err)
	_, err = svc.RegenerateTips(ctx, user, b.ID)
	require.NoError(t, err)

	tips, err := svc.ValuableTips(ctx, user)
	require.NoError(t, err)
	require.Len(t, tips, 2)

	bySession := map[string]*model.ValuableTip{}
	for _, tp := range tips {
		bySession[tp.SessionID] = tp
	}
	require.Contains(t, bySession, a.ID)
	require.Contains(t, bySession, b.ID)
	assert.Equal(t, "session A", bySession[a.ID].SessionText)
	assert.Equal(t, analysisA.Tips[0].ID, bySession[a.ID].ID)
	assert.Equal(t, "session B", bySession[b.ID].SessionText)
	assert.Equal(t, analysisB.Tips[2].Tag, bySession[b.ID].Tag)
}

func TestValuableTipsEmpty(t *testing.T) {
	svc, _ := newService(t, &fakeAnalyzer{})
	tips, err := svc.ValuableTips(context.Background(), user)
	require.NoError(t, err)
	assert.NotNil(t, tips)
	assert.Empty(t, tips)
}

func TestCollectValuableTipsKeepsDuplicatesAndOrder(t *testing.T) {
	right := model.SwipeRight
	left := model.SwipeLeft
	tip := func(id string, d *model.SwipeDirection) model.Tip {
		return model.Tip{ID: id, Tag: model.TagBreak, Category: model.CategoryHabit, SwipeDirection: d}
	}
	sess := &model.Session{
		ID:       "s1",
		Text:     "text",
		Analysis: &model.Analysis{Tips: []model.Tip{tip("cur", &right), tip("no", &left)}},
		PreviousTips: []model.PreviousTipsBatch{
			{Tips: []model.Tip{tip("dup", &right), tip("none", nil)}},
			{Tips: []model.Tip{tip("dup", &right)}},
		},
	}

	got := CollectValuableTips([]*model.Session{sess})
	ids := make([]string, 0, len(got))
	for _, v := range got {
		ids = append(ids, v.ID)
		assert.Equal(t, "s1", v.SessionID)
	}
	assert.Equal(t, []string{"cur", "dup", "dup"}, ids)
}
