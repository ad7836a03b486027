package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandilya-stack/coach-server/internal/analysis"
	"github.com/sandilya-stack/coach-server/internal/model"
)

func TestMockOutputPassesAnalyzerValidation(t *testing.T) {
	counts := model.DefaultTagCounts()
	counts[model.TagSocial] = 4
	counts[model.TagTimer] = 1

	a, err := analysis.New(New(), zerolog.Nop(), analysis.Options{}).Analyze(context.Background(), "help", counts)
	require.NoError(t, err)
	require.Len(t, a.Tips, 4)
	assert.Equal(t, model.TagSocial, a.Tips[0].Tag)
	assert.Equal(t, model.TagTimer, a.Tips[1].Tag)
	assert.NotEmpty(t, a.Empathy)
}

func TestMockIDsDifferPerCall(t *testing.T) {
	g := New()
	an := analysis.New(g, zerolog.Nop(), analysis.Options{})

	first, err := an.Analyze(context.Background(), "x", nil)
	require.NoError(t, err)
	second, err := an.Analyze(context.Background(), "x", nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.Tips[0].ID, second.Tips[0].ID)
	assert.Equal(t, int64(2), g.Calls())
}

func TestMockInjectedError(t *testing.T) {
	g := New()
	g.SetErr(errors.New("offline"))
	_, err := analysis.New(g, zerolog.Nop(), analysis.Options{}).Analyze(context.Background(), "x", nil)
	assert.ErrorIs(t, err, model.ErrUpstream)
}
