package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dir(d SwipeDirection) *SwipeDirection { return &d }

func validTip(id string) Tip {
	return Tip{
		ID:           id,
		Title:        "Take five",
		Description:  "Step away from the screen for five minutes.",
		Tag:          TagBreak,
		Category:     CategoryImmediate,
		Priority:     1,
		TimeEstimate: "5 min",
		ActionType:   ActionTimer,
	}
}

func validAnalysis() *Analysis {
	return &Analysis{
		Empathy:            "That sounds like a lot.",
		IdentifiedProblems: []string{"overwhelm"},
		Tips:               []Tip{validTip("t1"), validTip("t2"), validTip("t3")},
	}
}

func TestAnalysisValidate(t *testing.T) {
	require.NoError(t, validAnalysis().Validate())

	cases := map[string]func(a *Analysis){
		"empty empathy":     func(a *Analysis) { a.Empathy = " " },
		"missing problems":  func(a *Analysis) { a.IdentifiedProblems = nil },
		"too few tips":      func(a *Analysis) { a.Tips = a.Tips[:2] },
		"too many tips":     func(a *Analysis) { a.Tips = append(a.Tips, validTip("t4"), validTip("t5"), validTip("t6")) },
		"duplicate id":      func(a *Analysis) { a.Tips[2].ID = "t1" },
		"unknown tag":       func(a *Analysis) { a.Tips[0].Tag = "nap" },
		"unknown category":  func(a *Analysis) { a.Tips[0].Category = "someday" },
		"unknown action":    func(a *Analysis) { a.Tips[0].ActionType = "call" },
		"missing title":     func(a *Analysis) { a.Tips[1].Title = "" },
		"bad swipe":         func(a *Analysis) { a.Tips[1].SwipeDirection = dir("up") },
		"missing tip id":    func(a *Analysis) { a.Tips[0].ID = "" },
		"missing desc text": func(a *Analysis) { a.Tips[0].Description = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := validAnalysis()
			mutate(a)
			err := a.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}

	var nilAnalysis *Analysis
	assert.ErrorIs(t, nilAnalysis.Validate(), ErrValidation)
}

func TestDefaultTagCounts(t *testing.T) {
	tc := DefaultTagCounts()
	assert.Len(t, tc, 9)
	for _, tag := range AllTags() {
		v, ok := tc[tag]
		assert.True(t, ok, tag)
		assert.Zero(t, v)
	}
	assert.True(t, tc.Complete())
}

func TestTagCountsNormalize(t *testing.T) {
	tc := TagCounts{TagBreathe: 3, TagSocial: -2, Tag("nap"): 7}
	assert.False(t, tc.Complete())

	n := tc.Normalize()
	assert.True(t, n.Complete())
	assert.Len(t, n, 9)
	assert.Equal(t, 3, n[TagBreathe])
	assert.Equal(t, 0, n[TagSocial])
	_, ok := n[Tag("nap")]
	assert.False(t, ok)
}

func TestSessionDerivedFields(t *testing.T) {
	a := validAnalysis()
	a.Tips[0].SwipeDirection = dir(SwipeRight)
	a.Tips[1].SwipeDirection = dir(SwipeLeft)

	old := validTip("t1")
	old.SwipeDirection = dir(SwipeRight)

	s := &Session{
		ID:           "s1",
		Text:         "too much to do",
		Analysis:     a,
		PreviousTips: []PreviousTipsBatch{{Tips: []Tip{old, validTip("t2")}}},
	}
	assert.True(t, s.HasAnalysis())
	assert.Equal(t, 2, s.HelpfulTipsCount())

	sum := s.Summary()
	assert.Equal(t, "s1", sum.ID)
	assert.True(t, sum.HasAnalysis)
	assert.Equal(t, 2, sum.HelpfulTipsCount)

	s.Analysis = nil
	assert.False(t, s.Summary().HasAnalysis)
	assert.Equal(t, 1, s.HelpfulTipsCount())
}

func TestParseSwipeDirection(t *testing.T) {
	d, err := ParseSwipeDirection(" Right ")
	require.NoError(t, err)
	assert.Equal(t, SwipeRight, d)

	_, err = ParseSwipeDirection("up")
	assert.ErrorIs(t, err, ErrValidation)
}
