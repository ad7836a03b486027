package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinTipsPerAnalysis = 3
	MaxTipsPerAnalysis = 5
)

// Analysis is the output of one generation cycle for a session.
type Analysis struct {
	Empathy            string   `json:"empathy"`
	IdentifiedProblems []string `json:"identifiedProblems"`
	Tips               []Tip    `json:"tips"`
}

// Validate checks the analysis shape. Tip ids must be unique within the batch.
func (a *Analysis) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: analysis is required", ErrValidation)
	}
	if strings.TrimSpace(a.Empathy) == "" {
		return fmt.Errorf("%w: empathy is required", ErrValidation)
	}
	if a.IdentifiedProblems == nil {
		return fmt.Errorf("%w: identifiedProblems is required", ErrValidation)
	}
	if n := len(a.Tips); n < MinTipsPerAnalysis || n > MaxTipsPerAnalysis {
		return fmt.Errorf("%w: expected %d-%d tips, got %d", ErrValidation, MinTipsPerAnalysis, MaxTipsPerAnalysis, n)
	}
	seen := make(map[string]struct{}, len(a.Tips))
	for _, t := range a.Tips {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate tip id %q", ErrValidation, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// PreviousTipsBatch is a frozen copy of an analysis' tips taken at regeneration time.
type PreviousTipsBatch struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Tips        []Tip     `json:"tips"`
}

// Session is the root aggregate of one brain dump.
type Session struct {
	ID           string              `json:"id"`
	Text         string              `json:"text"`
	CreatedAt    time.Time           `json:"createdAt"`
	Analysis     *Analysis           `json:"analysis"`
	PreviousTips []PreviousTipsBatch `json:"previousTips"`

	// Generation increments every time analysis is archived by a regeneration.
	Generation int64 `json:"-"`
}

// HasAnalysis reports whether the session is in the HasAnalysis state.
func (s *Session) HasAnalysis() bool { return s.Analysis != nil }

// HelpfulTipsCount counts right swipes across the current analysis and all archived batches.
func (s *Session) HelpfulTipsCount() int {
	n := 0
	if s.Analysis != nil {
		n += CountSwipedRight(s.Analysis.Tips)
	}
	for _, b := range s.PreviousTips {
		n += CountSwipedRight(b.Tips)
	}
	return n
}

// Summary derives the list view of a session.
func (s *Session) Summary() *SessionSummary {
	return &SessionSummary{
		ID:               s.ID,
		Text:             s.Text,
		CreatedAt:        s.CreatedAt,
		HasAnalysis:      s.HasAnalysis(),
		HelpfulTipsCount: s.HelpfulTipsCount(),
	}
}

// CreatedSession is the minimal view returned on creation.
type CreatedSession struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionSummary struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	CreatedAt        time.Time `json:"createdAt"`
	HasAnalysis      bool      `json:"hasAnalysis"`
	HelpfulTipsCount int       `json:"helpfulTipsCount"`
}

// ValuableTip is a right-swiped tip annotated with the session it came from.
type ValuableTip struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tag         Tag      `json:"tag"`
	Category    Category `json:"category"`
	SessionID   string   `json:"sessionId"`
	SessionText string   `json:"sessionText"`
}

// SwipeResult is what the session store reports after recording a swipe.
type SwipeResult struct {
	Tag      Tag
	Previous *SwipeDirection
	// Claimed is set when this right swipe must be added to preferences. The tip is marked
	// counted in the same write, so concurrent right swipes claim it once.
	Claimed bool
}

// SwipeOutcome is the caller-facing swipe result. TagCount is set only on right swipes.
type SwipeOutcome struct {
	Success  bool `json:"success"`
	TagCount *int `json:"tagCount,omitempty"`
}
