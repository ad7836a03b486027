package client

import "time"

// SwipeDirection is "left" or "right".
type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
)

// TagCounts maps a tag name to the number of right-swiped tips carrying it.
type TagCounts map[string]int

type Tip struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Tag            string          `json:"tag"`
	Category       string          `json:"category"`
	Priority       int             `json:"priority"`
	TimeEstimate   string          `json:"timeEstimate"`
	ActionType     string          `json:"actionType"`
	SwipeDirection *SwipeDirection `json:"swipeDirection"`
}

type Analysis struct {
	Empathy            string   `json:"empathy"`
	IdentifiedProblems []string `json:"identifiedProblems"`
	Tips               []Tip    `json:"tips"`
}

// PreviousTipsBatch is a set of tips archived by a regenerate.
type PreviousTipsBatch struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Tips        []Tip     `json:"tips"`
}

type Session struct {
	ID           string              `json:"id"`
	Text         string              `json:"text"`
	CreatedAt    time.Time           `json:"createdAt"`
	Analysis     *Analysis           `json:"analysis"`
	PreviousTips []PreviousTipsBatch `json:"previousTips"`
}

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

// SwipeOutcome carries TagCount only for right swipes.
type SwipeOutcome struct {
	Success  bool `json:"success"`
	TagCount *int `json:"tagCount,omitempty"`
}

// ValuableTip is a right-swiped tip with the session it came from.
type ValuableTip struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	Category    string `json:"category"`
	SessionID   string `json:"sessionId"`
	SessionText string `json:"sessionText"`
}
