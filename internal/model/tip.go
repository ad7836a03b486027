package model

import (
	"fmt"
	"regexp"
	"strings"
)

// IDPattern is the id shape accepted in request paths for users, sessions and tips.
var IDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,128}$`)

// ValidID reports whether id can be addressed through a request path.
func ValidID(id string) bool { return IDPattern.MatchString(id) }

// Tag describes the kind of coping action a tip represents.
type Tag string

const (
	TagBreak       Tag = "break"
	TagMovement    Tag = "movement"
	TagBreathe     Tag = "breathe"
	TagSimplify    Tag = "simplify"
	TagEnvironment Tag = "environment"
	TagSocial      Tag = "social"
	TagTimer       Tag = "timer"
	TagReward      Tag = "reward"
	TagAcceptance  Tag = "acceptance"
)

var allTags = []Tag{
	TagBreak, TagMovement, TagBreathe, TagSimplify, TagEnvironment,
	TagSocial, TagTimer, TagReward, TagAcceptance,
}

// AllTags returns the nine tags in their canonical order.
func AllTags() []Tag {
	out := make([]Tag, len(allTags))
	copy(out, allTags)
	return out
}

func (t Tag) Valid() bool {
	for _, v := range allTags {
		if t == v {
			return true
		}
	}
	return false
}

// Category is the timeframe classification of a tip.
type Category string

const (
	CategoryImmediate Category = "immediate"
	CategoryHabit     Category = "habit"
	CategoryMindset   Category = "mindset"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryImmediate, CategoryHabit, CategoryMindset:
		return true
	}
	return false
}

type ActionType string

const (
	ActionNone     ActionType = "none"
	ActionTimer    ActionType = "timer"
	ActionReminder ActionType = "reminder"
	ActionMessage  ActionType = "message"
	ActionSave     ActionType = "save"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionNone, ActionTimer, ActionReminder, ActionMessage, ActionSave:
		return true
	}
	return false
}

// SwipeDirection is the user's binary judgment on a tip.
type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
)

func (d SwipeDirection) Valid() bool {
	return d == SwipeLeft || d == SwipeRight
}

// ParseSwipeDirection accepts "left" or "right" (case-insensitive).
func ParseSwipeDirection(s string) (SwipeDirection, error) {
	d := SwipeDirection(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: direction must be left or right, got %q", ErrValidation, s)
	}
	return d, nil
}

// Tip is one suggested action. SwipeDirection is nil until the user swipes it.
type Tip struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Tag            Tag             `json:"tag"`
	Category       Category        `json:"category"`
	Priority       int             `json:"priority"`
	TimeEstimate   string          `json:"timeEstimate"`
	ActionType     ActionType      `json:"actionType"`
	SwipeDirection *SwipeDirection `json:"swipeDirection"`
}

// SwipedRight reports whether the user marked the tip as helpful.
func (t Tip) SwipedRight() bool {
	return t.SwipeDirection != nil && *t.SwipeDirection == SwipeRight
}

// Validate checks the tip against the fixed schema.
func (t Tip) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: tip id is required", ErrValidation)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: tip %s: title is required", ErrValidation, t.ID)
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("%w: tip %s: description is required", ErrValidation, t.ID)
	}
	if !t.Tag.Valid() {
		return fmt.Errorf("%w: tip %s: unknown tag %q", ErrValidation, t.ID, t.Tag)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: tip %s: unknown category %q", ErrValidation, t.ID, t.Category)
	}
	if !t.ActionType.Valid() {
		return fmt.Errorf("%w: tip %s: unknown actionType %q", ErrValidation, t.ID, t.ActionType)
	}
	if t.SwipeDirection != nil && !t.SwipeDirection.Valid() {
		return fmt.Errorf("%w: tip %s: unknown swipeDirection %q", ErrValidation, t.ID, *t.SwipeDirection)
	}
	return nil
}

// CountSwipedRight counts the right-swiped tips in a list.
func CountSwipedRight(tips []Tip) int {
	n := 0
	for _, t := range tips {
		if t.SwipedRight() {
			n++
		}
	}
	return n
}
