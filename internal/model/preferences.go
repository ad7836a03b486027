package model

import "time"

// TagCounts maps every tag to the number of times the user accepted a tip with it.
type TagCounts map[Tag]int

// DefaultTagCounts returns all nine tags mapped to zero.
func DefaultTagCounts() TagCounts {
	tc := make(TagCounts, len(allTags))
	for _, t := range allTags {
		tc[t] = 0
	}
	return tc
}

// Normalize returns a copy holding exactly the nine known tags, none negative.
func (tc TagCounts) Normalize() TagCounts {
	out := DefaultTagCounts()
	for t, n := range tc {
		if !t.Valid() {
			continue
		}
		if n < 0 {
			n = 0
		}
		out[t] = n
	}
	return out
}

// Complete reports whether all nine tags are present and non-negative.
func (tc TagCounts) Complete() bool {
	for _, t := range allTags {
		n, ok := tc[t]
		if !ok || n < 0 {
			return false
		}
	}
	return true
}

// Preferences is the per-user counters document.
type Preferences struct {
	TagCounts TagCounts `json:"tagCounts"`
	UpdatedAt time.Time `json:"updatedAt"`
}
