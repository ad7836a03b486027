package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sandilya-stack/coach-server/internal/model"
)

var tagMeanings = map[model.Tag]string{
	model.TagBreak:       "pausing or stepping away for a moment",
	model.TagMovement:    "physical activity or moving the body",
	model.TagBreathe:     "breathing exercises and calming techniques",
	model.TagSimplify:    "breaking work into smaller steps",
	model.TagEnvironment: "changing the physical surroundings",
	model.TagSocial:      "reaching out to other people for support",
	model.TagTimer:       "time-boxing and deadline techniques",
	model.TagReward:      "self-reward systems",
	model.TagAcceptance:  "self-compassion and acceptance",
}

const systemPromptHeader = `You are an empathetic ADHD coach. The user sends a brain dump: a stream of consciousness about what they are struggling with right now.

Respond with:
1. empathy: one or two short sentences acknowledging how they feel.
2. identifiedProblems: the concrete problems you noticed, as a list of short strings.
3. tips: between 3 and 5 practical tips.

Each tip has a tag from this list:
`

const systemPromptCategories = `
Each tip has a category:
- immediate: can be done right now, in under 5 minutes
- habit: something to build into a routine
- mindset: a shift in perspective

Each tip has an actionType: none, timer, reminder, message or save.
`

const systemPromptFormat = `
Order tips so the user's preferred tags come first. priority is an integer; lower values are shown first.

Reply with a single JSON object and nothing else:
{"empathy": string, "identifiedProblems": [string], "tips": [{"id": string, "title": string, "description": string, "tag": string, "category": string, "priority": integer, "timeEstimate": string, "actionType": string}]}
Tip ids must be unique within the response and use only letters, digits, "_" and "-" (for example "tip_1").`

// RankedTags orders tags by count descending; ties keep the canonical tag order.
func RankedTags(counts model.TagCounts) []model.Tag {
	tags := model.AllTags()
	sort.SliceStable(tags, func(i, j int) bool { return counts[tags[i]] > counts[tags[j]] })
	return tags
}

// BuildSystemPrompt renders the coaching instructions with the user's tag preferences.
func BuildSystemPrompt(counts model.TagCounts) string {
	var sb strings.Builder
	sb.WriteString(systemPromptHeader)
	for _, t := range model.AllTags() {
		fmt.Fprintf(&sb, "- %s: %s\n", t, tagMeanings[t])
	}
	sb.WriteString(systemPromptCategories)
	sb.WriteString("\nThe user found tips with these tags helpful this many times (higher = more helpful):\n")
	for _, t := range RankedTags(counts) {
		fmt.Fprintf(&sb, "  %s: %d\n", t, counts[t])
	}
	sb.WriteString(systemPromptFormat)
	return sb.String()
}
