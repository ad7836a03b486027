// Package mock is an offline analysis generator for local development and tests.
package mock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"

	"github.com/sandilya-stack/coach-server/internal/analysis"
	"github.com/sandilya-stack/coach-server/internal/model"
)

type catalogTip struct {
	title, description string
	category           model.Category
	timeEstimate       string
	actionType         model.ActionType
}

var catalog = map[model.Tag]catalogTip{
	model.TagBreak:       {"Step away for five minutes", "Stand up, leave the screen and come back when the timer ends.", model.CategoryImmediate, "5 min", model.ActionTimer},
	model.TagMovement:    {"Walk around the block", "A short walk resets attention better than another coffee.", model.CategoryImmediate, "10 min", model.ActionNone},
	model.TagBreathe:     {"Take a deep breath", "Pause for 30 seconds and breathe slowly to calm your nervous system.", model.CategoryImmediate, "30 sec", model.ActionTimer},
	model.TagSimplify:    {"Write the next step only", "Write down just the next ONE thing you need to do, not the whole list.", model.CategoryImmediate, "2 min", model.ActionSave},
	model.TagEnvironment: {"Clear your desk", "Move everything unrelated to the task out of sight.", model.CategoryHabit, "5 min", model.ActionNone},
	model.TagSocial:      {"Text a friend", "Tell someone what you are working on; saying it out loud helps.", model.CategoryImmediate, "2 min", model.ActionMessage},
	model.TagTimer:       {"Work for 15 minutes", "Set a timer and only commit to the first 15 minutes.", model.CategoryHabit, "15 min", model.ActionTimer},
	model.TagReward:      {"Plan a small reward", "Pick something you enjoy for when this block is done.", model.CategoryHabit, "1 min", model.ActionReminder},
	model.TagAcceptance:  {"Be kind to yourself", "Struggling to start is not a character flaw. Notice it and begin anyway.", model.CategoryMindset, "1 min", model.ActionNone},
}

// Generator returns TipsPerCall tips for the user's most preferred tags.
// Tip ids are unique per call so regenerated batches do not collide.
type Generator struct {
	TipsPerCall int

	mu    sync.Mutex
	err   error
	calls atomic.Int64
}

func New() *Generator {
	return &Generator{TipsPerCall: 4}
}

// SetErr makes subsequent calls fail with err; nil restores normal output.
func (g *Generator) SetErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Calls reports how many times Generate ran.
func (g *Generator) Calls() int64 { return g.calls.Load() }

func (g *Generator) Generate(ctx context.Context, p analysis.Prompt) ([]byte, error) {
	n := g.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	err := g.err
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	count := g.TipsPerCall
	if count < model.MinTipsPerAnalysis || count > model.MaxTipsPerAnalysis {
		count = model.MaxTipsPerAnalysis
	}

	ranked := analysis.RankedTags(p.TagCounts)
	tips := make([]map[string]any, 0, count)
	for i, tag := range ranked[:count] {
		c := catalog[tag]
		tips = append(tips, map[string]any{
			"id":           fmt.Sprintf("tip_%d_%d", n, i+1),
			"title":        c.title,
			"description":  c.description,
			"tag":          tag,
			"category":     c.category,
			"priority":     i + 1,
			"timeEstimate": c.timeEstimate,
			"actionType":   c.actionType,
		})
	}
	return json.Marshal(map[string]any{
		"empathy":            "That sounds like a lot to carry right now. Let's make the next step small.",
		"identifiedProblems": []string{"Feeling overwhelmed", "Trouble getting started"},
		"tips":               tips,
	})
}
