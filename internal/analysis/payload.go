package analysis

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/sandilya-stack/coach-server/internal/model"
)

// payload is the generator's wire shape. Snake-case aliases are accepted because some
// providers ignore the requested casing.
type payload struct {
	Empathy                 string       `json:"empathy"`
	IdentifiedProblems      []string     `json:"identifiedProblems"`
	IdentifiedProblemsSnake []string     `json:"identified_problems"`
	Tips                    []payloadTip `json:"tips"`
}

type payloadTip struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Tag             string   `json:"tag"`
	Category        string   `json:"category"`
	Priority        *float64 `json:"priority"`
	TimeEstimate    string   `json:"timeEstimate"`
	TimeEstimateSn  string   `json:"time_estimate"`
	ActionType      string   `json:"actionType"`
	ActionTypeSnake string   `json:"action_type"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// stripFences removes a surrounding markdown code fence, which chat models add despite instructions.
func stripFences(raw []byte) []byte {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```"))
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}

// safeTipIDs rewrites ids that cannot be used in a swipe path to tip_<n>, skipping any
// n already taken in the batch. Empty ids are left for validation to reject.
func safeTipIDs(tips []model.Tip) {
	taken := make(map[string]struct{}, len(tips))
	for _, t := range tips {
		taken[t.ID] = struct{}{}
	}
	n := 0
	for i := range tips {
		if tips[i].ID == "" || model.ValidID(tips[i].ID) {
			continue
		}
		for {
			n++
			id := fmt.Sprintf("tip_%d", n)
			if _, dup := taken[id]; !dup {
				taken[id] = struct{}{}
				tips[i].ID = id
				break
			}
		}
	}
}

// Parse decodes and validates a generator payload. Any swipe state in the payload is discarded;
// tips are returned unswiped and ordered by priority.
func Parse(raw []byte) (*model.Analysis, error) {
	var p payload
	if err := json.Unmarshal(stripFences(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: decode analysis payload: %v", model.ErrValidation, err)
	}

	a := &model.Analysis{
		Empathy:            p.Empathy,
		IdentifiedProblems: p.IdentifiedProblems,
		Tips:               make([]model.Tip, 0, len(p.Tips)),
	}
	if a.IdentifiedProblems == nil {
		a.IdentifiedProblems = p.IdentifiedProblemsSnake
	}
	for i, pt := range p.Tips {
		if pt.Priority == nil {
			return nil, fmt.Errorf("%w: tip %d: priority is required", model.ErrValidation, i)
		}
		if math.IsNaN(*pt.Priority) || math.IsInf(*pt.Priority, 0) {
			return nil, fmt.Errorf("%w: tip %d: priority must be a number", model.ErrValidation, i)
		}
		a.Tips = append(a.Tips, model.Tip{
			ID:           pt.ID,
			Title:        pt.Title,
			Description:  pt.Description,
			Tag:          model.Tag(pt.Tag),
			Category:     model.Category(pt.Category),
			Priority:     int(math.Round(*pt.Priority)),
			TimeEstimate: firstNonEmpty(pt.TimeEstimate, pt.TimeEstimateSn),
			ActionType:   model.ActionType(firstNonEmpty(pt.ActionType, pt.ActionTypeSnake)),
		})
	}
	safeTipIDs(a.Tips)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(a.Tips, func(i, j int) bool { return a.Tips[i].Priority < a.Tips[j].Priority })
	return a, nil
}
