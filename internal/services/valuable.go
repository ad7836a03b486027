package services

import (
	"context"

	"github.com/sandilya-stack/coach-server/internal/model"
)

// ValuableTips lists every right-swiped tip across the user's sessions, current tips before
// archived batches. Duplicates across batches are kept.
func (s *CoachService) ValuableTips(ctx context.Context, userID string) ([]*model.ValuableTip, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	sessions, err := s.store.Sessions().All(ctx, userID)
	if err != nil {
		return nil, err
	}
	return CollectValuableTips(sessions), nil
}

// CollectValuableTips is the pure aggregation step over already-loaded sessions.
func CollectValuableTips(sessions []*model.Session) []*model.ValuableTip {
	out := []*model.ValuableTip{}
	add := func(sess *model.Session, tips []model.Tip) {
		for _, t := range tips {
			if !t.SwipedRight() {
				continue
			}
			out = append(out, &model.ValuableTip{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Tag:         t.Tag,
				Category:    t.Category,
				SessionID:   sess.ID,
				SessionText: sess.Text,
			})
		}
	}
	for _, sess := range sessions {
		if sess.Analysis != nil {
			add(sess, sess.Analysis.Tips)
		}
		for _, b := range sess.PreviousTips {
			add(sess, b.Tips)
		}
	}
	return out
}
