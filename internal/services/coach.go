package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/sandilya-stack/coach-server/internal/metrics"
	"github.com/sandilya-stack/coach-server/internal/model"
	"github.com/sandilya-stack/coach-server/internal/store"
)

// Analyzer produces an analysis for a brain dump; implemented by analysis.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, text string, counts model.TagCounts) (*model.Analysis, error)
}

const DefaultMaxTextLength = 10000

type Options struct {
	MaxTextLength int
}

type CoachService struct {
	store    store.Store
	analyzer Analyzer
	log      zerolog.Logger
	maxText  int
}

func NewCoachService(s store.Store, a Analyzer, log zerolog.Logger, opts Options) *CoachService {
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = DefaultMaxTextLength
	}
	return &CoachService{
		store:    s,
		analyzer: a,
		log:      log.With().Str("component", "coach").Logger(),
		maxText:  opts.MaxTextLength,
	}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId is required", model.ErrValidation)
	}
	return nil
}

func (s *CoachService) CreateSession(ctx context.Context, userID, text string) (*model.CreatedSession, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", model.ErrValidation)
	}
	if n := utf8.RuneCountInString(text); n > s.maxText {
		return nil, fmt.Errorf("%w: text exceeds %d characters", model.ErrValidation, s.maxText)
	}
	created, err := s.store.Sessions().Create(ctx, userID, text)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Str("session_id", created.ID).Msg("session created")
	return created, nil
}

func (s *CoachService) GetSession(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.Sessions().Get(ctx, userID, sessionID)
}

func (s *CoachService) ListSessions(ctx context.Context, userID string) ([]*model.SessionSummary, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.Sessions().List(ctx, userID)
}

// AnalyzeSession runs the analyzer on the session text and stores the result.
// The write is rejected with model.ErrConflict if the session was regenerated meanwhile.
func (s *CoachService) AnalyzeSession(ctx context.Context, userID, sessionID string) (*model.Analysis, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	sess, err := s.store.Sessions().Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.analyzeAndStore(ctx, userID, sess)
}

func (s *CoachService) analyzeAndStore(ctx context.Context, userID string, sess *model.Session) (*model.Analysis, error) {
	counts, err := s.store.Preferences().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	a, err := s.analyzer.Analyze(ctx, sess.Text, counts)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("session_id", sess.ID).Msg("analysis failed")
		return nil, err
	}
	if err := s.store.Sessions().SetAnalysisIf(ctx, userID, sess.ID, a, sess.Generation); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Str("session_id", sess.ID).Int("tips", len(a.Tips)).Msg("analysis stored")
	return a, nil
}

// SwipeTip records the user's judgment on a tip. A right swipe counts toward the tip's tag
// once; re-swiping an already right-swiped tip reports the current count without incrementing.
// When the increment fails the claim on the tip is released so a retried swipe counts.
func (s *CoachService) SwipeTip(ctx context.Context, userID, sessionID, tipID string, dir model.SwipeDirection) (*model.SwipeOutcome, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: direction must be left or right", model.ErrValidation)
	}
	res, err := s.store.Sessions().UpdateTipSwipe(ctx, userID, sessionID, tipID, dir)
	if err != nil {
		return nil, err
	}
	metrics.SwipesTotal.WithLabelValues(string(dir)).Inc()
	out := &model.SwipeOutcome{Success: true}
	if dir != model.SwipeRight || res.Tag == "" {
		s.log.Debug().Str("user_id", userID).Str("session_id", sessionID).Str("tip_id", tipID).Str("direction", string(dir)).Msg("tip swiped")
		return out, nil
	}

	var n int
	if res.Claimed {
		n, err = s.store.Preferences().Increment(ctx, userID, res.Tag)
		if err != nil {
			if rerr := s.store.Sessions().ReleaseSwipeCount(context.WithoutCancel(ctx), userID, sessionID, tipID); rerr != nil {
				s.log.Error().Err(rerr).Str("user_id", userID).Str("session_id", sessionID).Str("tip_id", tipID).
					Msg("preference increment failed and swipe claim could not be released")
			}
			return nil, err
		}
	} else {
		counts, err := s.store.Preferences().Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		n = counts[res.Tag]
	}
	out.TagCount = &n
	s.log.Info().Str("user_id", userID).Str("session_id", sessionID).Str("tip_id", tipID).
		Str("tag", string(res.Tag)).Int("tag_count", n).Msg("tip swiped right")
	return out, nil
}

// RegenerateTips archives the current tips and asks for a fresh analysis. The archive is
// committed first; if analysis fails or is cancelled the session stays without an analysis.
func (s *CoachService) RegenerateTips(ctx context.Context, userID, sessionID string) (*model.Analysis, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	sess, err := s.store.Sessions().Regenerate(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Str("session_id", sessionID).Int("batches", len(sess.PreviousTips)).Msg("tips archived")
	return s.analyzeAndStore(ctx, userID, sess)
}

func (s *CoachService) GetPreferences(ctx context.Context, userID string) (model.TagCounts, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.Preferences().Get(ctx, userID)
}
