// Package analysis turns a brain dump plus the user's tag preferences into a validated Analysis
// by delegating to a text Generator (Gemini, an OpenAI-compatible API, or the offline mock).
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/sandilya-stack/coach-server/internal/metrics"
	"github.com/sandilya-stack/coach-server/internal/model"
)

// Prompt is the input handed to a Generator. TagCounts is passed alongside the rendered
// prompt so offline generators can rank without parsing text.
type Prompt struct {
	System    string
	User      string
	TagCounts model.TagCounts
}

// Generator produces a raw JSON payload for a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) ([]byte, error)
}

// Options controls retries of failed generator calls. MaxRetries of 0 disables retrying.
type Options struct {
	MaxRetries     uint64
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type Analyzer struct {
	gen  Generator
	log  zerolog.Logger
	opts Options
}

func New(gen Generator, log zerolog.Logger, opts Options) *Analyzer {
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 5 * time.Second
	}
	return &Analyzer{gen: gen, log: log.With().Str("component", "analyzer").Logger(), opts: opts}
}

// Analyze asks the generator for an analysis of text biased by counts.
// Generator failures are reported as model.ErrUpstream, malformed output as model.ErrValidation.
func (a *Analyzer) Analyze(ctx context.Context, text string, counts model.TagCounts) (*model.Analysis, error) {
	counts = counts.Normalize()
	p := Prompt{System: BuildSystemPrompt(counts), User: text, TagCounts: counts}

	start := time.Now()
	defer func() { metrics.AnalysisDuration.Observe(time.Since(start).Seconds()) }()

	raw, err := a.generate(ctx, p)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("upstream").Inc()
		return nil, err
	}
	out, err := Parse(raw)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("invalid").Inc()
		a.log.Warn().Err(err).Int("payload_bytes", len(raw)).Msg("generator returned invalid analysis")
		return nil, err
	}
	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	return out, nil
}

func (a *Analyzer) generate(ctx context.Context, p Prompt) ([]byte, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = a.opts.InitialBackoff
	exp.MaxInterval = a.opts.MaxBackoff
	b := backoff.WithContext(backoff.WithMaxRetries(exp, a.opts.MaxRetries), ctx)

	var raw []byte
	attempt := 0
	op := func() error {
		attempt++
		out, err := a.gen.Generate(ctx, p)
		if err != nil {
			err = fmt.Errorf("%w: %w", model.ErrUpstream, err)
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			a.log.Debug().Err(err).Int("attempt", attempt).Msg("generator call failed")
			return err
		}
		raw = out
		return nil
	}
	if err := backoff.Retry(op, b); err != nil {
		if !errors.Is(err, model.ErrUpstream) {
			err = fmt.Errorf("%w: %w", model.ErrUpstream, err)
		}
		return nil, err
	}
	return raw, nil
}
