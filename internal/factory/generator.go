package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sandilya-stack/coach-server/internal/analysis"
	"github.com/sandilya-stack/coach-server/internal/analysis/gemini"
	"github.com/sandilya-stack/coach-server/internal/analysis/mock"
	"github.com/sandilya-stack/coach-server/internal/analysis/openai"
	"github.com/sandilya-stack/coach-server/internal/config"
)

// NewGenerator builds the AI collaborator selected by cfg.AIProvider.
func NewGenerator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (analysis.Generator, error) {
	switch cfg.AIProvider {
	case config.AIMock:
		log.Warn().Msg("using mock analysis generator")
		return mock.New(), nil
	case config.AIOpenAI:
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.AITimeout(),
		})
	case config.AIGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:   cfg.GeminiAPIKey,
			Project:  cfg.GCPProjectID,
			Location: cfg.GCPLocation,
			Model:    cfg.GeminiModel,
			Timeout:  cfg.AITimeout(),
		})
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER: %s", cfg.AIProvider)
	}
}

// NewAnalyzer wraps the configured generator with validation and the retry policy.
func NewAnalyzer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*analysis.Analyzer, error) {
	gen, err := NewGenerator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return analysis.New(gen, log, analysis.Options{MaxRetries: uint64(cfg.AIMaxRetries)}), nil
}
