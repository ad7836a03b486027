// Package gemini generates analyses with Google Gemini through the genai SDK,
// using either the Gemini API (API key) or Vertex AI (project and location).
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/sandilya-stack/coach-server/internal/analysis"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey   string
	Project  string
	Location string
	Model    string
	// Timeout bounds one GenerateContent call; zero means 60s.
	Timeout time.Duration
}

type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func New(ctx context.Context, cfg Config) (*Generator, error) {
	cc := &genai.ClientConfig{}
	switch {
	case cfg.APIKey != "":
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case cfg.Project != "" && cfg.Location != "":
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("gemini: either an API key or a project and location are required")
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	m := cfg.Model
	if m == "" {
		m = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Generator{client: client, model: m, timeout: timeout}, nil
}

func (g *Generator) Generate(ctx context.Context, p analysis.Prompt) ([]byte, error) {
	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(p.User, genai.RoleUser)}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	text := res.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned empty text")
	}
	return []byte(text), nil
}
