package gemini

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandilya-stack/coach-server/internal/analysis"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Project: "p"})
	assert.Error(t, err)
}

func TestNewDefaultsModel(t *testing.T) {
	g, err := New(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, g.model)
	assert.Equal(t, 60*time.Second, g.timeout)
}

// Runs against the live API only when GEMINI_API_KEY is set.
func TestGenerateLive(t *testing.T) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Skip("GEMINI_API_KEY not set")
	}
	g, err := New(context.Background(), Config{APIKey: key})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), analysis.Prompt{
		System: "Reply with the JSON object {\"ok\": true} and nothing else.",
		User:   "ping",
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "ok")
}
