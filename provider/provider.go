package provider

import (
	"context"
	"errors"
	"os"
	"time"

	openai_provider "github.com/wanderplan/concierge/provider/openai"

	"github.com/wanderplan/concierge/models"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Provider is the interface the concierge core consumes for every
// text-generation and embedding call. Implementations must treat each call as
// blocking I/O that may be slow or fail; callers decide how to degrade.
type Provider interface {
	// ChatCompletion produces the assistant reply for one turn. history is
	// truncated to the last 10 messages before the request is built.
	ChatCompletion(ctx context.Context, systemPrompt, contextBlock string, history []models.Message, userMessage string) (string, error)
	// ExtractPreferences asks the model for a structured partial preference
	// update constrained to the recognised fields. Any parse failure returns
	// an error; callers degrade to an empty update.
	ExtractPreferences(ctx context.Context, message string, current models.Preferences) (models.Preferences, error)
	// CreateEmbedding maps texts to fixed-length vectors.
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrNotConfigured signals a missing API credential at startup. Features
// backed by the provider are disabled, not fatal.
var ErrNotConfigured = errors.New("llm provider not configured")

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(client Client) (Provider, error) {
	switch client {
	case OpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, ErrNotConfigured
		}
		return openai_provider.NewClient(
			apiKey,
			"",
			"gpt-4o-mini",
			"text-embedding-3-small",
			0.7,
			1000,
			30*time.Second,
		), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
