package extraction

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrDisabled is returned by the generator used when no API key is configured
var ErrDisabled = errors.New("extraction service not configured")

// Generator produces a JSON document constrained by schema for the given contents
type Generator interface {
	Generate(ctx context.Context, contents []*genai.Content, schema *genai.Schema) (string, error)
}

// GeminiGenerator calls the Gemini content generation API
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate requests a JSON response matching schema
func (g *GeminiGenerator) Generate(ctx context.Context, contents []*genai.Content, schema *genai.Schema) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Name returns the generator name
func (g *GeminiGenerator) Name() string {
	return fmt.Sprintf("genai:%s", g.model)
}

// DisabledGenerator fails every call; extraction endpoints then report errors
// and suggestions come back empty
type DisabledGenerator struct{}

// Generate always returns ErrDisabled
func (DisabledGenerator) Generate(context.Context, []*genai.Content, *genai.Schema) (string, error) {
	return "", ErrDisabled
}
