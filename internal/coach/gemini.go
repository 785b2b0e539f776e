package coach

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"runanalyzer/internal/config"
)

// Gemini is a Generator backed by the Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator for the given model
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends prompt as a single user turn
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// New builds the coach described by cfg. Without an API key it returns
// Disabled together with ErrCoachDisabled so callers can log the reason.
func New(ctx context.Context, cfg config.CoachConfig, logger *zap.Logger) (Coach, error) {
	if cfg.APIKey == "" {
		return Disabled{}, ErrCoachDisabled
	}

	gen, err := NewGemini(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return Disabled{}, err
	}
	return NewAI(gen, cfg.Timeout, logger), nil
}
