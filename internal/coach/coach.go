// Package coach turns analysis insights into natural-language coaching
// through a generative model.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"runanalyzer/internal/analysis"
)

// Fixed replies used when the model can't be reached
const (
	DisabledMessage        = "AI features are disabled. Please check your API key."
	SuggestionsUnavailable = "AI suggestions unavailable due to an API error."
	FollowUpUnavailable    = "Sorry, I encountered an error trying to generate a follow-up response."
)

// ErrCoachDisabled is returned by New when no API key is configured
var ErrCoachDisabled = errors.New("coach disabled: no API key configured")

// Roles in a conversation
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the coaching conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Coach produces suggestions for an analyzed run and answers follow-up
// questions. Implementations never return errors: failures become one of
// the fixed replies above.
type Coach interface {
	Enabled() bool
	Suggestions(ctx context.Context, insights analysis.Insights) []string
	FollowUp(ctx context.Context, history []Message, dataSummary string) string
}

// Generator sends a single prompt to a model and returns its text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Disabled is the coach used when no model is configured
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Suggestions(context.Context, analysis.Insights) []string {
	return []string{DisabledMessage}
}

func (Disabled) FollowUp(context.Context, []Message, string) string {
	return DisabledMessage
}

// AI is a Coach backed by a Generator
type AI struct {
	gen     Generator
	timeout time.Duration
	logger  *zap.Logger
}

// NewAI wraps gen. A zero timeout means calls are bounded only by ctx.
func NewAI(gen Generator, timeout time.Duration, logger *zap.Logger) *AI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AI{gen: gen, timeout: timeout, logger: logger}
}

func (c *AI) Enabled() bool { return true }

// Suggestions asks the model for 2-4 bullet points about the run
func (c *AI) Suggestions(ctx context.Context, insights analysis.Insights) []string {
	summary, err := DataSummary(insights)
	if err != nil {
		c.logger.Error("Encoding data summary", zap.Error(err))
		return []string{SuggestionsUnavailable}
	}

	text, err := c.generate(ctx, SuggestionsPrompt(summary))
	if err != nil {
		c.logger.Error("Coach suggestions failed", zap.Error(err))
		return []string{SuggestionsUnavailable}
	}
	return ParseBullets(text)
}

// FollowUp answers the last user message in history
func (c *AI) FollowUp(ctx context.Context, history []Message, dataSummary string) string {
	text, err := c.generate(ctx, FollowUpPrompt(history, dataSummary))
	if err != nil {
		c.logger.Error("Coach follow-up failed", zap.Error(err))
		return FollowUpUnavailable
	}
	return strings.TrimSpace(text)
}

func (c *AI) generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.gen.Generate(ctx, prompt)
	c.logger.Debug("Coach model call",
		zap.Int("prompt_bytes", len(prompt)),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	return text, err
}

// DataSummary renders the insights as the JSON handed to the model
func DataSummary(insights analysis.Insights) (string, error) {
	data, err := json.Marshal(insights)
	if err != nil {
		return "", fmt.Errorf("encoding insights: %w", err)
	}
	return string(data), nil
}

// SuggestionsPrompt builds the initial coaching prompt
func SuggestionsPrompt(dataSummary string) string {
	return "Analyze this run data: " + dataSummary + ". " +
		"User does 5K/10K runs, often with short, high-stamina bursts then walks. " +
		"Suggest new pacing strategies or routines to improve endurance and speed. " +
		"Keep to 2-4 concise, actionable bullet points."
}

// FollowUpPrompt builds the prompt for a follow-up question
func FollowUpPrompt(history []Message, dataSummary string) string {
	var b strings.Builder
	b.WriteString("You are a running coach AI. Based on the initial run data (")
	b.WriteString(dataSummary)
	b.WriteString(") and the conversation so far, answer the user's latest question.\n\n")
	b.WriteString("Conversation History:\n")
	for i, m := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	b.WriteString("\n\nProvide a concise and helpful response to the last user message.")
	return b.String()
}

// ParseBullets keeps the lines of a model reply that start with a * or -
// bullet, with the marker removed
func ParseBullets(text string) []string {
	bullets := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || (line[0] != '*' && line[0] != '-') {
			continue
		}
		// One marker then whitespace; "**bold**" is not a bullet
		rest := line[1:]
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		line = strings.TrimSpace(rest)
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	return bullets
}

// FormatSuggestions renders suggestions as the assistant's opening message
func FormatSuggestions(suggestions []string) string {
	var b strings.Builder
	b.WriteString("Based on your run, here are my suggestions:")
	for _, s := range suggestions {
		b.WriteString("\n- ")
		b.WriteString(s)
	}
	return b.String()
}
