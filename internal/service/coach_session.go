package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"runanalyzer/internal/coach"
)

var (
	ErrSessionNotStarted = errors.New("coach session not started")
	ErrEmptyQuestion     = errors.New("question is empty")
)

// CoachSession is a conversation with the coach about one report
type CoachSession struct {
	coach  coach.Coach
	report *Report
	logger *zap.Logger

	mu       sync.Mutex
	summary  string
	messages []coach.Message
	started  bool
}

// NewCoachSession creates a session for report
func NewCoachSession(c coach.Coach, report *Report, logger *zap.Logger) *CoachSession {
	if c == nil {
		c = coach.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoachSession{
		coach:  c,
		report: report,
		logger: logger.With(zap.String("run_id", report.RunID)),
	}
}

// Enabled reports whether a model is behind the session
func (s *CoachSession) Enabled() bool {
	return s.coach.Enabled()
}

// Start asks the coach for its suggestions, stores them on the report and
// opens the conversation with them. Calling Start again returns the stored
// suggestions without another model call.
func (s *CoachSession) Start(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	if s.started {
		out := append([]string(nil), s.report.Result.Insights.AISuggestions...)
		s.mu.Unlock()
		return out, nil
	}
	insights := s.report.Result.Insights
	s.mu.Unlock()

	summary, err := coach.DataSummary(insights)
	if err != nil {
		return nil, err
	}

	suggestions := s.coach.Suggestions(ctx, insights)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	coachRequests.WithLabelValues(coachStart, s.resultLabel(suggestions)).Inc()
	s.logger.Info("Coach suggestions ready", zap.Int("suggestions", len(suggestions)))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
	s.report.Result.Insights.AISuggestions = suggestions
	s.messages = append(s.messages, coach.Message{
		Role:    coach.RoleAssistant,
		Content: coach.FormatSuggestions(suggestions),
	})
	s.started = true
	return append([]string(nil), suggestions...), nil
}

// Ask sends a follow-up question and returns the coach's reply. Both turns
// are added to the conversation.
func (s *CoachSession) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return "", ErrSessionNotStarted
	}
	s.messages = append(s.messages, coach.Message{Role: coach.RoleUser, Content: question})
	history := append([]coach.Message(nil), s.messages...)
	summary := s.summary
	s.mu.Unlock()

	reply := s.coach.FollowUp(ctx, history, summary)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	coachRequests.WithLabelValues(coachFollowUp, s.followUpLabel(reply)).Inc()

	s.mu.Lock()
	s.messages = append(s.messages, coach.Message{Role: coach.RoleAssistant, Content: reply})
	s.mu.Unlock()
	return reply, nil
}

// Started reports whether Start has completed
func (s *CoachSession) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Messages returns a copy of the conversation so far
func (s *CoachSession) Messages() []coach.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]coach.Message(nil), s.messages...)
}

func (s *CoachSession) resultLabel(suggestions []string) string {
	switch {
	case !s.coach.Enabled():
		return coachDisabled
	case len(suggestions) == 1 && suggestions[0] == coach.SuggestionsUnavailable:
		return coachFallback
	}
	return coachAnswered
}

func (s *CoachSession) followUpLabel(reply string) string {
	switch {
	case !s.coach.Enabled():
		return coachDisabled
	case reply == coach.FollowUpUnavailable:
		return coachFallback
	}
	return coachAnswered
}
