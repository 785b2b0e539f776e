package coach

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"runanalyzer/internal/analysis"
	"runanalyzer/internal/config"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

// blockingGenerator waits for its context to end
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func sampleInsights() analysis.Insights {
	pace := 6.2
	return analysis.Insights{
		AvgPace:       &pace,
		WalkCount:     4,
		Suggestions:   []string{"Frequent walks (4) detected. Try 3:1 run:walk intervals to build stamina."},
		AISuggestions: []string{},
	}
}

func TestParseBullets(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "star bullets",
			text: "Here you go:\n* Run 3 min, walk 1 min.\n*   Start slower.\nGood luck!",
			want: []string{"Run 3 min, walk 1 min.", "Start slower."},
		},
		{
			name: "dash bullets and bold",
			text: "- Add strides\n  * **Tempo**: once a week\n**Note**: not a bullet",
			want: []string{"Add strides", "**Tempo**: once a week"},
		},
		{
			name: "leading minus kept",
			text: "* -10s strides\n- * 4x200m",
			want: []string{"-10s strides", "* 4x200m"},
		},
		{
			name: "no bullets",
			text: "Keep it up.",
			want: []string{},
		},
		{
			name: "bare marker",
			text: "*\n* ok",
			want: []string{"ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBullets(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseBullets() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAI_Suggestions(t *testing.T) {
	gen := &fakeGenerator{reply: "* Try 3:1 intervals\n* Hold back the first km\nthanks"}
	c := NewAI(gen, time.Second, nil)

	got := c.Suggestions(context.Background(), sampleInsights())
	want := []string{"Try 3:1 intervals", "Hold back the first km"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggestions() = %q, want %q", got, want)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, `"walk_count":4`) {
		t.Errorf("prompt missing data summary: %q", prompt)
	}
	if !strings.Contains(prompt, "2-4 concise, actionable bullet points") {
		t.Errorf("prompt missing brief: %q", prompt)
	}
}

func TestAI_SuggestionsError(t *testing.T) {
	c := NewAI(&fakeGenerator{err: errors.New("quota")}, 0, nil)

	got := c.Suggestions(context.Background(), sampleInsights())
	if !reflect.DeepEqual(got, []string{SuggestionsUnavailable}) {
		t.Errorf("Suggestions() = %q, want fallback", got)
	}
}

func TestAI_Timeout(t *testing.T) {
	c := NewAI(blockingGenerator{}, 10*time.Millisecond, nil)

	got := c.FollowUp(context.Background(), []Message{{Role: RoleUser, Content: "why?"}}, "{}")
	if got != FollowUpUnavailable {
		t.Errorf("FollowUp() = %q, want fallback", got)
	}
}

func TestAI_FollowUp(t *testing.T) {
	gen := &fakeGenerator{reply: "  Slow down early.  \n"}
	c := NewAI(gen, 0, nil)

	history := []Message{
		{Role: RoleAssistant, Content: FormatSuggestions([]string{"Start slower"})},
		{Role: RoleUser, Content: "How much slower?"},
	}
	got := c.FollowUp(context.Background(), history, `{"walk_count":2}`)
	if got != "Slow down early." {
		t.Errorf("FollowUp() = %q", got)
	}

	prompt := gen.prompts[0]
	for _, want := range []string{
		`initial run data ({"walk_count":2})`,
		"assistant: Based on your run, here are my suggestions:\n- Start slower",
		"user: How much slower?",
		"response to the last user message.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestDisabled(t *testing.T) {
	var c Coach = Disabled{}
	if c.Enabled() {
		t.Error("Enabled() = true")
	}
	if got := c.Suggestions(context.Background(), sampleInsights()); !reflect.DeepEqual(got, []string{DisabledMessage}) {
		t.Errorf("Suggestions() = %q", got)
	}
	if got := c.FollowUp(context.Background(), nil, ""); got != DisabledMessage {
		t.Errorf("FollowUp() = %q", got)
	}
}

func TestNew_NoKey(t *testing.T) {
	c, err := New(context.Background(), config.CoachConfig{Model: "m"}, nil)
	if !errors.Is(err, ErrCoachDisabled) {
		t.Errorf("New() error = %v, want ErrCoachDisabled", err)
	}
	if c == nil || c.Enabled() {
		t.Errorf("New() = %v, want Disabled", c)
	}
}

func TestDataSummary_Error(t *testing.T) {
	got, err := DataSummary(analysis.Insights{Error: analysis.NoDataMessage})
	if err != nil {
		t.Fatalf("DataSummary() error = %v", err)
	}
	if got != `{"error":"No stream data available for analysis."}` {
		t.Errorf("DataSummary() = %s", got)
	}
}
