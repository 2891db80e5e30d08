package classifier

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-ai/internal/domain"
)

func TestHeuristicDeterministic(t *testing.T) {
	h := NewHeuristic(zap.NewNop())
	message := "My app keeps crashing and it's urgent!!"

	first, err := h.Classify(context.Background(), message)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := h.Classify(context.Background(), message)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input produced different results:\n%+v\n%+v", first, second)
	}
}

func TestHeuristicCrashingUrgentMessage(t *testing.T) {
	h := NewHeuristic(zap.NewNop())

	result, err := h.Classify(context.Background(), "My app keeps crashing and it's urgent!!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := result.Classification
	if c.Category != "Technical Issue" {
		t.Fatalf("expected Technical Issue, got %s", c.Category)
	}
	if c.Urgency != domain.UrgencyCritical {
		t.Fatalf("expected Critical urgency, got %s", c.Urgency)
	}
	if c.Sentiment != domain.SentimentNeutral {
		t.Fatalf("expected Neutral sentiment, got %s", c.Sentiment)
	}
	// 0.5 base + 39/500 length + 0.05 for one keyword + 0.1 non-default category
	if c.Confidence != 0.728 {
		t.Fatalf("expected confidence 0.728, got %v", c.Confidence)
	}
	if result.ModelVersion != "mock-classifier-v1.0" {
		t.Fatalf("unexpected model version %s", result.ModelVersion)
	}
	if !strings.Contains(result.RawResponse, `"mock":true`) {
		t.Fatalf("raw response should carry the mock flag: %s", result.RawResponse)
	}
}

func TestHeuristicDefaults(t *testing.T) {
	h := NewHeuristic(zap.NewNop())

	result, err := h.Classify(context.Background(), "zzzz qqqq wwww eeee rrrr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := result.Classification
	if c.Category != domain.CategoryGeneralInquiry {
		t.Fatalf("expected General Inquiry, got %s", c.Category)
	}
	if c.Urgency != domain.UrgencyMedium {
		t.Fatalf("expected Medium urgency, got %s", c.Urgency)
	}
	if c.Sentiment != domain.SentimentNeutral {
		t.Fatalf("expected Neutral sentiment, got %s", c.Sentiment)
	}
	// 0.5 base + 24/500 length, no keyword or category bonus
	if c.Confidence != 0.548 {
		t.Fatalf("expected confidence 0.548, got %v", c.Confidence)
	}
}

func TestHeuristicTieBreakUsesDeclarationOrder(t *testing.T) {
	h := NewHeuristic(zap.NewNop())

	// "error" votes Technical Issue, "payment" votes Billing; one match
	// each, so the earlier group wins.
	result, err := h.Classify(context.Background(), "error with my payment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Classification.Category != "Technical Issue" {
		t.Fatalf("expected tie-break to Technical Issue, got %s", result.Classification.Category)
	}
}

func TestHeuristicConfidenceBounds(t *testing.T) {
	h := NewHeuristic(zap.NewNop())

	messages := []string{
		"short note",
		"I am so frustrated, this is urgent: crash error bug broken failed freeze slow payment invoice refund login password",
		strings.Repeat("the system is broken and the error keeps happening ", 40),
		"thank you, could you add a feature whenever possible",
	}
	for _, msg := range messages {
		result, err := h.Classify(context.Background(), msg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c := result.Classification
		if c.Confidence < 0.5 || c.Confidence > 0.95 {
			t.Fatalf("confidence %v out of [0.5, 0.95] for %q", c.Confidence, msg)
		}
		if !c.Urgency.IsValid() {
			t.Fatalf("invalid urgency %q for %q", c.Urgency, msg)
		}
		if !c.Sentiment.IsValid() {
			t.Fatalf("invalid sentiment %q for %q", c.Sentiment, msg)
		}
		if c.Category == "" {
			t.Fatalf("empty category for %q", msg)
		}
	}
}

func TestHeuristicSentimentDetection(t *testing.T) {
	h := NewHeuristic(zap.NewNop())

	cases := []struct {
		message string
		want    domain.Sentiment
	}{
		{"I am frustrated with this terrible experience", domain.SentimentNegative},
		{"thank you for the great support on this", domain.SentimentPositive},
		// negative wins when both tones appear
		{"thank you but this is awful", domain.SentimentNegative},
	}
	for _, tc := range cases {
		result, err := h.Classify(context.Background(), tc.message)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Classification.Sentiment != tc.want {
			t.Fatalf("message %q: expected %s, got %s", tc.message, tc.want, result.Classification.Sentiment)
		}
	}
}
