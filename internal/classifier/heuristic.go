package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-ai/internal/domain"
)

const heuristicModelVersion = "mock-classifier-v1.0"

// keywordGroup pairs a label with the substrings that vote for it.
// Declaration order is the tie-break order.
type keywordGroup struct {
	label    string
	keywords []string
}

var categoryGroups = []keywordGroup{
	{"Technical Issue", []string{"crash", "error", "bug", "not working", "broken", "failed", "freeze", "slow"}},
	{"Billing", []string{"payment", "invoice", "charge", "refund", "subscription", "price", "cost", "billing"}},
	{"Feature Request", []string{"feature", "add", "improve", "enhancement", "suggestion", "would like", "could you"}},
	{"Account", []string{"login", "password", "access", "account", "register", "sign in", "authentication"}},
	{"Bug Report", []string{"unexpected", "wrong", "incorrect", "issue", "problem", "glitch"}},
}

var urgencyGroups = []struct {
	level    domain.Urgency
	keywords []string
}{
	{domain.UrgencyCritical, []string{"urgent", "critical", "immediately", "emergency", "asap", "production down", "can't work"}},
	{domain.UrgencyHigh, []string{"important", "soon", "quickly", "priority", "blocking", "cannot"}},
	{domain.UrgencyMedium, []string{"would like", "should", "need", "help"}},
	{domain.UrgencyLow, []string{"whenever", "eventually", "minor", "small", "question"}},
}

var sentimentGroups = []struct {
	tone     domain.Sentiment
	keywords []string
}{
	{domain.SentimentNegative, []string{"frustrated", "angry", "terrible", "awful", "hate", "worst", "broken", "useless"}},
	{domain.SentimentPositive, []string{"thank", "great", "love", "excellent", "wonderful", "appreciate", "good"}},
}

// HeuristicClassifier is the deterministic, offline implementation of the
// contract. It is a pure function of the input string: identical input
// always yields an identical result.
type HeuristicClassifier struct {
	logger *zap.Logger
}

// NewHeuristic constructs the keyword-driven classifier.
func NewHeuristic(logger *zap.Logger) *HeuristicClassifier {
	return &HeuristicClassifier{logger: logger}
}

// Classify derives category, urgency, sentiment and a confidence score from
// keyword matches alone. It never fails.
func (h *HeuristicClassifier) Classify(_ context.Context, message string) (*Result, error) {
	h.logger.Info("classifying ticket",
		zap.String("provider", "mock"),
		zap.Int("message_length", utf8.RuneCountInString(message)))

	lower := strings.ToLower(message)

	category := classifyCategory(lower)
	urgency := classifyUrgency(lower)
	sentiment := detectSentiment(lower)
	confidence := calculateConfidence(lower, category)

	classification := domain.Classification{
		Category:   category,
		Urgency:    urgency,
		Sentiment:  sentiment,
		Confidence: confidence,
	}

	raw, err := json.Marshal(map[string]any{
		"model": heuristicModelVersion,
		"classification": map[string]any{
			"category":   classification.Category,
			"urgency":    classification.Urgency,
			"sentiment":  classification.Sentiment,
			"confidence": classification.Confidence,
		},
		"reasoning": fmt.Sprintf("Classified as %s with %s urgency based on content analysis", category, urgency),
		"mock":      true,
	})
	if err != nil {
		return nil, &ClassificationError{Provider: "mock", Err: err}
	}

	h.logger.Info("ticket classified",
		zap.String("category", category),
		zap.String("urgency", string(urgency)),
		zap.String("sentiment", string(sentiment)),
		zap.Float64("confidence", confidence))

	return &Result{
		Classification: classification,
		RawResponse:    string(raw),
		ModelVersion:   heuristicModelVersion,
	}, nil
}

// classifyCategory picks the group with the most matched keywords. Ties go
// to the earliest declared group; zero matches fall back to General Inquiry.
func classifyCategory(message string) string {
	best := domain.CategoryGeneralInquiry
	bestScore := 0
	for _, group := range categoryGroups {
		score := 0
		for _, kw := range group.keywords {
			if strings.Contains(message, kw) {
				score++
			}
		}
		if score > bestScore {
			best = group.label
			bestScore = score
		}
	}
	return best
}

func classifyUrgency(message string) domain.Urgency {
	for _, group := range urgencyGroups {
		for _, kw := range group.keywords {
			if strings.Contains(message, kw) {
				return group.level
			}
		}
	}
	return domain.UrgencyMedium
}

func detectSentiment(message string) domain.Sentiment {
	for _, group := range sentimentGroups {
		for _, kw := range group.keywords {
			if strings.Contains(message, kw) {
				return group.tone
			}
		}
	}
	return domain.SentimentNeutral
}

// calculateConfidence starts at 0.5 and rewards longer messages, keyword
// density across the whole category vocabulary, and a non-default category.
// Capped at 0.95: the heuristic never reports full confidence.
func calculateConfidence(message, category string) float64 {
	confidence := 0.5

	lengthBonus := float64(utf8.RuneCountInString(message)) / 500
	if lengthBonus > 0.2 {
		lengthBonus = 0.2
	}
	confidence += lengthBonus

	matches := 0
	for _, group := range categoryGroups {
		for _, kw := range group.keywords {
			if strings.Contains(message, kw) {
				matches++
			}
		}
	}
	keywordBonus := 0.05 * float64(matches)
	if keywordBonus > 0.2 {
		keywordBonus = 0.2
	}
	confidence += keywordBonus

	if category != domain.CategoryGeneralInquiry {
		confidence += 0.1
	}

	if confidence > 0.95 {
		confidence = 0.95
	}
	return round3(confidence)
}
