package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-ai/internal/config"
	"github.com/spec-kit/nexus-ai/internal/domain"
)

// providerProfile describes one chat-completion backend. Both supported
// providers speak the same wire protocol and differ only in endpoint,
// default model and whether a strict-JSON response mode is requested.
type providerProfile struct {
	name         string
	baseURL      string
	defaultModel string
	strictJSON   bool
}

var (
	openAIProfile = providerProfile{
		name:         "OpenAI",
		baseURL:      "https://api.openai.com/v1",
		defaultModel: "gpt-3.5-turbo",
		strictJSON:   true,
	}
	groqProfile = providerProfile{
		name:         "Groq",
		baseURL:      "https://api.groq.com/openai/v1",
		defaultModel: "llama3-8b-8192",
		strictJSON:   false,
	}
)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RemoteClassifier delegates to an external chat-completion API and
// defensively parses its reply.
type RemoteClassifier struct {
	profile     providerProfile
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

func newRemoteClassifier(profile providerProfile, cfg config.ProviderConfig, timeout time.Duration, logger *zap.Logger) *RemoteClassifier {
	model := cfg.Model
	if model == "" {
		model = profile.defaultModel
	}
	if cfg.BaseURL != "" {
		profile.baseURL = cfg.BaseURL
	}
	return &RemoteClassifier{
		profile:     profile,
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Classify sends one chat completion request and extracts a validated
// classification from the reply. Transport failures and replies with no
// recoverable JSON object propagate as *ClassificationError; anything less
// is repaired locally.
func (r *RemoteClassifier) Classify(ctx context.Context, message string) (*Result, error) {
	r.logger.Info("classifying ticket",
		zap.String("provider", r.profile.name),
		zap.String("model", r.model),
		zap.Int("message_length", len(message)))

	content, echoedModel, err := r.complete(ctx, buildPrompt(message))
	if err != nil {
		return nil, err
	}

	classification, err := r.parseClassification(content)
	if err != nil {
		return nil, err
	}

	if echoedModel == "" {
		echoedModel = r.model
	}
	return &Result{
		Classification: classification,
		RawResponse:    content,
		ModelVersion:   r.profile.name + "/" + echoedModel,
	}, nil
}

// buildPrompt instructs the model to emit only a JSON object with exactly
// the four contract fields and their allowed values.
func buildPrompt(message string) string {
	return fmt.Sprintf(`Classify the following support ticket.

Message: %s

Respond with only a JSON object (no markdown, no explanation) containing exactly these fields:
- "category": one of [%s]
- "urgency": one of [Low, Medium, High, Critical]
- "sentiment": one of [Positive, Neutral, Negative]
- "confidence": a number between 0.0 and 1.0`,
		message, strings.Join(domain.ValidCategories, ", "))
}

func (r *RemoteClassifier) complete(ctx context.Context, prompt string) (content, model string, err error) {
	reqBody := chatRequest{
		Model:       r.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	}
	if r.profile.strictJSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", &ClassificationError{Provider: r.profile.name, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.profile.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", "", &ClassificationError{Provider: r.profile.name, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("chat completion request failed",
			zap.String("provider", r.profile.name), zap.Error(err))
		return "", "", &ClassificationError{Provider: r.profile.name, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &ClassificationError{Provider: r.profile.name, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Error("chat completion returned non-2xx",
			zap.String("provider", r.profile.name),
			zap.Int("status", resp.StatusCode))
		return "", "", &ClassificationError{
			Provider:    r.profile.name,
			RawResponse: string(respBody),
			Err:         fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", "", &ClassificationError{
			Provider:    r.profile.name,
			RawResponse: string(respBody),
			Err:         fmt.Errorf("parsing response envelope: %w", err),
		}
	}
	if parsed.Error != nil {
		return "", "", &ClassificationError{
			Provider:    r.profile.name,
			RawResponse: string(respBody),
			Err:         fmt.Errorf("api error: %s", parsed.Error.Message),
		}
	}
	if len(parsed.Choices) == 0 {
		return "", "", &ClassificationError{
			Provider:    r.profile.name,
			RawResponse: string(respBody),
			Err:         fmt.Errorf("no choices in response"),
		}
	}
	return parsed.Choices[0].Message.Content, parsed.Model, nil
}

// parseClassification runs the extraction ladder, then coerces each field
// against the contract. Only a reply with no recoverable JSON object is an
// error; everything else is repaired in place.
func (r *RemoteClassifier) parseClassification(content string) (domain.Classification, error) {
	candidate, found := extractJSONObject(content)
	if !found {
		r.logger.Error("no JSON object in model reply",
			zap.String("provider", r.profile.name),
			zap.Int("reply_length", len(content)))
		return domain.Classification{}, &ClassificationError{
			Provider:    r.profile.name,
			RawResponse: content,
			Err:         fmt.Errorf("no JSON object found in response"),
		}
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		// extractJSONObject guarantees a valid object literal, so this
		// branch only fires if that invariant breaks. Degrade to the
		// all-defaults result rather than fail the request.
		r.logger.Warn("recovered JSON is not an object, using defaults",
			zap.String("provider", r.profile.name), zap.Error(err))
		return domain.Classification{
			Category:   domain.CategoryGeneralInquiry,
			Urgency:    domain.UrgencyMedium,
			Sentiment:  domain.SentimentNeutral,
			Confidence: 0.5,
		}, nil
	}
	return r.repairFields(doc), nil
}

// repairFields validates each parsed field against the contract and
// replaces anything invalid or missing with its documented default.
func (r *RemoteClassifier) repairFields(doc map[string]any) domain.Classification {
	category, _ := doc["category"].(string)
	if !domain.IsValidCategory(category) {
		r.logger.Warn("invalid category in model reply, defaulting",
			zap.String("provider", r.profile.name),
			zap.Any("value", doc["category"]))
		category = domain.CategoryGeneralInquiry
	}

	urgencyStr, _ := doc["urgency"].(string)
	urgency := domain.Urgency(urgencyStr)
	if !urgency.IsValid() {
		r.logger.Warn("invalid urgency in model reply, defaulting",
			zap.String("provider", r.profile.name),
			zap.Any("value", doc["urgency"]))
		urgency = domain.UrgencyMedium
	}

	sentimentStr, _ := doc["sentiment"].(string)
	sentiment := domain.Sentiment(sentimentStr)
	if !sentiment.IsValid() {
		r.logger.Warn("invalid sentiment in model reply, defaulting",
			zap.String("provider", r.profile.name),
			zap.Any("value", doc["sentiment"]))
		sentiment = domain.SentimentNeutral
	}

	confidence, ok := coerceConfidence(doc["confidence"])
	if !ok {
		r.logger.Warn("invalid confidence in model reply, defaulting",
			zap.String("provider", r.profile.name),
			zap.Any("value", doc["confidence"]))
		confidence = 0.8
	}

	return domain.Classification{
		Category:   category,
		Urgency:    urgency,
		Sentiment:  sentiment,
		Confidence: round3(clamp01(confidence)),
	}
}

// coerceConfidence accepts the number shapes models actually emit: JSON
// numbers and numeric strings.
func coerceConfidence(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
