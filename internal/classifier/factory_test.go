package classifier

import (
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-ai/internal/config"
)

func TestFactorySelectsVariant(t *testing.T) {
	logger := zap.NewNop()

	c, err := New(config.AIConfig{Provider: config.ProviderMock}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*HeuristicClassifier); !ok {
		t.Fatalf("expected heuristic classifier, got %T", c)
	}

	c, err = New(config.AIConfig{
		Provider: config.ProviderOpenAI,
		OpenAI:   config.ProviderConfig{APIKey: "k"},
	}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*RemoteClassifier); !ok {
		t.Fatalf("expected remote classifier, got %T", c)
	}
}

func TestFactoryRejectsMissingKey(t *testing.T) {
	if _, err := New(config.AIConfig{Provider: config.ProviderOpenAI}, zap.NewNop()); err == nil {
		t.Fatal("expected error for openai without api key")
	}
	if _, err := New(config.AIConfig{Provider: config.ProviderGroq}, zap.NewNop()); err == nil {
		t.Fatal("expected error for groq without api key")
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	if _, err := New(config.AIConfig{Provider: "bedrock"}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
