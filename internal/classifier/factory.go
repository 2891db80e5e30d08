package classifier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-ai/internal/config"
)

// New selects the classifier variant for the configured provider. Adding a
// provider means adding a profile here, not touching call sites.
func New(cfg config.AIConfig, logger *zap.Logger) (Classifier, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("AI_PROVIDER=openai requires OPENAI_API_KEY")
		}
		return newRemoteClassifier(openAIProfile, cfg.OpenAI, cfg.RequestTimeout(), logger), nil
	case config.ProviderGroq:
		if cfg.Groq.APIKey == "" {
			return nil, fmt.Errorf("AI_PROVIDER=groq requires GROQ_API_KEY")
		}
		return newRemoteClassifier(groqProfile, cfg.Groq, cfg.RequestTimeout(), logger), nil
	case config.ProviderMock, "":
		return NewHeuristic(logger), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
