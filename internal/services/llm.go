package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/kingdom-engine/internal/config"
	"github.com/jwebster45206/kingdom-engine/pkg/chat"
	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// InitModel checks the service can be used with the given model
	InitModel(ctx context.Context, modelName string) error

	// Chat sends the event prompt and returns the generated text
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// Name identifies the provider in logs and health checks
	Name() string
}

// NewLLMService builds the configured provider. A provider whose API key is
// missing is still returned; its calls fail with a ConfigurationError so
// events fall back locally.
func NewLLMService(cfg *config.Config, logger *slog.Logger) (LLMService, error) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, logger), nil
	case config.ProviderGemini:
		return NewGeminiService(cfg.GeminiAPIKey, cfg.ModelName, logger), nil
	case config.ProviderMock:
		return NewMockLLMAPI(), nil
	default:
		return nil, &crisis.ConfigurationError{
			Subject: "llm_provider",
			Detail:  fmt.Sprintf("unknown provider %q", cfg.LLMProvider),
		}
	}
}

func missingKeyError(provider, envVar string) error {
	return &crisis.ConfigurationError{
		Subject: "llm." + provider,
		Detail:  envVar + " is not set",
	}
}
