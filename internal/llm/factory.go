package llm

import (
	"fmt"

	"chat-relay/internal/config"
)

// NewClient creates the inference client selected by configuration.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		return NewAnthropic(AnthropicConfig{
			APIKey:         cfg.AnthropicAPIKey,
			BaseURL:        cfg.AnthropicURL,
			Model:          cfg.Model,
			System:         cfg.SystemPrompt,
			Temperature:    cfg.Temperature,
			TopK:           cfg.TopK,
			MaxTokens:      cfg.MaxTokens,
			ThinkingBudget: cfg.ThinkingBudget,
		}), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.SystemPrompt, cfg.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
