package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient adapts any OpenAI-compatible chat endpoint. It only speaks
// flat text, so document blocks are rejected up front and the extended
// reasoning budget is not forwarded; reasoning-capable models still
// surface their trace through reasoning_content.
type OpenAIClient struct {
	client *openai.Client
	model  string
	system string
	temp   float64
	now    func() time.Time
}

func NewOpenAI(apiKey, baseURL, model, system string, temperature float64) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
		system: system,
		temp:   temperature,
		now:    time.Now,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, messages []Message, opts Options) (Response, error) {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if c.system != "" {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.system})
	}
	for _, m := range messages {
		flat, err := flatten(m)
		if err != nil {
			return Response{}, err
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: flat})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: float32(c.temp),
	}

	start := c.now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	latency := c.now().Sub(start).Milliseconds()

	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("chat completion returned no choices")
	}
	out := Response{
		Text:         resp.Choices[0].Message.Content,
		Thinking:     resp.Choices[0].Message.ReasoningContent,
		Model:        c.model,
		LatencyMs:    latency,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	return out, nil
}

func flatten(m Message) (string, error) {
	var out string
	for _, b := range m.Content {
		switch b.Type {
		case BlockText:
			if out != "" {
				out += "\n\n"
			}
			out += b.Text
		case BlockDocument:
			return "", fmt.Errorf("document analysis is not supported by the openai provider")
		default:
			return "", fmt.Errorf("unsupported content block type: %s", b.Type)
		}
	}
	return out, nil
}
