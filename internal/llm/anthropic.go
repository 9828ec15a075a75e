package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1"
	anthropicVersion    = "2023-06-01"
)

// AnthropicConfig holds the model and inference parameters for the
// Messages API. Temperature and TopK are dropped from thinking requests
// because the API rejects sampling overrides in that mode.
type AnthropicConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	System         string
	Temperature    float64
	TopK           int
	MaxTokens      int
	ThinkingBudget int
}

type AnthropicClient struct {
	cfg    AnthropicConfig
	client *http.Client
	now    func() time.Time
}

func NewAnthropic(cfg AnthropicConfig) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAnthropicURL
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	return &AnthropicClient{
		cfg:    cfg,
		client: &http.Client{},
		now:    time.Now,
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	TopK        *int               `json:"top_k,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Thinking    *anthropicThinking `json:"thinking,omitempty"`
}

type anthropicThinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	Thinking string           `json:"thinking,omitempty"`
	Title    string           `json:"title,omitempty"`
	Source   *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Model   string           `json:"model"`
	Content []anthropicBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *AnthropicClient) Generate(ctx context.Context, messages []Message, opts Options) (Response, error) {
	req := anthropicRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    c.cfg.System,
	}
	if opts.Thinking {
		req.Thinking = &anthropicThinking{Type: "enabled", BudgetTokens: c.cfg.ThinkingBudget}
		// The thinking budget counts against max_tokens.
		req.MaxTokens = c.cfg.ThinkingBudget + c.cfg.MaxTokens
	} else {
		t := c.cfg.Temperature
		req.Temperature = &t
		if c.cfg.TopK > 0 {
			k := c.cfg.TopK
			req.TopK = &k
		}
	}

	for _, m := range messages {
		am := anthropicMessage{Role: m.Role}
		for _, b := range m.Content {
			switch b.Type {
			case BlockText:
				am.Content = append(am.Content, anthropicBlock{Type: "text", Text: b.Text})
			case BlockDocument:
				if b.Document == nil {
					return Response{}, fmt.Errorf("document block without payload")
				}
				am.Content = append(am.Content, anthropicBlock{
					Type:  "document",
					Title: b.Document.Name,
					Source: &anthropicSource{
						Type:      "base64",
						MediaType: "application/" + b.Document.Format,
						Data:      base64.StdEncoding.EncodeToString(b.Document.Data),
					},
				})
			default:
				return Response{}, fmt.Errorf("unsupported content block type: %s", b.Type)
			}
		}
		req.Messages = append(req.Messages, am)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.cfg.APIKey)
	httpReq.Header.Set("Anthropic-Version", anthropicVersion)

	start := c.now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("inference request failed: %w", err)
	}
	defer httpResp.Body.Close()
	latency := c.now().Sub(start).Milliseconds()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return Response{}, fmt.Errorf("inference service error (%d, %s): %s", httpResp.StatusCode, parsed.Error.Type, parsed.Error.Message)
		}
		return Response{}, fmt.Errorf("inference service error: status %d", httpResp.StatusCode)
	}

	out := Response{
		Model:        parsed.Model,
		LatencyMs:    latency,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
	}
	// Thinking and text blocks are independent; collect both.
	for _, b := range parsed.Content {
		switch b.Type {
		case "thinking":
			out.Thinking = b.Thinking
		case "text":
			out.Text = b.Text
		}
	}
	if out.Text == "" && out.Thinking == "" {
		return Response{}, fmt.Errorf("inference service returned no usable content blocks")
	}
	return out, nil
}
