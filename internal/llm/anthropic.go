package llm

import (
	"context"
	"net/http"
	"strings"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

// AnthropicClient implements the Client interface for Anthropic
type AnthropicClient struct {
	baseURL      string
	defaultModel string
	httpClient   *http.Client
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(baseURL string) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultModel: "claude-3-5-sonnet-20241022",
		httpClient:   &http.Client{},
	}
}

func (c *AnthropicClient) Name() Provider {
	return ProviderAnthropic
}

// anthropicRequest represents the Anthropic API request format
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse represents the Anthropic API response format
type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// splitSystem pulls system messages out of the conversation; Anthropic
// takes them as a separate top-level field.
func splitSystem(messages []Message) (string, []anthropicMessage) {
	var system []string
	out := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		out = append(out, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	return strings.Join(system, "\n\n"), out
}

func (c *AnthropicClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	model := modelOr(req, c.defaultModel)
	system, messages := splitSystem(req.Messages)

	payload := anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokensOr(req, cloudDefaultMaxTokens),
		System:      system,
		Messages:    messages,
		Temperature: temperatureOr(req, cloudDefaultTemperature),
	}
	headers := map[string]string{
		"x-api-key":         req.APIKey,
		"anthropic-version": anthropicVersion,
	}

	resp, err := postJSON(ctx, c.httpClient, c.baseURL+"/messages", headers, payload)
	if err != nil {
		return nil, newProviderError(KindHTTP, ProviderAnthropic, 0, "could not reach Anthropic: %v", err)
	}

	if !resp.ok() {
		return nil, classifyStatus(ProviderAnthropic, "Anthropic", resp.Status, errorDetail(resp.Body))
	}

	var parsed anthropicResponse
	if err := decodeSuccess(resp.Body, &parsed); err != nil {
		return nil, newProviderError(KindHTTP, ProviderAnthropic, http.StatusBadGateway, "Anthropic returned an unreadable response: %v", err)
	}
	if len(parsed.Content) == 0 {
		return nil, newProviderError(KindHTTP, ProviderAnthropic, http.StatusBadGateway, "Anthropic response has no content blocks")
	}

	// Extract text content
	var content strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" || block.Type == "" {
			content.WriteString(block.Text)
		}
	}

	var usage *Usage
	if parsed.Usage != nil {
		usage = &Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		}
	}

	if parsed.Model != "" {
		model = parsed.Model
	}
	return assistantResponse(ProviderAnthropic, model, content.String(), usage), nil
}
