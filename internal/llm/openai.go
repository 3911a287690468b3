package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"

	// rateLimitRetryDelay is the fixed wait before the single 429 retry
	rateLimitRetryDelay = 1000 * time.Millisecond

	cloudDefaultTemperature = 0.7
	cloudDefaultMaxTokens   = 4000
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
// The DeepSeek variant retries a 429 exactly once.
type OpenAIClient struct {
	name         Provider
	label        string
	baseURL      string
	defaultModel string
	httpClient   *http.Client

	retryOnRateLimit bool
	retryDelay       time.Duration
}

// NewOpenAIClient creates a client for the OpenAI API
func NewOpenAIClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		name:         ProviderOpenAI,
		label:        "OpenAI",
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultModel: "gpt-4o-mini",
		httpClient:   &http.Client{},
	}
}

// NewDeepSeekClient creates an OpenAI-compatible client for DeepSeek
func NewDeepSeekClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}
	return &OpenAIClient{
		name:             ProviderDeepSeek,
		label:            "DeepSeek",
		baseURL:          strings.TrimRight(baseURL, "/"),
		defaultModel:     "deepseek-chat",
		httpClient:       &http.Client{},
		retryOnRateLimit: true,
		retryDelay:       rateLimitRetryDelay,
	}
}

func (c *OpenAIClient) Name() Provider {
	return c.name
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Stream      bool            `json:"stream"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	model := modelOr(req, c.defaultModel)

	messages := make([]openAIMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openAIMessage{Role: m.Role, Content: m.Content})
	}

	payload := openAIRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperatureOr(req, cloudDefaultTemperature),
		MaxTokens:   maxTokensOr(req, cloudDefaultMaxTokens),
		Stream:      false,
	}
	headers := map[string]string{"Authorization": "Bearer " + req.APIKey}

	resp, err := c.send(ctx, payload, headers)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusTooManyRequests && c.retryOnRateLimit {
		log.Warn().
			Str("provider", string(c.name)).
			Dur("backoff", c.retryDelay).
			Msg("rate limited, retrying once")

		select {
		case <-ctx.Done():
			return nil, newProviderError(KindHTTP, c.name, 0, "%s request cancelled: %v", c.label, ctx.Err())
		case <-time.After(c.retryDelay):
		}

		// Any failure of the single retry is reported as the rate limit it followed
		resp, err = c.send(ctx, payload, headers)
		if err != nil {
			return nil, newProviderError(KindRateLimit, c.name, http.StatusTooManyRequests,
				"%s rate limit exceeded; retry failed: %v", c.label, err)
		}
		if !resp.ok() {
			detail := errorDetail(resp.Body)
			if detail == "" {
				return nil, newProviderError(KindRateLimit, c.name, resp.Status,
					"%s rate limit exceeded; retry returned %d", c.label, resp.Status)
			}
			return nil, newProviderError(KindRateLimit, c.name, resp.Status,
				"%s rate limit exceeded; retry returned %d: %s", c.label, resp.Status, detail)
		}
	}

	if !resp.ok() {
		return nil, classifyStatus(c.name, c.label, resp.Status, errorDetail(resp.Body))
	}

	var parsed openAIResponse
	if err := decodeSuccess(resp.Body, &parsed); err != nil {
		return nil, newProviderError(KindHTTP, c.name, http.StatusBadGateway, "%s returned an unreadable response: %v", c.label, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, newProviderError(KindHTTP, c.name, http.StatusBadGateway, "%s response has no choices", c.label)
	}

	var usage *Usage
	if parsed.Usage != nil {
		usage = &Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}

	if parsed.Model != "" {
		model = parsed.Model
	}
	return assistantResponse(c.name, model, parsed.Choices[0].Message.Content, usage), nil
}

func (c *OpenAIClient) send(ctx context.Context, payload openAIRequest, headers map[string]string) (*upstreamResponse, error) {
	resp, err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", headers, payload)
	if err != nil {
		return nil, newProviderError(KindHTTP, c.name, 0, "could not reach %s: %v", c.label, err)
	}
	return resp, nil
}
