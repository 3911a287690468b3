package llm

import (
	"context"
	"time"
)

// Provider identifies an LLM backend
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderDeepSeek  Provider = "deepseek"
	ProviderGemini    Provider = "gemini"
	ProviderLocal     Provider = "local-inference"

	// ProviderAuto asks the registry to detect the provider from the model name
	ProviderAuto Provider = "auto"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// EmptyCompletion is returned as the assistant content when a provider
// answers successfully but without any text.
const EmptyCompletion = "No response generated"

// Message represents a chat message
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"` // epoch milliseconds
}

// NewMessage creates a message stamped with the current time
func NewMessage(role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ChatRequest is the wire contract accepted by every adapter
type ChatRequest struct {
	Messages      []Message `json:"messages"`
	Provider      Provider  `json:"provider"`
	Model         string    `json:"model,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	MaxTokens     int       `json:"max_tokens,omitempty"`
	APIKey        string    `json:"api_key,omitempty"`
	WebSearch     bool      `json:"web_search,omitempty"`
	ShowReasoning bool      `json:"show_reasoning,omitempty"`

	// ContextSize is only honored by local inference, and only up to its ceiling
	ContextSize int `json:"context_size,omitempty"`
	// Enhanced turns on the structured-answer instruction and extras extraction
	Enhanced bool `json:"enhanced,omitempty"`
}

// Usage holds token counts reported by a provider
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is what an adapter returns on success
type ChatResponse struct {
	Message  Message  `json:"message"`
	Usage    *Usage   `json:"usage,omitempty"`
	Provider Provider `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
}

// Client is the capability every provider adapter implements
type Client interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Name() Provider
}

// temperatureOr returns the requested temperature or the adapter default
func temperatureOr(req *ChatRequest, def float64) float64 {
	if req.Temperature == nil {
		return def
	}
	return *req.Temperature
}

func maxTokensOr(req *ChatRequest, def int) int {
	if req.MaxTokens <= 0 {
		return def
	}
	return req.MaxTokens
}

func modelOr(req *ChatRequest, def string) string {
	if req.Model == "" {
		return def
	}
	return req.Model
}

// assistantResponse builds a success response, substituting the sentinel
// for empty completions.
func assistantResponse(provider Provider, model, content string, usage *Usage) *ChatResponse {
	if content == "" {
		content = EmptyCompletion
	}
	return &ChatResponse{
		Message:  NewMessage(RoleAssistant, content),
		Usage:    usage,
		Provider: provider,
		Model:    model,
	}
}
