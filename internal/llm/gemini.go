package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient implements the Client interface for Google Gemini.
// The model and API key are URL components rather than headers.
type GeminiClient struct {
	baseURL      string
	defaultModel string
	httpClient   *http.Client
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(baseURL string) *GeminiClient {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultModel: "gemini-1.5-flash",
		httpClient:   &http.Client{},
	}
}

func (c *GeminiClient) Name() Provider {
	return ProviderGemini
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Role  string       `json:"role"`
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// toGeminiContents remaps roles and folds system text into the first
// turn, since the wire format has no system role.
func toGeminiContents(messages []Message) []geminiContent {
	var system []string
	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
			continue
		case RoleAssistant:
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}

	if len(system) == 0 {
		return contents
	}
	prefix := strings.Join(system, "\n\n")
	if len(contents) == 0 {
		return []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prefix}}}}
	}
	contents[0].Parts[0].Text = prefix + "\n\n" + contents[0].Parts[0].Text
	return contents
}

func (c *GeminiClient) endpoint(model, apiKey string) string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(model), url.QueryEscape(apiKey))
}

func (c *GeminiClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	model := modelOr(req, c.defaultModel)

	payload := geminiRequest{
		Contents: toGeminiContents(req.Messages),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     temperatureOr(req, cloudDefaultTemperature),
			MaxOutputTokens: maxTokensOr(req, cloudDefaultMaxTokens),
		},
	}

	resp, err := postJSON(ctx, c.httpClient, c.endpoint(model, req.APIKey), nil, payload)
	if err != nil {
		return nil, newProviderError(KindHTTP, ProviderGemini, 0, "could not reach Gemini: %v", err)
	}

	if !resp.ok() {
		return nil, classifyStatus(ProviderGemini, "Gemini", resp.Status, errorDetail(resp.Body))
	}

	var parsed geminiResponse
	if err := decodeSuccess(resp.Body, &parsed); err != nil {
		return nil, newProviderError(KindHTTP, ProviderGemini, http.StatusBadGateway, "Gemini returned an unreadable response: %v", err)
	}
	if len(parsed.Candidates) == 0 {
		if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
			return nil, newProviderError(KindHTTP, ProviderGemini, http.StatusBadGateway, "Gemini blocked the prompt: %s", parsed.PromptFeedback.BlockReason)
		}
		return nil, newProviderError(KindHTTP, ProviderGemini, http.StatusBadGateway, "Gemini response has no candidates")
	}

	var content strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		content.WriteString(part.Text)
	}

	var usage *Usage
	if parsed.UsageMetadata != nil {
		usage = &Usage{
			PromptTokens:     parsed.UsageMetadata.PromptTokenCount,
			CompletionTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      parsed.UsageMetadata.TotalTokenCount,
		}
	}

	return assistantResponse(ProviderGemini, model, content.String(), usage), nil
}
