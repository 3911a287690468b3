package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2"

	// Local inference shares one machine's memory and cores; these are
	// ceilings, never raised by the caller.
	localDefaultTemperature = 0.2
	localDefaultMaxTokens   = 512
	localMaxPredict         = 1024
	localDefaultContext     = 2048
	localMaxContext         = 4096
	localNumThread          = 4
	localNumBatch           = 256

	probeTimeout = 5 * time.Second
)

// OllamaClient implements the Client interface for a local Ollama server.
// Every chat call runs through the shared LocalQueue.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
	queue      *LocalQueue
}

// NewOllamaClient creates a new local inference client. A nil queue gets
// a private one.
func NewOllamaClient(baseURL string, queue *LocalQueue) *OllamaClient {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if queue == nil {
		queue = NewLocalQueue()
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		queue:      queue,
	}
}

func (c *OllamaClient) Name() Provider {
	return ProviderLocal
}

// Queue returns the dispatch queue the client serializes through
func (c *OllamaClient) Queue() *LocalQueue {
	return c.queue
}

// ollamaRequest represents the Ollama API request format
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
	NumThread   int     `json:"num_thread"`
	NumBatch    int     `json:"num_batch"`
}

// ollamaResponse represents the Ollama API response format
type ollamaResponse struct {
	Model           string         `json:"model"`
	Message         *ollamaMessage `json:"message"`
	Done            bool           `json:"done"`
	DoneReason      string         `json:"done_reason,omitempty"`
	PromptEvalCount int            `json:"prompt_eval_count,omitempty"`
	EvalCount       int            `json:"eval_count,omitempty"`
}

// buildOllamaRequest applies local defaults and clamps resource knobs
func buildOllamaRequest(req *ChatRequest) ollamaRequest {
	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}

	numCtx := req.ContextSize
	if numCtx <= 0 {
		numCtx = localDefaultContext
	}

	return ollamaRequest{
		Model:    modelOr(req, defaultOllamaModel),
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: temperatureOr(req, localDefaultTemperature),
			NumPredict:  min(maxTokensOr(req, localDefaultMaxTokens), localMaxPredict),
			NumCtx:      min(numCtx, localMaxContext),
			NumThread:   localNumThread,
			NumBatch:    localNumBatch,
		},
	}
}

func (c *OllamaClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	payload := buildOllamaRequest(req)

	var resp *ChatResponse
	err := c.queue.Enqueue(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.chat(ctx, payload)
		return err
	})
	if err != nil {
		if _, ok := AsProviderError(err); ok {
			return nil, err
		}
		return nil, newProviderError(KindConnection, ProviderLocal, 0, "local inference request aborted: %v", err)
	}
	return resp, nil
}

func (c *OllamaClient) chat(ctx context.Context, payload ollamaRequest) (*ChatResponse, error) {
	resp, err := postJSON(ctx, c.httpClient, c.baseURL+"/api/chat", nil, payload)
	if err != nil {
		return nil, newProviderError(KindConnection, ProviderLocal, 0,
			"cannot connect to local inference server at %s (is it running?): %v", c.baseURL, err)
	}

	if !resp.ok() {
		detail := errorDetail(resp.Body)
		if resp.Status == http.StatusNotFound {
			return nil, newProviderError(KindAPIError, ProviderLocal, resp.Status,
				"model %q not available locally (pull it first): %s", payload.Model, detail)
		}
		return nil, newProviderError(KindAPIError, ProviderLocal, resp.Status, "local inference error (%d): %s", resp.Status, detail)
	}

	var parsed ollamaResponse
	if err := decodeSuccess(resp.Body, &parsed); err != nil {
		return nil, newProviderError(KindAPIError, ProviderLocal, http.StatusBadGateway, "local inference returned an unreadable response: %v", err)
	}
	if parsed.Message == nil {
		return nil, newProviderError(KindAPIError, ProviderLocal, http.StatusBadGateway, "local inference response has no message")
	}

	usage := &Usage{
		PromptTokens:     parsed.PromptEvalCount,
		CompletionTokens: parsed.EvalCount,
		TotalTokens:      parsed.PromptEvalCount + parsed.EvalCount,
	}

	model := payload.Model
	if parsed.Model != "" {
		model = parsed.Model
	}
	return assistantResponse(ProviderLocal, model, parsed.Message.Content, usage), nil
}

// ListModels returns the models installed on the server at baseURL. It
// bypasses the queue; listing tags is cheap and does not load a model.
func (c *OllamaClient) ListModels(ctx context.Context, baseURL string) ([]string, error) {
	if baseURL == "" {
		baseURL = c.baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("local inference server returned status %d", resp.StatusCode)
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	models := make([]string, len(result.Models))
	for i, m := range result.Models {
		models[i] = m.Name
	}

	return models, nil
}
