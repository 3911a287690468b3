package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/config"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/orchestrator"
)

type stubClient struct {
	name  llm.Provider
	reply string
	err   error

	mu       sync.Mutex
	requests []*llm.ChatRequest
}

func (s *stubClient) Name() llm.Provider { return s.name }

func (s *stubClient) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{
		Message:  llm.NewMessage(llm.RoleAssistant, s.reply),
		Usage:    &llm.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		Provider: s.name,
		Model:    "stub-model",
	}, nil
}

func (s *stubClient) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:       3001,
		CORSOrigin: "*",
		LLM:        config.LLMConfig{LocalInferenceURL: "http://127.0.0.1:1"},
	}
}

func setupTestServer(t *testing.T, stubs ...*stubClient) *Server {
	t.Helper()
	cfg := testConfig()
	registry := llm.NewRegistry(cfg)
	for _, s := range stubs {
		registry.Register(s)
	}
	server, err := NewServer(cfg, registry, orchestrator.New(nil))
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestHealthCheck(t *testing.T) {
	server := setupTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestCorsMiddleware(t *testing.T) {
	handler := corsMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("sets CORS headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Access-Control-Allow-Origin header not set")
		}
		if rr.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("Access-Control-Allow-Methods header not set")
		}
		if rr.Header().Get("Access-Control-Allow-Headers") == "" {
			t.Error("Access-Control-Allow-Headers header not set")
		}
		if rr.Code != http.StatusTeapot {
			t.Errorf("status = %d, want next handler's status", rr.Code)
		}
	})

	t.Run("OPTIONS request returns 200", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/test", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("OPTIONS returned status %d, want %d", rr.Code, http.StatusOK)
		}
	})

	t.Run("configured origin", func(t *testing.T) {
		h := corsMiddleware("http://localhost:5173")(http.NotFoundHandler())
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestPreflightThroughRouter(t *testing.T) {
	server := setupTestServer(t)

	rr := doJSON(t, server, http.MethodOptions, "/v1/chat", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRespondJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	data := map[string]string{"key": "value"}
	respondJSON(rr, http.StatusCreated, data)

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusCreated)
	}

	if rr.Header().Get("Content-Type") != "application/json" {
		t.Error("Content-Type should be application/json")
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if resp["key"] != "value" {
		t.Errorf("key = %s, want value", resp["key"])
	}
}

func TestRespondJSON_NilData(t *testing.T) {
	rr := httptest.NewRecorder()

	respondJSON(rr, http.StatusNoContent, nil)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}

	if rr.Body.Len() != 0 {
		t.Error("body should be empty for nil data")
	}
}

func TestRespondError(t *testing.T) {
	rr := httptest.NewRecorder()

	respondError(rr, http.StatusBadRequest, "invalid input")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if resp["error"] != "invalid input" {
		t.Errorf("error = %s, want 'invalid input'", resp["error"])
	}
}

func TestStatus(t *testing.T) {
	server := setupTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/v1/status", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Providers, 5)
	assert.Equal(t, 0, resp.LocalQueue.Size)
	assert.False(t, resp.LocalQueue.Processing)
}

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind   llm.ErrorKind
		status int
		want   int
	}{
		{llm.KindAuth, 401, http.StatusUnauthorized},
		{llm.KindAuth, 403, http.StatusUnauthorized},
		{llm.KindRateLimit, 429, http.StatusTooManyRequests},
		{llm.KindConnection, 0, http.StatusBadGateway},
		{llm.KindAPIError, 404, http.StatusBadGateway},
		{llm.KindHTTP, 503, http.StatusServiceUnavailable},
		{llm.KindHTTP, 400, http.StatusBadRequest},
		{llm.KindHTTP, 0, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		pe := &llm.ProviderError{Kind: tt.kind, Provider: llm.ProviderOpenAI, Status: tt.status}
		assert.Equal(t, tt.want, statusForKind(pe), "%s/%d", tt.kind, tt.status)
	}
}

func decodeInto(rr *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rr.Body.Bytes(), v)
}
