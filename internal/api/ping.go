package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
)

// PingRequest is the body of POST /v1/ping
type PingRequest struct {
	Provider llm.Provider `json:"provider"`
	Model    string       `json:"model,omitempty"`
	APIKey   string       `json:"api_key"`
}

// PingResponse reports whether a provider accepted a key or is reachable
type PingResponse struct {
	OK      bool     `json:"ok"`
	Message string   `json:"message"`
	Models  []string `json:"models,omitempty"`
}

// pingProvider validates a key with a one-token completion
func (s *Server) pingProvider(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req PingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := s.resolveClient(req.Provider, req.Model, req.APIKey)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = client.Chat(r.Context(), &llm.ChatRequest{
		Messages:  []llm.Message{llm.NewMessage(llm.RoleUser, "ping")},
		Provider:  client.Name(),
		Model:     req.Model,
		MaxTokens: 1,
		APIKey:    req.APIKey,
	})
	if err == nil {
		respondJSON(w, http.StatusOK, PingResponse{OK: true, Message: "valid"})
		return
	}

	pe, ok := llm.AsProviderError(err)
	if !ok {
		respondFailure(w, err)
		return
	}

	// A rate-limited key was still accepted by the provider.
	if pe.Kind == llm.KindRateLimit {
		respondJSON(w, http.StatusOK, PingResponse{OK: true, Message: "valid (rate limited but functional)"})
		return
	}

	message := llm.Redact(pe.Message)
	log.Info().Str("provider", string(pe.Provider)).Str("code", string(pe.Kind)).Msg("ping failed")
	respondJSON(w, statusForKind(pe), PingResponse{OK: false, Message: message})
}

// pingLocal probes the local inference server without going through the
// chat pipeline or the dispatch queue.
func (s *Server) pingLocal(w http.ResponseWriter, r *http.Request) {
	provider := llm.NormalizeProvider(r.URL.Query().Get("provider"))
	if provider != llm.ProviderLocal {
		respondError(w, http.StatusBadRequest, "GET /v1/ping only supports provider=local-inference")
		return
	}

	baseURL := r.URL.Query().Get("baseURL")
	if baseURL == "" {
		baseURL = s.cfg.LLM.LocalInferenceURL
	}

	local, ok := s.registry.Local()
	if !ok {
		local = llm.NewOllamaClient(baseURL, nil)
	}

	models, err := local.ListModels(r.Context(), baseURL)
	if err != nil {
		respondJSON(w, http.StatusBadGateway, PingResponse{
			OK:      false,
			Message: fmt.Sprintf("cannot reach local inference server at %s: %v", baseURL, err),
		})
		return
	}

	respondJSON(w, http.StatusOK, PingResponse{
		OK:      true,
		Message: fmt.Sprintf("local inference server reachable, %d models installed", len(models)),
		Models:  models,
	})
}
