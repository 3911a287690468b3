package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
)

// errBadRequest marks validation failures; its message is returned as-is
type errBadRequest struct {
	msg string
}

func (e *errBadRequest) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &errBadRequest{msg: fmt.Sprintf(format, args...)}
}

// decodeChatRequest reads and validates a chat body
func decodeChatRequest(r *http.Request) (*llm.ChatRequest, error) {
	var req llm.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "messages" {
			return nil, badRequest("messages must be an array")
		}
		return nil, badRequest("invalid request body")
	}

	if req.Messages == nil {
		return nil, badRequest("messages is required")
	}
	if len(req.Messages) == 0 {
		return nil, badRequest("messages must not be empty")
	}
	for i, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
		default:
			return nil, badRequest("messages[%d] has invalid role %q", i, m.Role)
		}
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return nil, badRequest("temperature must be between 0 and 2")
	}

	return &req, nil
}

// resolveClient picks the adapter for a request and enforces BYOK
func (s *Server) resolveClient(provider llm.Provider, model, apiKey string) (llm.Client, error) {
	client, err := s.registry.Resolve(llm.NormalizeProvider(string(provider)), model)
	if err != nil {
		return nil, badRequest("%v", err)
	}
	if llm.RequiresAPIKey(client.Name()) && apiKey == "" {
		return nil, badRequest("api_key is required for %s", client.Name())
	}
	return client, nil
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := decodeChatRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := s.resolveClient(req.Provider, req.Model, req.APIKey)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Provider = client.Name()

	log.Info().
		Str("provider", string(req.Provider)).
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Bool("web_search", req.WebSearch).
		Msg("chat request")

	resp, err := s.orchestrator.Run(r.Context(), client, req)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
