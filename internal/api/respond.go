package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// ProviderErrorResponse is the body returned for a classified provider failure
type ProviderErrorResponse struct {
	Error    string        `json:"error"`
	Details  string        `json:"details"`
	Provider llm.Provider  `json:"provider"`
	Code     llm.ErrorKind `json:"code"`
}

// statusForKind maps a provider failure to the HTTP status returned to callers
func statusForKind(pe *llm.ProviderError) int {
	switch pe.Kind {
	case llm.KindAuth:
		return http.StatusUnauthorized
	case llm.KindRateLimit:
		return http.StatusTooManyRequests
	case llm.KindConnection, llm.KindAPIError:
		return http.StatusBadGateway
	default:
		if pe.Status >= 400 && pe.Status <= 599 {
			return pe.Status
		}
		return http.StatusInternalServerError
	}
}

var kindTitles = map[llm.ErrorKind]string{
	llm.KindAuth:       "Authentication failed",
	llm.KindRateLimit:  "Rate limit exceeded",
	llm.KindHTTP:       "Provider request failed",
	llm.KindConnection: "Local inference unavailable",
	llm.KindAPIError:   "Local inference error",
}

// respondFailure writes a classified or unclassified error. Credentials are
// redacted before anything is logged or returned.
func respondFailure(w http.ResponseWriter, err error) {
	if pe, ok := llm.AsProviderError(err); ok {
		status := statusForKind(pe)
		details := llm.Redact(pe.Message)
		log.Warn().
			Str("provider", string(pe.Provider)).
			Str("code", string(pe.Kind)).
			Int("upstream_status", pe.Status).
			Str("details", details).
			Msg("provider call failed")

		respondJSON(w, status, ProviderErrorResponse{
			Error:    kindTitles[pe.Kind],
			Details:  details,
			Provider: pe.Provider,
			Code:     pe.Kind,
		})
		return
	}

	details := llm.Redact(err.Error())
	log.Error().Str("details", details).Msg("unexpected chat failure")
	respondJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Internal server error",
		"details": details,
	})
}
