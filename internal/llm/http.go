package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxDetailLen bounds how much of an upstream error body ends up in messages
const maxDetailLen = 1024

// upstreamResponse is a fully read HTTP response
type upstreamResponse struct {
	Status int
	Body   []byte
}

func (r *upstreamResponse) ok() bool {
	return r.Status >= 200 && r.Status < 300
}

// postJSON sends payload to url. A non-nil error means the request never
// produced an HTTP response (dial failure, reset, cancellation).
func postJSON(ctx context.Context, httpClient *http.Client, url string, headers map[string]string, payload interface{}) (*upstreamResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &upstreamResponse{Status: resp.StatusCode, Body: data}, nil
}

// errorDetail pulls a human message out of a provider error body. It
// understands {"error":{"message":..}}, {"error":".."} and {"message":..};
// anything else falls back to the raw text.
func errorDetail(body []byte) string {
	var parsed struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.Error) > 0 {
			var nested struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			}
			if err := json.Unmarshal(parsed.Error, &nested); err == nil && nested.Message != "" {
				if nested.Type != "" {
					return nested.Type + ": " + nested.Message
				}
				return nested.Message
			}
			var flat string
			if err := json.Unmarshal(parsed.Error, &flat); err == nil && flat != "" {
				return flat
			}
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxDetailLen {
		cut := maxDetailLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

// decodeSuccess unmarshals a 2xx body, rejecting empty and non-JSON bodies
func decodeSuccess(body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON in response: %w", err)
	}
	return nil
}
