package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://api.duckduckgo.com"
	maxRelated     = 5
)

// Result is one web search hit as shown to the model and cited by the UI
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	Source      string `json:"source"`
	PublishDate string `json:"publishDate,omitempty"`
}

// Service queries the DuckDuckGo Instant Answer API. It never fails on
// upstream trouble; it answers with static suggestion links instead.
type Service struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
}

// NewService creates a search service. A nil cache disables caching.
func NewService(baseURL string, cache Cache, cacheTTL time.Duration) *Service {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if cache == nil {
		cache = &NullCache{}
	}
	return &Service{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// Search returns results for query, falling back to static links when the
// query is blank or the API errors or has nothing to say. It never fails.
func (s *Service) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Fallback(query), nil
	}

	key := CacheKey(query)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	results, err := s.instantAnswer(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("web search failed, using fallback links")
		return Fallback(query), nil
	}
	if len(results) == 0 {
		log.Debug().Str("query", query).Msg("web search returned nothing, using fallback links")
		return Fallback(query), nil
	}

	if err := s.cache.Set(ctx, key, results, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache search results")
	}
	return results, nil
}

type instantAnswerResponse struct {
	Heading        string         `json:"Heading"`
	AbstractText   string         `json:"AbstractText"`
	AbstractURL    string         `json:"AbstractURL"`
	AbstractSource string         `json:"AbstractSource"`
	Answer         string         `json:"Answer"`
	RelatedTopics  []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string         `json:"Text"`
	FirstURL string         `json:"FirstURL"`
	Topics   []relatedTopic `json:"Topics"`
}

func (s *Service) instantAnswer(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed instantAnswerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return parsed.results(query), nil
}

func (r *instantAnswerResponse) results(query string) []Result {
	var results []Result

	switch {
	case r.AbstractText != "":
		title := r.Heading
		if title == "" {
			title = query
		}
		source := r.AbstractSource
		if source == "" {
			source = "DuckDuckGo"
		}
		results = append(results, Result{
			Title:   title,
			URL:     r.AbstractURL,
			Snippet: r.AbstractText,
			Source:  source,
		})
	case r.Answer != "":
		results = append(results, Result{
			Title:   "Instant answer: " + query,
			URL:     duckDuckGoURL(query),
			Snippet: r.Answer,
			Source:  "DuckDuckGo",
		})
	}

	related := 0
	for _, topic := range flattenTopics(r.RelatedTopics) {
		if related == maxRelated {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, Result{
			Title:   topicTitle(topic.Text),
			URL:     topic.FirstURL,
			Snippet: topic.Text,
			Source:  "DuckDuckGo",
		})
		related++
	}

	return results
}

// flattenTopics expands grouped topics in document order
func flattenTopics(topics []relatedTopic) []relatedTopic {
	var out []relatedTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			out = append(out, flattenTopics(t.Topics)...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// topicTitle uses the text before " - " as the title, the way the API
// formats "Name - description" topics.
func topicTitle(text string) string {
	if i := strings.Index(text, " - "); i > 0 {
		return text[:i]
	}
	const maxTitle = 60
	if len([]rune(text)) > maxTitle {
		return string([]rune(text)[:maxTitle]) + "..."
	}
	return text
}

func duckDuckGoURL(query string) string {
	return "https://duckduckgo.com/?q=" + url.QueryEscape(query)
}

// Fallback returns the static suggestion links used when live search is
// unavailable. It has no network dependency and always returns three results.
func Fallback(query string) []Result {
	q := url.QueryEscape(query)
	return []Result{
		{
			Title:   fmt.Sprintf("Search the web for %q", query),
			URL:     duckDuckGoURL(query),
			Snippet: "Live results were unavailable. Open a web search for this query.",
			Source:  "DuckDuckGo",
		},
		{
			Title:   "Wikipedia: " + query,
			URL:     "https://en.wikipedia.org/wiki/Special:Search?search=" + q,
			Snippet: "Encyclopedia articles related to this query.",
			Source:  "Wikipedia",
		},
		{
			Title:   "Scholarly articles: " + query,
			URL:     "https://scholar.google.com/scholar?q=" + q,
			Snippet: "Academic papers and citations related to this query.",
			Source:  "Google Scholar",
		},
	}
}

// FormatContext renders results as a context block for the model
func FormatContext(results []Result) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Web search results:\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(&sb, "   URL: %s\n", r.URL)
		}
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		}
		if r.PublishDate != "" {
			fmt.Fprintf(&sb, "   Source: %s (%s)\n", r.Source, r.PublishDate)
		} else if r.Source != "" {
			fmt.Fprintf(&sb, "   Source: %s\n", r.Source)
		}
	}
	sb.WriteString("\nUse these results where relevant and cite their URLs.")
	return sb.String()
}
