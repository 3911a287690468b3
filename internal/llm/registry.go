package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/config"
)

// localModelFamilies are open-weight model names served by local inference
var localModelFamilies = []string{
	"mistral", "llama", "codellama", "qwen", "phi", "gemma", "tinyllama", "deepseek-llm",
}

// DetectProvider maps a free-text model name to a provider. Rules are
// checked in order and the first match wins, so "deepseek-llama-70b"
// resolves to deepseek, not local inference.
func DetectProvider(model string) Provider {
	m := strings.ToLower(model)

	switch {
	case containsAny(m, "claude", "anthropic"):
		return ProviderAnthropic
	case containsAny(m, "deepseek", "deekseek", "r1"):
		return ProviderDeepSeek
	case containsAny(m, "gemini", "google"):
		return ProviderGemini
	case containsAny(m, localModelFamilies...):
		return ProviderLocal
	default:
		return ProviderOpenAI
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NormalizeProvider canonicalizes a provider key from user input. An empty
// key means auto; "ollama" is accepted for local inference.
func NormalizeProvider(key string) Provider {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "":
		return ProviderAuto
	case "ollama", "local":
		return ProviderLocal
	}
	return Provider(k)
}

// RequiresAPIKey reports whether calls to p need a caller-supplied key
func RequiresAPIKey(p Provider) bool {
	return p != ProviderLocal
}

// Registry maps provider keys to adapters and owns the local dispatch queue
type Registry struct {
	clients map[Provider]Client
	queue   *LocalQueue
}

// NewRegistry builds every adapter from config. All providers are always
// registered; keys arrive per request.
func NewRegistry(cfg *config.Config) *Registry {
	queue := NewLocalQueue()
	r := &Registry{
		clients: make(map[Provider]Client),
		queue:   queue,
	}

	r.Register(NewOpenAIClient(cfg.LLM.OpenAIBaseURL))
	r.Register(NewAnthropicClient(cfg.LLM.AnthropicBaseURL))
	r.Register(NewDeepSeekClient(cfg.LLM.DeepSeekBaseURL))
	r.Register(NewGeminiClient(cfg.LLM.GeminiBaseURL))
	r.Register(NewOllamaClient(cfg.LLM.LocalInferenceURL, queue))

	return r
}

// Register adds or replaces the adapter for c.Name()
func (r *Registry) Register(c Client) {
	r.clients[c.Name()] = c
	log.Debug().Str("provider", string(c.Name())).Msg("provider registered")
}

// Client returns the adapter registered for p
func (r *Registry) Client(p Provider) (Client, bool) {
	c, ok := r.clients[p]
	return c, ok
}

// Resolve returns the adapter for provider, running detection on model
// when provider is auto.
func (r *Registry) Resolve(provider Provider, model string) (Client, error) {
	if provider == ProviderAuto {
		provider = DetectProvider(model)
		log.Debug().Str("model", model).Str("provider", string(provider)).Msg("auto-detected provider")
	}

	c, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	return c, nil
}

// Providers returns the registered provider keys in sorted order
func (r *Registry) Providers() []Provider {
	providers := make([]Provider, 0, len(r.clients))
	for p := range r.clients {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })
	return providers
}

// LocalQueue returns the queue shared by local inference calls
func (r *Registry) LocalQueue() *LocalQueue {
	return r.queue
}

// Local returns the local inference adapter, if it is the stock one
func (r *Registry) Local() (*OllamaClient, bool) {
	c, ok := r.clients[ProviderLocal].(*OllamaClient)
	return c, ok
}
