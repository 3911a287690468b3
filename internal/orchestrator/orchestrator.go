// Package orchestrator wraps a provider call with prompt augmentation on the
// way in and structured extraction on the way out.
package orchestrator

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/search"
)

// Searcher finds web results for a query
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Orchestrator holds no per-request state and is safe for concurrent use
type Orchestrator struct {
	searcher Searcher
}

// New creates an orchestrator. A nil searcher disables web search.
func New(searcher Searcher) *Orchestrator {
	return &Orchestrator{searcher: searcher}
}

// Plan is an augmented request ready to send to a provider
type Plan struct {
	Request       *llm.ChatRequest
	TaskType      TaskType
	SearchResults []search.Result
}

// Response is the chat response envelope returned to callers
type Response struct {
	*llm.ChatResponse
	TaskType         TaskType        `json:"taskType"`
	WebSearchResults []search.Result `json:"webSearchResults,omitempty"`
	Reasoning        string          `json:"reasoning,omitempty"`
	*Extras
}

// Run prepares req, sends it through client and annotates the answer
func (o *Orchestrator) Run(ctx context.Context, client llm.Client, req *llm.ChatRequest) (*Response, error) {
	plan := o.Prepare(ctx, req)

	resp, err := client.Chat(ctx, plan.Request)
	if err != nil {
		return nil, err
	}

	return Finish(plan, resp), nil
}

// Prepare classifies the latest user message and augments the conversation.
// req is not modified.
func (o *Orchestrator) Prepare(ctx context.Context, req *llm.ChatRequest) *Plan {
	out := *req
	out.Messages = make([]llm.Message, len(req.Messages))
	copy(out.Messages, req.Messages)

	plan := &Plan{Request: &out, TaskType: TaskDirect}

	idx := latestUserMessage(out.Messages)
	if idx >= 0 {
		original := out.Messages[idx].Content
		plan.TaskType = Classify(original)
		content := Rewrite(original, plan.TaskType)

		if o.searcher != nil && shouldSearch(req.WebSearch, plan.TaskType, original) {
			plan.SearchResults = o.search(ctx, original)
			if len(plan.SearchResults) > 0 {
				content = search.FormatContext(plan.SearchResults) + searchQuestionPrefix + content
			}
		}

		if req.ShowReasoning {
			content += reasoningInstruction
		}
		if req.Enhanced {
			content += enhancedInstruction
		}
		out.Messages[idx].Content = content
	}

	if len(req.Messages) > 1 {
		out.Messages = injectContext(out.Messages)
	}

	log.Debug().
		Str("task", string(plan.TaskType)).
		Int("search_results", len(plan.SearchResults)).
		Bool("reasoning", req.ShowReasoning).
		Bool("enhanced", req.Enhanced).
		Msg("request prepared")

	return plan
}

func (o *Orchestrator) search(ctx context.Context, message string) []search.Result {
	query := SearchQuery(message)
	results, err := o.searcher.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("web search skipped")
		return nil
	}
	return results
}

// Finish extracts reasoning and extras from resp according to the plan
func Finish(plan *Plan, resp *llm.ChatResponse) *Response {
	annotated := *resp
	out := &Response{
		ChatResponse:     &annotated,
		TaskType:         plan.TaskType,
		WebSearchResults: plan.SearchResults,
	}

	if plan.Request.ShowReasoning {
		out.Reasoning, annotated.Message.Content = ExtractReasoning(annotated.Message.Content)
	}
	if plan.Request.Enhanced {
		extras := ExtractExtras(annotated.Message.Content)
		out.Extras = &extras
	}

	return out
}

func latestUserMessage(messages []llm.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return i
		}
	}
	return -1
}

// injectContext inserts the conversation-context system message after any
// leading system messages.
func injectContext(messages []llm.Message) []llm.Message {
	pos := 0
	for pos < len(messages) && messages[pos].Role == llm.RoleSystem {
		pos++
	}

	out := make([]llm.Message, 0, len(messages)+1)
	out = append(out, messages[:pos]...)
	out = append(out, llm.NewMessage(llm.RoleSystem, contextInstruction))
	out = append(out, messages[pos:]...)
	return out
}
