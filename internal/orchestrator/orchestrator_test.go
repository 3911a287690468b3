package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/search"
)

type fakeSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeClient struct {
	reply string
	err   error
	got   *llm.ChatRequest
}

func (f *fakeClient) Name() llm.Provider { return llm.ProviderOpenAI }

func (f *fakeClient) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{
		Message:  llm.NewMessage(llm.RoleAssistant, f.reply),
		Provider: llm.ProviderOpenAI,
		Model:    "gpt-4o-mini",
	}, nil
}

func chatRequest(messages ...llm.Message) *llm.ChatRequest {
	return &llm.ChatRequest{Messages: messages, Provider: llm.ProviderOpenAI, APIKey: "k"}
}

func TestPrepare_SingleDirectMessage(t *testing.T) {
	o := New(nil)
	req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "Hello there"})

	plan := o.Prepare(context.Background(), req)

	assert.Equal(t, TaskDirect, plan.TaskType)
	require.Len(t, plan.Request.Messages, 1, "no context message for single-message conversations")
	assert.Equal(t, "Hello there", plan.Request.Messages[0].Content)
}

func TestPrepare_DoesNotMutateInput(t *testing.T) {
	o := New(nil)
	req := chatRequest(
		llm.Message{Role: llm.RoleUser, Content: "hi"},
		llm.Message{Role: llm.RoleAssistant, Content: "hello"},
		llm.Message{Role: llm.RoleUser, Content: "Write a haiku"},
	)
	req.ShowReasoning = true

	_ = o.Prepare(context.Background(), req)

	require.Len(t, req.Messages, 3)
	assert.Equal(t, "Write a haiku", req.Messages[2].Content)
}

func TestPrepare_ContextMessagePlacement(t *testing.T) {
	o := New(nil)

	t.Run("after leading system messages", func(t *testing.T) {
		plan := o.Prepare(context.Background(), chatRequest(
			llm.Message{Role: llm.RoleSystem, Content: "persona"},
			llm.Message{Role: llm.RoleSystem, Content: "rules"},
			llm.Message{Role: llm.RoleUser, Content: "hi"},
		))

		msgs := plan.Request.Messages
		require.Len(t, msgs, 4)
		assert.Equal(t, "persona", msgs[0].Content)
		assert.Equal(t, "rules", msgs[1].Content)
		assert.Equal(t, llm.RoleSystem, msgs[2].Role)
		assert.Equal(t, contextInstruction, msgs[2].Content)
		assert.Equal(t, "hi", msgs[3].Content)
	})

	t.Run("at the front otherwise", func(t *testing.T) {
		plan := o.Prepare(context.Background(), chatRequest(
			llm.Message{Role: llm.RoleUser, Content: "hi"},
			llm.Message{Role: llm.RoleAssistant, Content: "hello"},
		))

		msgs := plan.Request.Messages
		require.Len(t, msgs, 3)
		assert.Equal(t, contextInstruction, msgs[0].Content)
	})
}

func TestPrepare_RewriteAndReasoning(t *testing.T) {
	o := New(nil)
	req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "Solve x + 2 = 5"})
	req.ShowReasoning = true

	plan := o.Prepare(context.Background(), req)

	assert.Equal(t, TaskMath, plan.TaskType)
	content := plan.Request.Messages[0].Content
	assert.True(t, strings.HasPrefix(content, "Solve x + 2 = 5 (show step-by-step calculations)"))
	assert.True(t, strings.HasSuffix(content, reasoningInstruction))
	assert.Contains(t, content, "<thinking>")
}

func TestPrepare_EnhancedInstruction(t *testing.T) {
	o := New(nil)
	req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "hello"})
	req.Enhanced = true

	plan := o.Prepare(context.Background(), req)

	assert.True(t, strings.HasSuffix(plan.Request.Messages[0].Content, enhancedInstruction))
}

func TestPrepare_WebSearch(t *testing.T) {
	results := []search.Result{{Title: "Release notes", URL: "https://go.dev/doc/devel/release", Snippet: "Go 1.23", Source: "go.dev"}}

	t.Run("research task with search requested", func(t *testing.T) {
		searcher := &fakeSearcher{results: results}
		req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "Recent changes to Go?"})
		req.WebSearch = true

		plan := New(searcher).Prepare(context.Background(), req)

		assert.Equal(t, TaskResearch, plan.TaskType)
		assert.Equal(t, []string{"Recent changes to Go"}, searcher.queries)
		assert.Equal(t, results, plan.SearchResults)

		want := search.FormatContext(results) + "\n\nUser question: Recent changes to Go? " + rewriteSuffixes[TaskResearch]
		assert.Equal(t, want, plan.Request.Messages[0].Content)
	})

	t.Run("latest keyword on a non-research task", func(t *testing.T) {
		searcher := &fakeSearcher{results: results}
		req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "Show the latest golang generics syntax"})
		req.WebSearch = true

		plan := New(searcher).Prepare(context.Background(), req)

		assert.Equal(t, TaskCode, plan.TaskType)
		assert.Len(t, searcher.queries, 1)
	})

	t.Run("not requested", func(t *testing.T) {
		searcher := &fakeSearcher{results: results}
		req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "Recent changes to Go?"})

		plan := New(searcher).Prepare(context.Background(), req)

		assert.Empty(t, searcher.queries)
		assert.Nil(t, plan.SearchResults)
	})

	t.Run("non-research task without latest", func(t *testing.T) {
		searcher := &fakeSearcher{results: results}
		req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "Write a poem"})
		req.WebSearch = true

		New(searcher).Prepare(context.Background(), req)

		assert.Empty(t, searcher.queries)
	})

	t.Run("search failure is swallowed", func(t *testing.T) {
		searcher := &fakeSearcher{err: errors.New("boom")}
		req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "latest news"})
		req.WebSearch = true

		plan := New(searcher).Prepare(context.Background(), req)

		assert.Nil(t, plan.SearchResults)
		assert.False(t, strings.Contains(plan.Request.Messages[0].Content, "User question:"))
	})
}

func TestRun_ExtractsReasoning(t *testing.T) {
	client := &fakeClient{reply: "<thinking>add the numbers</thinking>\n\n4"}
	req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "what is 2 + 2"})
	req.ShowReasoning = true

	resp, err := New(nil).Run(context.Background(), client, req)
	require.NoError(t, err)

	assert.Equal(t, "add the numbers", resp.Reasoning)
	assert.Equal(t, "4", resp.Message.Content)
	assert.Equal(t, TaskMath, resp.TaskType)
	assert.Nil(t, resp.Extras)
	assert.Contains(t, client.got.Messages[0].Content, "<thinking>")
}

func TestRun_LeavesThinkingWhenNotRequested(t *testing.T) {
	client := &fakeClient{reply: "<thinking>x</thinking>y"}

	resp, err := New(nil).Run(context.Background(), client, chatRequest(llm.Message{Role: llm.RoleUser, Content: "hi"}))
	require.NoError(t, err)

	assert.Empty(t, resp.Reasoning)
	assert.Equal(t, "<thinking>x</thinking>y", resp.Message.Content)
}

func TestRun_Enhanced(t *testing.T) {
	client := &fakeClient{reply: enhancedAnswer}
	req := chatRequest(llm.Message{Role: llm.RoleUser, Content: "How do I build a worker pool?"})
	req.Enhanced = true

	resp, err := New(nil).Run(context.Background(), client, req)
	require.NoError(t, err)
	require.NotNil(t, resp.Extras)
	assert.Equal(t, ConfidenceHigh, resp.Confidence)
	assert.Len(t, resp.ReportCard, 6)

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Contains(t, body, "message")
	assert.Equal(t, "openai", body["provider"])
	assert.Equal(t, "high", body["confidence"])
	assert.Contains(t, body, "reportCard")
	assert.Contains(t, body, "followUps")
	assert.NotContains(t, body, "reasoning")
}

func TestRun_PropagatesProviderError(t *testing.T) {
	providerErr := &llm.ProviderError{Kind: llm.KindAuth, Provider: llm.ProviderOpenAI, Message: "bad key", Status: 401}
	client := &fakeClient{err: providerErr}

	_, err := New(nil).Run(context.Background(), client, chatRequest(llm.Message{Role: llm.RoleUser, Content: "hi"}))
	assert.True(t, llm.IsKind(err, llm.KindAuth))
}
