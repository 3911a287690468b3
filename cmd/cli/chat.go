package main

import (
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/orchestrator"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/search"
)

func chatCmd(opts *rootOptions) *cobra.Command {
	var (
		provider    string
		model       string
		apiKey      string
		system      string
		temperature float64
		maxTokens   int
		webSearch   bool
		reasoning   bool
		enhanced    bool
	)

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send one message to a provider and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			registry := llm.NewRegistry(cfg)
			client, err := registry.Resolve(llm.NormalizeProvider(provider), model)
			if err != nil {
				return err
			}

			key := resolveAPIKey(apiKey, client.Name())
			if llm.RequiresAPIKey(client.Name()) && key == "" {
				return fmt.Errorf("an API key is required for %s: pass --api-key or set %s", client.Name(), apiKeyEnv[client.Name()])
			}

			var messages []llm.Message
			if system != "" {
				messages = append(messages, llm.NewMessage(llm.RoleSystem, system))
			}
			messages = append(messages, llm.NewMessage(llm.RoleUser, strings.Join(args, " ")))

			req := &llm.ChatRequest{
				Messages:      messages,
				Provider:      client.Name(),
				Model:         model,
				MaxTokens:     maxTokens,
				APIKey:        key,
				WebSearch:     webSearch,
				ShowReasoning: reasoning,
				Enhanced:      enhanced,
			}
			if cmd.Flags().Changed("temperature") {
				if temperature < 0 || temperature > 2 {
					return fmt.Errorf("temperature must be between 0 and 2")
				}
				req.Temperature = &temperature
			}

			searcher := search.NewService(cfg.Search.URL, nil, 0)
			resp, err := orchestrator.New(searcher).Run(ctx, client, req)
			if err != nil {
				return fmt.Errorf("chat failed: %s", llm.Redact(err.Error()))
			}

			printChatResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "auto", "Provider (openai, anthropic, deepseek, gemini, local-inference, auto)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name (provider default when empty)")
	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "Provider API key (defaults to the provider's *_API_KEY env var)")
	cmd.Flags().StringVarP(&system, "system", "s", "", "System prompt")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0.7, "Sampling temperature (0-2)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum tokens to generate (provider default when 0)")
	cmd.Flags().BoolVarP(&webSearch, "web-search", "w", false, "Augment research questions with web search results")
	cmd.Flags().BoolVarP(&reasoning, "reasoning", "r", false, "Ask for and show the model's reasoning")
	cmd.Flags().BoolVarP(&enhanced, "enhanced", "e", false, "Ask for assumptions, confidence, follow-ups and a report card")

	return cmd
}

func printChatResponse(w io.Writer, resp *orchestrator.Response) {
	if resp.Reasoning != "" {
		fmt.Fprintf(w, "--- reasoning ---\n%s\n--- answer ---\n", resp.Reasoning)
	}
	fmt.Fprintln(w, resp.Message.Content)

	if resp.Extras != nil {
		fmt.Fprintf(w, "\nConfidence: %s\n", resp.Confidence)
		for _, item := range resp.ReportCard {
			mark := "!"
			if item.Status == orchestrator.StatusPass {
				mark = "✓"
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, item.Category)
		}
	}

	if len(resp.WebSearchResults) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for i, r := range resp.WebSearchResults {
			fmt.Fprintf(w, "  %d. %s - %s\n", i+1, r.Title, r.URL)
		}
	}

	fmt.Fprintf(w, "\n[%s %s, task: %s", resp.Provider, resp.Model, resp.TaskType)
	if resp.Usage != nil {
		fmt.Fprintf(w, ", tokens: %d", resp.Usage.TotalTokens)
	}
	fmt.Fprintln(w, "]")
}
