package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
)

func pingCmd(opts *rootOptions) *cobra.Command {
	var (
		provider string
		model    string
		apiKey   string
		baseURL  string
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check an API key or the local inference server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			p := llm.NormalizeProvider(provider)
			registry := llm.NewRegistry(cfg)

			if p == llm.ProviderLocal {
				local, _ := registry.Local()
				models, err := local.ListModels(cmd.Context(), baseURL)
				if err != nil {
					return fmt.Errorf("local inference server unreachable: %w", err)
				}
				fmt.Fprintf(out, "✅ local inference reachable, %d models installed\n", len(models))
				for _, m := range models {
					fmt.Fprintf(out, "  - %s\n", m)
				}
				return nil
			}

			client, err := registry.Resolve(p, model)
			if err != nil {
				return err
			}
			key := resolveAPIKey(apiKey, client.Name())
			if key == "" {
				return fmt.Errorf("an API key is required for %s: pass --api-key or set %s", client.Name(), apiKeyEnv[client.Name()])
			}

			_, err = client.Chat(cmd.Context(), &llm.ChatRequest{
				Messages:  []llm.Message{llm.NewMessage(llm.RoleUser, "ping")},
				Model:     model,
				MaxTokens: 1,
				APIKey:    key,
			})
			switch {
			case err == nil:
				fmt.Fprintf(out, "✅ %s key is valid\n", client.Name())
			case llm.IsKind(err, llm.KindRateLimit):
				fmt.Fprintf(out, "✅ %s key is valid (rate limited but functional)\n", client.Name())
			default:
				return fmt.Errorf("%s key check failed: %s", client.Name(), llm.Redact(err.Error()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "local-inference", "Provider to check")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to use for the check")
	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "Provider API key (defaults to the provider's *_API_KEY env var)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Local inference server URL (configured URL when empty)")

	return cmd
}
