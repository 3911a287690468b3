package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/config"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "lantern",
		Short:         "Lantern - bring-your-own-key multi-provider chat",
		Long:          `Lantern talks to OpenAI, Anthropic, DeepSeek, Gemini and a local inference server through one interface.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(chatCmd(opts))
	rootCmd.AddCommand(pingCmd(opts))
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(searchCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))

	return rootCmd
}

func setupLogging(verbose bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadWithFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// apiKeyEnv names the environment variable holding a provider's key
var apiKeyEnv = map[llm.Provider]string{
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llm.ProviderDeepSeek:  "DEEPSEEK_API_KEY",
	llm.ProviderGemini:    "GEMINI_API_KEY",
}

// resolveAPIKey prefers the flag, then the provider's environment variable
func resolveAPIKey(flag string, provider llm.Provider) string {
	if flag != "" {
		return flag
	}
	if env, ok := apiKeyEnv[provider]; ok {
		return os.Getenv(env)
	}
	return ""
}

// maskConnectionString hides the password in a URL-style connection string
func maskConnectionString(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return s
	}
	return strings.Replace(s, u.User.String()+"@", u.User.Username()+":****@", 1)
}
