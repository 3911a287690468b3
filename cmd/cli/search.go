package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/search"
)

func searchCmd(opts *rootOptions) *cobra.Command {
	var showContext bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a web search the way chat augmentation does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			results, err := search.NewService(cfg.Search.URL, nil, 0).Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showContext {
				fmt.Fprintln(out, search.FormatContext(results))
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
				if r.Snippet != "" {
					fmt.Fprintf(out, "   %s\n", r.Snippet)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showContext, "context", false, "Print the context block sent to the model")

	return cmd
}
