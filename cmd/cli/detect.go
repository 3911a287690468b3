package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
)

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <model>...",
		Short: "Show which provider a model name routes to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, model := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", model, llm.DetectProvider(model))
			}
			return nil
		},
	}
}
