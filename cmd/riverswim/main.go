package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	for _, envFile := range []string{
		".env",
		"../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "riverswim",
		Short:        "RiverSwim is a small MDP for studying exploration, driven by random, human or LLM agents.",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRunCmd(), newTransitionsCmd())
	return rootCmd
}
