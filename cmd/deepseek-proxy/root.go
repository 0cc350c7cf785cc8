package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "deepseek-proxy",
	Short: "OpenAI-compatible proxy for DeepSeek-style providers",
	Long: `deepseek-proxy sits between OpenAI SDK clients and a DeepSeek-style
inference provider.

It provides:
  - Tiered truncation of long conversation histories
  - Retry and fallback across a configurable model chain
  - Reasoning-channel fusion into OpenAI-shaped responses
  - Streaming (SSE) pass-through with on-the-fly rewriting
  - Prometheus metrics and a SQLite request ledger`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
