// Package main provides the entry point for the interview coach server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logging"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Interview coach API server and CLI",
	Long:  "Interview coach runs model-driven mock interviews and analyses résumés against job postings.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a config file (yaml, json or toml)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.New(), configFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func newGateway(cmd *cobra.Command, cfg *config.Config) (*llm.Gateway, error) {
	gw, err := llm.NewGateway(cmd.Context(), cfg.Models(), cfg.Credentials(), cfg.Middlewares()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create model gateway: %w", err)
	}
	return gw, nil
}
