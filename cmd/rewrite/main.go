package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibreez3/email-rewriter/config"
	"github.com/ibreez3/email-rewriter/rewriter"
	"github.com/ibreez3/email-rewriter/service"
)

var (
	configPath string
	apiKey     string
)

var rootCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Rewrite emails in a chosen tone from the command line",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (empty for defaults)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (defaults to the configured environment variable)")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newService loads config and builds the same service the web server uses,
// logging to stderr.
func newService(verbose bool) (*service.Service, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	lc := cfg.Log
	lc.Format = "console"
	if !verbose {
		lc.Level = "warn"
	}
	log, err := service.NewLogger(lc)
	if err != nil {
		return nil, nil, err
	}
	rw := service.NewRewriter(cfg, log, rewriter.Hooks{})
	return service.New(cfg, rw, service.OpenAIClientFactory(cfg), log), log, nil
}
