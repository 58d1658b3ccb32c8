package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibreez3/email-rewriter/config"
	"github.com/ibreez3/email-rewriter/metrics"
	"github.com/ibreez3/email-rewriter/service"
	"github.com/ibreez3/email-rewriter/web"
)

var (
	configPath string
	port       int
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "AI email rewriter web server",
	Long:  "Serves a browser form and JSON API that rewrite pasted emails in a chosen tone through a remote language model.",
	RunE:  runServe,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "config/config.yaml", "Path to YAML config (empty for defaults)")
	rootCmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides config)")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	log, err := service.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if cfg.OpenAI.APIKey == "" {
		log.Warn("no API key in environment; callers must supply one", zap.String("env", cfg.OpenAI.APIKeyEnv))
	}

	m := metrics.New()
	rw := service.NewRewriter(cfg, log, m.Hooks())
	svc := service.New(cfg, rw, service.OpenAIClientFactory(cfg), log.Named("service"))

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           web.NewRouter(svc, m.Handler(), log.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.Strings("models", cfg.Models))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
