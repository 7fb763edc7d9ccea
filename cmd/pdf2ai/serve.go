package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/csheth/pdf2ai/internal/cache"
	"github.com/csheth/pdf2ai/internal/llm"
	"github.com/csheth/pdf2ai/internal/logging"
	"github.com/csheth/pdf2ai/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the summarization backend",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	logger := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stdout,
		Service: "pdf2ai-backend",
	})

	model, err := llm.NewFromEnv(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		Endpoint: cfg.LLM.Endpoint,
		APIKey:   cfg.LLM.APIKey,
	})
	if err != nil {
		return fmt.Errorf("configure model: %w", err)
	}

	store, err := cache.New(cache.Config{
		Driver:     cfg.Cache.Driver,
		MaxEntries: cfg.Cache.MaxEntries,
		Dir:        cfg.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		},
	})
	if err != nil {
		return fmt.Errorf("configure cache: %w", err)
	}
	defer store.Close()

	logger.Info().
		Str("model", model.Name()).
		Str("cache", firstNonEmpty(cfg.Cache.Driver, "memory")).
		Msg("backend configured")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Deps{
		Config:    cfg.Server,
		MaxUpload: cfg.Upload.MaxSize,
		MaxChars:  cfg.LLM.MaxChars,
		CacheTTL:  cfg.Cache.TTL,
		Model:     model,
		Cache:     store,
		Logger:    logger,
	})
	return srv.Run(ctx)
}
