// Package app assembles the application object graph with a dig container so
// commands share one wiring path.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/dig"

	"github.com/courseflow/courseflow/config"
	"github.com/courseflow/courseflow/logging"
	"github.com/courseflow/courseflow/model"
	"github.com/courseflow/courseflow/model/anthropic"
	"github.com/courseflow/courseflow/model/openai"
	"github.com/courseflow/courseflow/rag"
	"github.com/courseflow/courseflow/server"
	"github.com/courseflow/courseflow/store"
)

// BuildContainer wires config → logger → store → client → rag → server.
// cfgPath may be empty to run on defaults plus environment overrides.
func BuildContainer(cfgPath string) (*dig.Container, error) {
	c := dig.New()

	providers := []any{
		func() (*config.Config, error) { return config.Load(cfgPath) },
		newLogger,
		newStore,
		newClient,
		newSystem,
		newServer,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return nil, fmt.Errorf("provide dependency: %w", err)
		}
	}
	return c, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return logging.New(&logging.Config{Level: level, Format: cfg.LogFormat})
}

func newStore(cfg *config.Config) store.VectorStore {
	return store.NewInMemoryStore(cfg.MaxResults)
}

func newClient(cfg *config.Config, logger logging.Logger) model.Client {
	var client model.Client
	switch cfg.Provider {
	case "openai":
		client = openai.NewClient(func(o *openai.Options) {
			o.Model = cfg.Model
			o.Temperature = cfg.Temperature
			o.MaxTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.OpenAIAPIKey
		})
	default:
		client = anthropic.NewClient(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Model)
			o.Temperature = cfg.Temperature
			o.MaxTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.AnthropicAPIKey
		})
	}

	info := client.Info()
	logger.Info("completion client ready", "provider", info.Provider, "model", info.Name, "supports_tools", info.SupportsTools)
	return client
}

func newSystem(cfg *config.Config, client model.Client, vs store.VectorStore, logger logging.Logger) (*rag.System, error) {
	return rag.New(client, vs, func(o *rag.Options) {
		o.MaxRounds = cfg.MaxRounds
		o.MaxHistory = cfg.MaxHistory
		o.ChunkSize = cfg.ChunkSize
		o.Overlap = cfg.ChunkOverlap
		o.APIKeyConfigured = cfg.APIKey() != ""
		o.Logger = logger
	})
}

func newServer(cfg *config.Config, system *rag.System, logger logging.Logger) *server.Server {
	return server.New(system, cfg.ListenAddr, logger)
}
