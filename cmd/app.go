package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/ai"
	"github.com/spigell/talent-matcher/internal/ai/gemini"
	"github.com/spigell/talent-matcher/internal/ai/ollama"
	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/matching"
	"github.com/spigell/talent-matcher/internal/scoring"
	"github.com/spigell/talent-matcher/internal/secrets"
	"github.com/spigell/talent-matcher/internal/service"
	"github.com/spigell/talent-matcher/internal/store"
)

const geminiAPIKeyEnv = "GEMINI_API_KEY"

// application bundles what every command needs.
type application struct {
	logger  *zap.Logger
	config  *Config
	store   store.Store
	service *service.Service
}

// newApplication builds the logger, reads the config and opens the record store.
// Failures are fatal, as a command cannot do anything useful without them.
func newApplication(ctx context.Context) *application {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	st, err := store.Open(ctx, config.Store)
	if err != nil {
		logger.Fatal("opening the record store", zap.Error(err), zap.String("driver", config.Store.Driver))
	}

	embedder := newEmbedder(ctx, config.Embeddings, logger)
	engine := matching.New(scoring.NewSemantic(embedder, logger), logger)

	return &application{
		logger:  logger,
		config:  config,
		store:   st,
		service: service.New(st, engine, logger),
	}
}

func (a *application) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing the record store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// newEmbedder returns the configured embedding backend or nil. Any problem here
// leaves scoring on the TF-IDF fallback instead of failing the command.
func newEmbedder(ctx context.Context, cfg *EmbeddingsConfig, log *zap.Logger) ai.Embedder {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	switch strings.TrimSpace(strings.ToLower(cfg.Provider)) {
	case "", "gemini":
		return newGeminiEmbedder(ctx, cfg.Gemini, log)
	case "ollama":
		return newOllamaEmbedder(cfg.Ollama, log)
	default:
		log.Warn("unsupported embeddings provider, using tf-idf only", zap.String("provider", cfg.Provider))
		return nil
	}
}

func newGeminiEmbedder(ctx context.Context, gcfg *GeminiConfig, log *zap.Logger) ai.Embedder {
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
		Env:   geminiAPIKeyEnv,
	})
	if err != nil {
		log.Warn("embeddings disabled, using tf-idf only",
			zap.Error(err),
			zap.String("hint", "set embeddings.gemini.api-key-file or "+geminiAPIKeyEnv),
		)
		return nil
	}

	embedder, err := gemini.NewEmbedder(ctx, apiKey, gemini.Options{
		Model:             gcfg.Model,
		TaskType:          gcfg.TaskType,
		MaxRetries:        gcfg.MaxRetries,
		Timeout:           gcfg.Timeout,
		RequestsPerSecond: gcfg.RequestsPerSecond,
		MaxLogLength:      gcfg.MaxLogLength,
	}, logger.WithCommonFields(log, "gemini", gcfg.Model))
	if err != nil {
		log.Warn("embeddings disabled, using tf-idf only", zap.Error(err))
		return nil
	}

	return embedder
}

func newOllamaEmbedder(ocfg *OllamaConfig, log *zap.Logger) ai.Embedder {
	if ocfg == nil {
		ocfg = &OllamaConfig{}
	}

	embedder, err := ollama.NewEmbedder(ollama.Options{
		Host:         ocfg.Host,
		Model:        ocfg.Model,
		MaxRetries:   ocfg.MaxRetries,
		Timeout:      ocfg.Timeout,
		MaxLogLength: ocfg.MaxLogLength,
	}, logger.WithCommonFields(log, "ollama", ocfg.Model))
	if err != nil {
		log.Warn("embeddings disabled, using tf-idf only", zap.Error(err))
		return nil
	}

	return embedder
}

// printJSON writes v to stdout. Logs go to stderr, so the output can be piped.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
