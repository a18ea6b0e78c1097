package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	t.Cleanup(func() {
		viper.Reset()
		setDefaults()
	})
}

func TestGetConfigDefaults(t *testing.T) {
	resetViper(t)

	config, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, "csv", config.Store.Driver)
	assert.Equal(t, "data/candidates.csv", config.Store.CandidatesFile)
	require.NotNil(t, config.Embeddings)
	assert.False(t, config.Embeddings.Enabled)
	require.NotNil(t, config.Embeddings.Gemini)
	assert.Equal(t, 15*time.Second, config.Embeddings.Gemini.Timeout)
	assert.Equal(t, 2, config.Embeddings.Gemini.MaxRetries)
	assert.Empty(t, config.Filters.ExcludeStatuses)
	require.NotNil(t, config.Embeddings.Ollama)
	assert.Equal(t, "nomic-embed-text", config.Embeddings.Ollama.Model)
	assert.Equal(t, 30*time.Second, config.Embeddings.Ollama.Timeout)
}

func TestGetConfigOverrides(t *testing.T) {
	resetViper(t)
	viper.Set("store.driver", "sqlite")
	viper.Set("embeddings.gemini.timeout", "3s")
	viper.Set("filters.exclude-statuses", "Hired,Rejected")

	config, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", config.Store.Driver)
	assert.Equal(t, 3*time.Second, config.Embeddings.Gemini.Timeout)
	assert.Equal(t, []string{"Hired", "Rejected"}, config.Filters.ExcludeStatuses)
}

func TestGetConfigValidates(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "unknown driver", key: "store.driver", value: "postgres"},
		{name: "unknown provider", key: "embeddings.provider", value: "openai"},
		{name: "score out of range", key: "filters.score-above", value: 1.5},
		{name: "negative retries", key: "embeddings.gemini.max-retries", value: -1},
		{name: "ollama host is not a url", key: "embeddings.ollama.host", value: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			viper.Set(tt.key, tt.value)

			_, err := getConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewEmbedderFallsBack(t *testing.T) {
	t.Setenv(geminiAPIKeyEnv, "")
	ctx := context.Background()

	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	assert.Nil(t, newEmbedder(ctx, nil, log))
	assert.Nil(t, newEmbedder(ctx, &EmbeddingsConfig{Enabled: false}, log))
	assert.Zero(t, logs.Len())

	assert.Nil(t, newEmbedder(ctx, &EmbeddingsConfig{Enabled: true, Provider: "gemini"}, log))
	assert.Equal(t, 1, logs.FilterMessage("embeddings disabled, using tf-idf only").Len())

	assert.Nil(t, newEmbedder(ctx, &EmbeddingsConfig{Enabled: true, Provider: "openai"}, log))
	assert.Equal(t, 1, logs.FilterMessage("unsupported embeddings provider, using tf-idf only").Len())
}

func TestNewEmbedderOllama(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	embedder := newEmbedder(ctx, &EmbeddingsConfig{
		Enabled:  true,
		Provider: "ollama",
		Ollama:   &OllamaConfig{Host: "http://127.0.0.1:11434", Model: "nomic-embed-text"},
	}, log)
	require.NotNil(t, embedder)
	assert.Zero(t, logs.Len())

	assert.Nil(t, newEmbedder(ctx, &EmbeddingsConfig{
		Enabled:  true,
		Provider: "ollama",
		Ollama:   &OllamaConfig{Host: "localhost"},
	}, log))
	assert.Equal(t, 1, logs.FilterMessage("embeddings disabled, using tf-idf only").Len())
}

func TestGetConfigSelectsOllama(t *testing.T) {
	resetViper(t)
	viper.Set("embeddings.provider", "ollama")
	viper.Set("embeddings.ollama.host", "http://ollama:11434")

	config, err := getConfig()
	require.NoError(t, err)
	assert.Equal(t, "ollama", config.Embeddings.Provider)
	assert.Equal(t, "http://ollama:11434", config.Embeddings.Ollama.Host)
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "talent-matcher version: unknown", versionString())

	commit = "abc123"
	t.Cleanup(func() { commit = "" })
	assert.Equal(t, "talent-matcher version: unknown (abc123)", versionString())
}
