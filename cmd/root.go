package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/talent-matcher/internal/filtering"
	"github.com/spigell/talent-matcher/internal/store"
)

const (
	app       = "talent-matcher"
	envPrefix = "TALENT_MATCHER"
)

type Config struct {
	Store      store.Config      `mapstructure:"store"`
	Embeddings *EmbeddingsConfig `mapstructure:"embeddings"`
	Filters    filtering.Config  `mapstructure:"filters"`
}

type EmbeddingsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini ollama"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	Ollama   *OllamaConfig `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey            string        `mapstructure:"api-key" json:"-"`
	APIKeyFile        string        `mapstructure:"api-key-file"`
	Model             string        `mapstructure:"model"`
	TaskType          string        `mapstructure:"task-type"`
	MaxRetries        int           `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second" validate:"gte=0"`
	MaxLogLength      int           `mapstructure:"max-log-length" validate:"gte=0"`
}

type OllamaConfig struct {
	Host         string        `mapstructure:"host" validate:"omitempty,url"`
	Model        string        `mapstructure:"model"`
	MaxRetries   int           `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talent-matcher scores, ranks and screens candidates against job postings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talent-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("store", "", "record store driver: csv or sqlite")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("store.driver", rootCmd.PersistentFlags().Lookup("store"))

	setDefaults()
}

// setDefaults registers every key so that environment overrides reach Unmarshal.
func setDefaults() {
	viper.SetDefault("store.driver", store.DriverCSV)
	viper.SetDefault("store.candidates-file", "data/candidates.csv")
	viper.SetDefault("store.jobs-file", "data/jobs.csv")
	viper.SetDefault("store.sqlite-path", "data/talent-matcher.db")

	viper.SetDefault("embeddings.enabled", false)
	viper.SetDefault("embeddings.provider", "gemini")
	viper.SetDefault("embeddings.gemini.api-key", "")
	viper.SetDefault("embeddings.gemini.api-key-file", "")
	viper.SetDefault("embeddings.gemini.model", "gemini-embedding-001")
	viper.SetDefault("embeddings.gemini.task-type", "SEMANTIC_SIMILARITY")
	viper.SetDefault("embeddings.gemini.max-retries", 2)
	viper.SetDefault("embeddings.gemini.timeout", 15*time.Second)
	viper.SetDefault("embeddings.gemini.requests-per-second", 0)
	viper.SetDefault("embeddings.gemini.max-log-length", 120)
	viper.SetDefault("embeddings.ollama.host", "")
	viper.SetDefault("embeddings.ollama.model", "nomic-embed-text")
	viper.SetDefault("embeddings.ollama.max-retries", 2)
	viper.SetDefault("embeddings.ollama.timeout", 30*time.Second)
	viper.SetDefault("embeddings.ollama.max-log-length", 120)

	viper.SetDefault("filters.exclude-statuses", []string{})
	viper.SetDefault("filters.score-above", 0)
	viper.SetDefault("filters.exclude-file", "")
	viper.SetDefault("filters.only-new", false)
}

func initConfig() {
	// A missing .env is fine; the environment itself may carry everything.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// We can't proceed if the given config file is unreadable.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if err := validator.New().Struct(config); err != nil {
		return config, err
	}

	return config, nil
}
