package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/spigell/resume-evaluator/internal/queue"
	"github.com/spigell/resume-evaluator/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-evaluator"
)

type Config struct {
	AI         *AIConfig            `mapstructure:"ai"`
	Database   store.DatabaseConfig `mapstructure:"database"`
	Storage    *StorageConfig       `mapstructure:"storage"`
	Queue      queue.Config         `mapstructure:"queue"`
	Evaluation EvaluationConfig     `mapstructure:"evaluation"`
}

type AIConfig struct {
	Provider   string            `mapstructure:"provider"`
	Gemini     *GeminiConfig     `mapstructure:"gemini"`
	Groq       *GroqConfig       `mapstructure:"groq"`
	Embeddings *EmbeddingsConfig `mapstructure:"embeddings"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type GroqConfig struct {
	APIKey     string        `mapstructure:"api-key"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	BaseURL    string        `mapstructure:"base-url"`
	Model      string        `mapstructure:"model"`
	MaxRetries int           `mapstructure:"max-retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type EmbeddingsConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	ConnectionString     string `mapstructure:"connection-string"`
	ConnectionStringFile string `mapstructure:"connection-string-file"`
	Container            string `mapstructure:"container"`
}

type EvaluationConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-evaluator parses job descriptions and resumes and scores candidates against a fixed rubric",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"ai.gemini.api-key-file":         "GEMINI_API_KEY_FILE",
	"ai.groq.api-key-file":           "GROQ_API_KEY_FILE",
	"database.dsn":                   "DATABASE_DSN",
	"queue.url":                      "RABBITMQ_URL",
	"storage.connection-string-file": "AZURE_STORAGE_CONNECTION_STRING_FILE",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-evaluator.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("evaluation.concurrency", 4)
	viper.SetDefault("evaluation.timeout", 5*time.Minute)
	viper.SetDefault("queue.name", queue.DefaultQueue)
	viper.SetDefault("queue.prefetch", queue.DefaultPrefetch)
}

func initConfig() {
	// .env is optional, variables already set in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// without --config the file is optional; env variables can carry everything
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}

	return config, nil
}
