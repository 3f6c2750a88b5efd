package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Ollama  OllamaConfig  `yaml:"ollama" mapstructure:"ollama"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Bench   BenchConfig   `yaml:"bench" mapstructure:"bench"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// OllamaConfig holds the model backend settings.
type OllamaConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey       string  `yaml:"api_key" mapstructure:"api_key"`
	Model        string  `yaml:"model" mapstructure:"model"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries   int     `yaml:"max_retries" mapstructure:"max_retries"`
	MaxTokens    int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// Timeout returns the per-attempt timeout as a duration.
func (c OllamaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ExtractConfig configures extraction behavior.
type ExtractConfig struct {
	// EntityTypes is the supported label catalog; selections are validated
	// against it.
	EntityTypes []string `yaml:"entity_types" mapstructure:"entity_types"`
}

// BatchConfig configures batch dispatch.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// BenchConfig configures benchmark sweeps.
type BenchConfig struct {
	ConcurrencyLevels []int  `yaml:"concurrency_levels" mapstructure:"concurrency_levels"`
	OutputFile        string `yaml:"output_file" mapstructure:"output_file"`
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ollama.base_url", "http://localhost:11434/v1")
	v.SetDefault("ollama.api_key", "ollama")
	v.SetDefault("ollama.model", "granite3.3:8b")
	v.SetDefault("ollama.timeout_secs", 120)
	v.SetDefault("ollama.max_retries", 3)
	v.SetDefault("ollama.max_tokens", 512)
	v.SetDefault("ollama.rate_limit_rps", 0)
	v.SetDefault("extract.entity_types", []string{
		"Person", "Orders", "Organization", "Date", "Time", "Location", "Money", "Product",
	})
	v.SetDefault("batch.concurrency", 8)
	v.SetDefault("bench.concurrency_levels", []int{2, 4, 8})
	v.SetDefault("bench.output_file", "performance.txt")
	v.SetDefault("store.path", "extract.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
