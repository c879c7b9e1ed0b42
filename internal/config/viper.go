package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	AI struct {
		Model  string `mapstructure:"model" yaml:"model"`
		APIKey string `mapstructure:"api_key" yaml:"-"` // never serialized
	} `mapstructure:"ai" yaml:"ai"`

	Extraction struct {
		RetryAttempts       int `mapstructure:"retry_attempts" yaml:"retry_attempts"`
		RetryDelaySeconds   int `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
		TabularTimeoutSecs  int `mapstructure:"tabular_timeout_seconds" yaml:"tabular_timeout_seconds"`
		PDFTimeoutSeconds   int `mapstructure:"pdf_timeout_seconds" yaml:"pdf_timeout_seconds"`
		ImageTimeoutSeconds int `mapstructure:"image_timeout_seconds" yaml:"image_timeout_seconds"`
	} `mapstructure:"extraction" yaml:"extraction"`

	Chunking struct {
		// Threshold is the transaction count above which a batch is split.
		Threshold int `mapstructure:"threshold" yaml:"threshold"`
		// MaxPerChunk is the window size for count-based splitting.
		MaxPerChunk int `mapstructure:"max_per_chunk" yaml:"max_per_chunk"`
		// TokenCeiling bounds the estimated token size of raw-text chunks.
		TokenCeiling int `mapstructure:"token_ceiling" yaml:"token_ceiling"`
	} `mapstructure:"chunking" yaml:"chunking"`

	Analysis struct {
		Policy              string `mapstructure:"policy" yaml:"policy"`
		ChunkTimeoutSeconds int    `mapstructure:"chunk_timeout_seconds" yaml:"chunk_timeout_seconds"`
		BatchTimeoutSeconds int    `mapstructure:"batch_timeout_seconds" yaml:"batch_timeout_seconds"`
	} `mapstructure:"analysis" yaml:"analysis"`

	Averaging struct {
		// PartialMonthRatio scales the mean transaction count to the
		// threshold under which a boundary month is considered partial.
		PartialMonthRatio float64 `mapstructure:"partial_month_ratio" yaml:"partial_month_ratio"`
	} `mapstructure:"averaging" yaml:"averaging"`

	Confidence struct {
		WeightAI     float64 `mapstructure:"weight_ai" yaml:"weight_ai"`
		WeightVolume float64 `mapstructure:"weight_volume" yaml:"weight_volume"`
		WeightFlags  float64 `mapstructure:"weight_flags" yaml:"weight_flags"`
		WeightMonths float64 `mapstructure:"weight_months" yaml:"weight_months"`
		WeightIncome float64 `mapstructure:"weight_income" yaml:"weight_income"`
		Floor        float64 `mapstructure:"floor" yaml:"floor"`
		Ceiling      float64 `mapstructure:"ceiling" yaml:"ceiling"`
	} `mapstructure:"confidence" yaml:"confidence"`

	Flags struct {
		RulesFile string `mapstructure:"rules_file" yaml:"rules_file"`
	} `mapstructure:"flags" yaml:"flags"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then an optional YAML file, then CASHFLOW_* environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.cashflow-analyzer")
	v.AddConfigPath(".cashflow-analyzer")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CASHFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// missing config file is fine, defaults and env vars apply
	}

	// The API key always comes from the conventional unprefixed variable.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ai.model", "gemini-2.0-flash")

	v.SetDefault("extraction.retry_attempts", 2)
	v.SetDefault("extraction.retry_delay_seconds", 2)
	v.SetDefault("extraction.tabular_timeout_seconds", 45)
	v.SetDefault("extraction.pdf_timeout_seconds", 90)
	v.SetDefault("extraction.image_timeout_seconds", 120)

	v.SetDefault("chunking.threshold", 300)
	v.SetDefault("chunking.max_per_chunk", 150)
	v.SetDefault("chunking.token_ceiling", 15000)

	v.SetDefault("analysis.policy", PolicyFailFast)
	v.SetDefault("analysis.chunk_timeout_seconds", 60)
	v.SetDefault("analysis.batch_timeout_seconds", 120)

	v.SetDefault("averaging.partial_month_ratio", 0.5)

	v.SetDefault("confidence.weight_ai", 0.40)
	v.SetDefault("confidence.weight_volume", 0.20)
	v.SetDefault("confidence.weight_flags", 0.20)
	v.SetDefault("confidence.weight_months", 0.10)
	v.SetDefault("confidence.weight_income", 0.10)
	v.SetDefault("confidence.floor", 0.3)
	v.SetDefault("confidence.ceiling", 0.99)

	v.SetDefault("flags.rules_file", "")
}

// validateConfig validates the configuration values.
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Extraction.RetryAttempts < 1 {
		return fmt.Errorf("extraction.retry_attempts must be at least 1, got: %d", config.Extraction.RetryAttempts)
	}

	if config.Chunking.MaxPerChunk < 1 {
		return fmt.Errorf("chunking.max_per_chunk must be positive, got: %d", config.Chunking.MaxPerChunk)
	}
	if config.Chunking.Threshold < config.Chunking.MaxPerChunk {
		return fmt.Errorf("chunking.threshold (%d) must not be below chunking.max_per_chunk (%d)",
			config.Chunking.Threshold, config.Chunking.MaxPerChunk)
	}
	if config.Chunking.TokenCeiling < 1 {
		return fmt.Errorf("chunking.token_ceiling must be positive, got: %d", config.Chunking.TokenCeiling)
	}

	if config.Analysis.Policy != PolicyFailFast && config.Analysis.Policy != PolicyPartial {
		return fmt.Errorf("analysis.policy must be '%s' or '%s', got: %s",
			PolicyFailFast, PolicyPartial, config.Analysis.Policy)
	}
	if config.Analysis.ChunkTimeoutSeconds < 1 || config.Analysis.BatchTimeoutSeconds < 1 {
		return fmt.Errorf("analysis timeouts must be positive")
	}

	if config.Averaging.PartialMonthRatio <= 0 || config.Averaging.PartialMonthRatio >= 1 {
		return fmt.Errorf("averaging.partial_month_ratio must be in (0, 1), got: %f",
			config.Averaging.PartialMonthRatio)
	}

	c := config.Confidence
	sum := c.WeightAI + c.WeightVolume + c.WeightFlags + c.WeightMonths + c.WeightIncome
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("confidence weights must sum to 1.0, got: %f", sum)
	}
	if c.Floor < 0 || c.Ceiling > 1 || c.Floor >= c.Ceiling {
		return fmt.Errorf("confidence floor/ceiling must satisfy 0 <= floor < ceiling <= 1, got: %f/%f",
			c.Floor, c.Ceiling)
	}

	return nil
}

// ConfigureLoggingFromConfig builds the logrus instance described by the
// Log section.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
