package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or console
		Output string `yaml:"output"`
	} `yaml:"log"`
	Catalog struct {
		Path string `yaml:"path"` // instrument catalog JSON file
	} `yaml:"catalog"`
	Providers struct {
		Timeout time.Duration `yaml:"timeout"` // per-provider call budget
		Yahoo   struct {
			Enabled   bool   `yaml:"enabled"`
			ChartURL  string `yaml:"chart_url"`
			QuoteURL  string `yaml:"quote_url"`
			SearchURL string `yaml:"search_url"`
		} `yaml:"yahoo"`
		Stooq struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"stooq"`
		AlphaVantage struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"alphavantage"`
		Finnhub struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"finnhub"`
		RateLimit struct {
			Capacity     float64 `yaml:"capacity"`       // burst tokens per provider
			RefillPerSec float64 `yaml:"refill_per_sec"` // sustained calls per second
		} `yaml:"rate_limit"`
	} `yaml:"providers"`
	Cache struct {
		TTL struct {
			Catalog         time.Duration `yaml:"catalog"`
			Quote           time.Duration `yaml:"quote"`
			CandlesDaily    time.Duration `yaml:"candles_daily"`
			CandlesIntraday time.Duration `yaml:"candles_intraday"`
			Prediction      time.Duration `yaml:"prediction"`
		} `yaml:"ttl"`
		MemoryMaxSize int `yaml:"memory_max_size"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Model struct {
		HistoryPeriod    string `yaml:"history_period"`    // period fetched for training
		MinCandles       int    `yaml:"min_candles"`       // raw candles required before training
		MinUniverseRows  int    `yaml:"min_universe_rows"` // defined feature rows required
		Iterations       int    `yaml:"iterations"`
		MaxDepth         int    `yaml:"max_depth"`
		LearningRate     float64 `yaml:"learning_rate"`
		ChartCandleCount int    `yaml:"chart_candle_count"`
	} `yaml:"model"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled          bool          `yaml:"enabled"`
		Brokers          []string      `yaml:"brokers"`
		PredictionsTopic string        `yaml:"predictions_topic"`
		LogsTopic        string        `yaml:"logs_topic"`
		RequiredAcks     int           `yaml:"required_acks"`
		Compression      string        `yaml:"compression"`
		MaxAttempts      int           `yaml:"max_attempts"`
		Linger           time.Duration `yaml:"linger"`
		BatchSize        int           `yaml:"batch_size"`
		BatchBytes       int           `yaml:"batch_bytes"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		Async            bool          `yaml:"async"`
	} `yaml:"kafka"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	return c, nil
}

// applyDefaults fills zero-valued fields with the documented defaults.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 5 * time.Second
	}
	if c.Providers.Yahoo.ChartURL == "" {
		c.Providers.Yahoo.ChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if c.Providers.Yahoo.QuoteURL == "" {
		c.Providers.Yahoo.QuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"
	}
	if c.Providers.Yahoo.SearchURL == "" {
		c.Providers.Yahoo.SearchURL = "https://query1.finance.yahoo.com/v1/finance/search"
	}
	if c.Providers.Stooq.BaseURL == "" {
		c.Providers.Stooq.BaseURL = "https://stooq.com/q"
	}
	if c.Providers.AlphaVantage.BaseURL == "" {
		c.Providers.AlphaVantage.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.Providers.Finnhub.BaseURL == "" {
		c.Providers.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.Providers.RateLimit.Capacity == 0 {
		c.Providers.RateLimit.Capacity = 5
	}
	if c.Providers.RateLimit.RefillPerSec == 0 {
		c.Providers.RateLimit.RefillPerSec = 1
	}
	if c.Cache.TTL.Catalog == 0 {
		c.Cache.TTL.Catalog = time.Hour
	}
	if c.Cache.TTL.Quote == 0 {
		c.Cache.TTL.Quote = 5 * time.Minute
	}
	if c.Cache.TTL.CandlesDaily == 0 {
		c.Cache.TTL.CandlesDaily = 30 * time.Minute
	}
	if c.Cache.TTL.CandlesIntraday == 0 {
		c.Cache.TTL.CandlesIntraday = 30 * time.Second
	}
	if c.Cache.TTL.Prediction == 0 {
		c.Cache.TTL.Prediction = 10 * time.Minute
	}
	if c.Cache.MemoryMaxSize == 0 {
		c.Cache.MemoryMaxSize = 2048
	}
	if c.Cache.Redis.Port == 0 {
		c.Cache.Redis.Port = 6379
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "stockpulse"
	}
	if c.Model.HistoryPeriod == "" {
		c.Model.HistoryPeriod = "2y"
	}
	if c.Model.MinCandles == 0 {
		c.Model.MinCandles = 120
	}
	if c.Model.MinUniverseRows == 0 {
		c.Model.MinUniverseRows = 60
	}
	if c.Model.Iterations == 0 {
		c.Model.Iterations = 100
	}
	if c.Model.MaxDepth == 0 {
		c.Model.MaxDepth = 5
	}
	if c.Model.LearningRate == 0 {
		c.Model.LearningRate = 0.1
	}
	if c.Model.ChartCandleCount == 0 {
		c.Model.ChartCandleCount = 100
	}
	if c.Kafka.PredictionsTopic == "" {
		c.Kafka.PredictionsTopic = "stockpulse.predictions"
	}
	if c.Kafka.Compression == "" {
		c.Kafka.Compression = "gzip"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Host == "" {
		return fmt.Errorf("cache.redis.host required when redis is enabled")
	}
	return nil
}
