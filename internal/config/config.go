// Package config provides configuration management for the tennis-edge pipeline.
package config

import (
	"fmt"

	"github.com/yourusername/tennis-edge/internal/staking"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig           `mapstructure:"app" validate:"required"`
	Staking  staking.KellyConfig `mapstructure:"staking" validate:"required"`
	Backtest BacktestConfig      `mapstructure:"backtest" validate:"required"`
	Model    ModelConfig         `mapstructure:"model"`
	Scan     ScanConfig          `mapstructure:"scan"`
	Notify   NotifyConfig        `mapstructure:"notify"`
	Database DatabaseConfig      `mapstructure:"database"`
	Metrics  MetricsConfig       `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// BacktestConfig represents backtest and sweep configuration
type BacktestConfig struct {
	Dataset              string    `mapstructure:"dataset" validate:"required"`
	BandSpec             string    `mapstructure:"band_spec" validate:"required,bandspec"`
	MinEdge              float64   `mapstructure:"min_edge" validate:"gte=0"`
	DevigMethod          string    `mapstructure:"devig_method" validate:"devig"`
	ExpectedValue        bool      `mapstructure:"expected_value"`
	MonteCarloIterations int       `mapstructure:"monte_carlo_iterations" validate:"gte=0"`
	SweepWorkers         int       `mapstructure:"sweep_workers" validate:"gte=0"`
	Grid                 GridSpec  `mapstructure:"grid"`
	OutputDir            string    `mapstructure:"output_dir" validate:"required"`
}

// GridSpec represents the sweep parameter grid
type GridSpec struct {
	Modes    []string  `mapstructure:"modes" validate:"dive,stakemode"`
	Scales   []float64 `mapstructure:"scales" validate:"dive,gte=0"`
	MinEdges []float64 `mapstructure:"min_edges" validate:"dive,gte=0"`
}

// ModelConfig represents probability model configuration
type ModelConfig struct {
	EloK        float64 `mapstructure:"elo_k" validate:"gte=0"`
	BlendWeight float64 `mapstructure:"blend_weight" validate:"gte=0,lte=1"`
}

// ScanConfig represents live odds scan configuration
type ScanConfig struct {
	APIURL                 string  `mapstructure:"api_url"`
	APIKey                 string  `mapstructure:"api_key"`
	StreamURL              string  `mapstructure:"stream_url"`
	Regions                string  `mapstructure:"regions"`
	LookaheadHours         int     `mapstructure:"lookahead_hours" validate:"gte=0"`
	MinEdge                float64 `mapstructure:"min_edge" validate:"gte=0"`
	TopPicks               int     `mapstructure:"top_picks" validate:"gte=0"`
	Schedule               string  `mapstructure:"schedule"`
	RateLimit              float64 `mapstructure:"rate_limit" validate:"gte=0"`
	MaxRetries             int     `mapstructure:"max_retries" validate:"gte=0"`
	TimeoutSeconds         int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	CacheTTLSeconds        int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CircuitBreakerFailures int     `mapstructure:"circuit_breaker_failures" validate:"gte=0"`
}

// NotifyConfig represents pick notification configuration
type NotifyConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	TelegramToken string `mapstructure:"telegram_token"`
	ChatID        int64  `mapstructure:"chat_id"`
}

// DatabaseConfig represents optional Postgres persistence configuration
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
