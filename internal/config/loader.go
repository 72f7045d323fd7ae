package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// Environment variable placeholders in the YAML file (${VAR_NAME}) are
// expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// LoadWithDefaults loads configuration with defaults for optional fields;
// a missing file is not an error, environment variables still apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TENNIS_EDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tennis-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("staking.mode", "kelly")
	v.SetDefault("staking.scale", 0.5)
	v.SetDefault("staking.flat_stake", 1.0)
	v.SetDefault("staking.initial_bankroll", 1000.0)

	v.SetDefault("backtest.dataset", "data/odds_enriched.csv")
	v.SetDefault("backtest.band_spec", "1.2,2.0|2.0,2.6|2.6,3.2|3.2,4.0")
	v.SetDefault("backtest.devig_method", "shin")
	v.SetDefault("backtest.monte_carlo_iterations", 1000)
	v.SetDefault("backtest.output_dir", "./output")

	v.SetDefault("model.elo_k", 32.0)
	v.SetDefault("model.blend_weight", 0.5)

	v.SetDefault("scan.lookahead_hours", 24)
	v.SetDefault("scan.rate_limit", 10.0)
	v.SetDefault("scan.max_retries", 5)
	v.SetDefault("scan.timeout_seconds", 30)
	v.SetDefault("scan.cache_ttl_seconds", 300)
	v.SetDefault("scan.top_picks", 5)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
