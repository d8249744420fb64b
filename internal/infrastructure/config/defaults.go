package config

import (
	"time"

	"github.com/spf13/viper"
)

// setViperDefaults registers defaults that cannot be told apart from zero
// values after unmarshalling (booleans that default to true, caps where 0 is
// meaningful)
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("planner.max_depth", 3)
	v.SetDefault("planner.max_chains_per_result", 40)
	v.SetDefault("planner.peer_trading_enabled", true)
	v.SetDefault("planner.convertible_cost_enabled", true)
	v.SetDefault("planner.inefficiency_multiplier", 2.0)
	v.SetDefault("planner.compute_throttle", 500*time.Millisecond)
	v.SetDefault("planner.tier_order", "FoodTier,NoTier,Equipment,Boss,Tier3,Tier2,Tier1,VoidTier3,VoidTier2,VoidTier1,Lunar")
	v.SetDefault("planner.index_sort_mode", "ascending")
	v.SetDefault("planner.hide_corrupted", true)

	v.SetDefault("metrics.enabled", false)
}

// envKeys lists settings without a viper default. AutomaticEnv alone does not
// surface them to Unmarshal.
var envKeys = []string{
	"database.type", "database.url", "database.host", "database.port",
	"database.user", "database.password", "database.name", "database.sslmode",
	"database.path", "database.pool.max_open", "database.pool.max_idle",
	"database.pool.max_lifetime",
	"logging.level", "logging.format", "logging.output", "logging.file_path",
	"metrics.host", "metrics.port", "metrics.path",
}

func bindEnvKeys(v *viper.Viper) {
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
}

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "cookbook.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "cookbook"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "cookbook"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Planner defaults for fields where zero is never valid
	if cfg.Planner.IndexSortMode == "" {
		cfg.Planner.IndexSortMode = "ascending"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
