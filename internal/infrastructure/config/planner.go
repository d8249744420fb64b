package config

import "time"

// PlannerConfig holds craft planner parameters
type PlannerConfig struct {
	// Maximum chain length searched
	MaxDepth int `mapstructure:"max_depth" validate:"min=0,max=8"`

	// Per-result cap on retained chains; 0 means unbounded
	MaxChainsPerResult int `mapstructure:"max_chains_per_result" validate:"min=0"`

	PeerTradingEnabled     bool `mapstructure:"peer_trading_enabled"`
	ConvertibleCostEnabled bool `mapstructure:"convertible_cost_enabled"`

	// Weighted cost may not exceed this multiple of weighted yield; 0 disables the check
	InefficiencyMultiplier float64 `mapstructure:"inefficiency_multiplier" validate:"min=0"`

	// Minimum spacing between two passes triggered by snapshot changes
	ComputeThrottle time.Duration `mapstructure:"compute_throttle" validate:"min=0"`

	// Tier names in display priority order, comma separated
	TierOrder string `mapstructure:"tier_order"`

	// ascending or descending commodity index order inside a tier
	IndexSortMode string `mapstructure:"index_sort_mode" validate:"required,oneof=ascending descending"`

	// Hide entries whose corrupted variant is already owned
	HideCorrupted bool `mapstructure:"hide_corrupted"`

	// Tier name to inefficiency weight; missing tiers weigh 1
	Weights map[string]float64 `mapstructure:"weights" validate:"dive,keys,required,endkeys,gt=0"`
}
