package cli

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/cookbook-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: `Inspect the effective cookbook configuration.

Configuration is loaded from multiple sources with priority:
1. Environment variables (CB_* prefix, e.g. CB_PLANNER_MAX_DEPTH)
2. Config file (cookbook.yaml, or --config)
3. Default values

Examples:
  cookbook config show
  CB_PLANNER_MAX_DEPTH=4 cookbook config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			if jsonOutput {
				masked := *cfg
				masked.Database.URL = maskPassword(cfg.Database.URL)
				masked.Database.Password = maskSecret(cfg.Database.Password)
				return writeJSON(masked)
			}

			fmt.Println("Planner:")
			fmt.Printf("  Max Depth:             %d\n", cfg.Planner.MaxDepth)
			fmt.Printf("  Max Chains/Result:     %d\n", cfg.Planner.MaxChainsPerResult)
			fmt.Printf("  Peer Trading:          %t\n", cfg.Planner.PeerTradingEnabled)
			fmt.Printf("  Convertible Costs:     %t\n", cfg.Planner.ConvertibleCostEnabled)
			fmt.Printf("  Inefficiency Limit:    %.2fx\n", cfg.Planner.InefficiencyMultiplier)
			fmt.Printf("  Compute Throttle:      %s\n", cfg.Planner.ComputeThrottle)
			fmt.Printf("  Tier Order:            %s\n", cfg.Planner.TierOrder)
			fmt.Printf("  Index Sort:            %s\n", cfg.Planner.IndexSortMode)
			fmt.Printf("  Hide Corrupted:        %t\n", cfg.Planner.HideCorrupted)
			if len(cfg.Planner.Weights) > 0 {
				tiers := make([]string, 0, len(cfg.Planner.Weights))
				for tier := range cfg.Planner.Weights {
					tiers = append(tiers, tier)
				}
				sort.Strings(tiers)
				fmt.Println("  Weights:")
				for _, tier := range tiers {
					fmt.Printf("    %-18s   %.2f\n", tier, cfg.Planner.Weights[tier])
				}
			}

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:                  %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:                  %s\n", cfg.Database.Path)
			case cfg.Database.URL != "":
				fmt.Printf("  URL:                   %s\n", maskPassword(cfg.Database.URL))
			default:
				fmt.Printf("  Host:                  %s:%d\n", cfg.Database.Host, cfg.Database.Port)
				fmt.Printf("  Database:              %s\n", cfg.Database.Name)
				fmt.Printf("  User:                  %s\n", cfg.Database.User)
			}

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:                 %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:                %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:                %s\n", cfg.Logging.Output)

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:               %t\n", cfg.Metrics.Enabled)
			if cfg.Metrics.Enabled {
				fmt.Printf("  Endpoint:              http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			}
			return nil
		},
	}
}

// maskPassword hides the password component of a connection URL
func maskPassword(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
