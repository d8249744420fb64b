package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/cookbook-go/internal/adapters/catalogfile"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/commands"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	var (
		src        catalogSource
		snapshot   string
		result     string
		maxDepth   int
		maxChains  int
		showChains int
		record     bool
		overrides  plannerOverrides
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List everything craftable from a resource snapshot",
		Long: `Run one planner pass over a recipe catalog and a resource snapshot and
print every craftable result with the chains that produce it.

Examples:
  cookbook plan --catalog recipes.yaml --snapshot inventory.yaml
  cookbook plan --stored default --snapshot inventory.yaml --depth 2 --result Baz
  cookbook plan --catalog recipes.yaml --snapshot inventory.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := src.validate(); err != nil {
				return err
			}
			if snapshot == "" {
				return fmt.Errorf("--snapshot is required")
			}

			app, err := newApplication(appOptions{withDatabase: src.needsDatabase() || record})
			if err != nil {
				return err
			}
			defer app.close()

			ctx := app.context(context.Background())

			catalog, err := loadCatalog(ctx, app, src)
			if err != nil {
				return err
			}

			snap, err := catalogfile.LoadSnapshotFile(snapshot, catalog.Index())
			if err != nil {
				return err
			}

			overrides.maxDepth = intFlag(cmd.Flags().Changed("depth"), maxDepth)
			overrides.maxChains = intFlag(cmd.Flags().Changed("max-chains"), maxChains)
			app.activate(catalog, overrides)

			name := ""
			if record {
				name = src.name()
			}
			response, err := app.mediator.Send(ctx, &commands.ComputeCraftablesCommand{
				Snapshot:       snap,
				Force:          true,
				CatalogName:    name,
				RequireCatalog: true,
			})
			if err != nil {
				return err
			}
			res := response.(*commands.ComputeCraftablesResponse)

			entries := res.Entries
			if result != "" {
				c, err := catalog.Index().MustLookup(result)
				if err != nil {
					return err
				}
				entries = filterEntries(entries, c)
			}

			if jsonOutput {
				return writeJSON(entriesToDTO(entries, catalog.Index()))
			}

			formatter := NewTreeFormatter(catalog.Index(), useColors())
			fmt.Print(formatter.FormatEntries(entries, showChains))
			fmt.Printf("\n%d craftable, %d chains retained across %d layers in %s\n",
				len(res.Entries), res.Stats.Retained, res.Stats.Layers, res.Stats.Duration)
			if res.PassID != "" {
				fmt.Printf("Recorded as pass %s\n", res.PassID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&src.file, "catalog", "", "Catalog YAML file")
	cmd.Flags().StringVar(&src.stored, "stored", "", "Name of a catalog stored in the database")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Resource snapshot YAML file (required)")
	cmd.Flags().StringVar(&result, "result", "", "Only show chains for this commodity")
	cmd.Flags().IntVar(&maxDepth, "depth", 0, "Override planner.max_depth")
	cmd.Flags().IntVar(&maxChains, "max-chains", 0, "Override planner.max_chains_per_result")
	cmd.Flags().IntVar(&showChains, "show", 3, "Chains printed per result (0 prints all)")
	cmd.Flags().BoolVar(&overrides.noTrades, "no-trades", false, "Disable peer trading")
	cmd.Flags().BoolVar(&overrides.noConvertible, "no-convertible", false, "Disable convertible sources")
	cmd.Flags().BoolVar(&overrides.showCorrupted, "show-corrupted", false, "Do not hide results whose corrupted variant is owned")
	cmd.Flags().BoolVar(&record, "record", false, "Record the pass in history")

	return cmd
}

func filterEntries(entries []*crafting.CraftableEntry, result crafting.Commodity) []*crafting.CraftableEntry {
	for _, e := range entries {
		if e.Result == result {
			return []*crafting.CraftableEntry{e}
		}
	}
	return nil
}

// entryDTO is the JSON form of a craftable entry
type entryDTO struct {
	Result      string     `json:"result"`
	ResultCount int        `json:"result_count"`
	MinDepth    int        `json:"min_depth"`
	Chains      []chainDTO `json:"chains"`
}

type chainDTO struct {
	Steps       []string       `json:"steps"`
	Physical    map[string]int `json:"physical,omitempty"`
	Convertible map[string]int `json:"convertible,omitempty"`
	Trade       map[string]int `json:"trade,omitempty"`
}

func entriesToDTO(entries []*crafting.CraftableEntry, index *crafting.CommodityIndex) []entryDTO {
	formatter := NewTreeFormatter(index, false)
	out := make([]entryDTO, 0, len(entries))
	for _, e := range entries {
		dto := entryDTO{
			Result:      index.Name(e.Result),
			ResultCount: e.ResultCount,
			MinDepth:    e.MinDepth,
		}
		for _, ch := range e.Chains {
			c := chainDTO{}
			for _, step := range ch.Steps() {
				c.Steps = append(c.Steps, formatter.FormatStep(step))
			}
			costs := ch.Costs()
			for _, p := range costs.Physical {
				if c.Physical == nil {
					c.Physical = make(map[string]int)
				}
				c.Physical[index.Name(p.Commodity)] += p.Count
			}
			for _, v := range costs.Convertible {
				if c.Convertible == nil {
					c.Convertible = make(map[string]int)
				}
				c.Convertible[index.Name(v.Commodity)] += v.Count
			}
			for _, t := range costs.Trade {
				if c.Trade == nil {
					c.Trade = make(map[string]int)
				}
				c.Trade[fmt.Sprintf("%s@%s", index.Name(t.Commodity), t.Peer)] += t.Count
			}
			dto.Chains = append(dto.Chains, c)
		}
		out = append(out, dto)
	}
	return out
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
