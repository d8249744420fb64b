package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

const (
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorReset  = "\033[0m"
)

// TreeFormatter renders craftable entries and their chains as trees
type TreeFormatter struct {
	index     *crafting.CommodityIndex
	useColors bool
}

// NewTreeFormatter creates a formatter resolving names through index
func NewTreeFormatter(index *crafting.CommodityIndex, useColors bool) *TreeFormatter {
	return &TreeFormatter{index: index, useColors: useColors}
}

// FormatEntries renders every entry; maxChains limits chains shown per entry (0 shows all)
func (f *TreeFormatter) FormatEntries(entries []*crafting.CraftableEntry, maxChains int) string {
	if len(entries) == 0 {
		return "(nothing craftable)\n"
	}

	var b strings.Builder
	for _, e := range entries {
		f.formatEntry(&b, e, maxChains)
	}
	return b.String()
}

func (f *TreeFormatter) formatEntry(b *strings.Builder, entry *crafting.CraftableEntry, maxChains int) {
	plural := "s"
	if len(entry.Chains) == 1 {
		plural = ""
	}
	fmt.Fprintf(b, "%s%s%s x%d (min depth %d, %d chain%s)\n",
		f.color(colorCyan), f.index.Name(entry.Result), f.color(colorReset),
		entry.ResultCount, entry.MinDepth, len(entry.Chains), plural)

	chains := entry.Chains
	hidden := 0
	if maxChains > 0 && len(chains) > maxChains {
		hidden = len(chains) - maxChains
		chains = chains[:maxChains]
	}

	for i, ch := range chains {
		last := i == len(chains)-1 && hidden == 0
		f.formatChain(b, i+1, ch, last)
	}
	if hidden > 0 {
		fmt.Fprintf(b, "└── ... %d more\n", hidden)
	}
}

func (f *TreeFormatter) formatChain(b *strings.Builder, n int, chain *crafting.Chain, last bool) {
	branch, indent := "├── ", "│   "
	if last {
		branch, indent = "└── ", "    "
	}

	fmt.Fprintf(b, "%schain %d  cost: %s\n", branch, n, f.FormatCosts(chain.Costs()))

	steps := chain.Steps()
	for i, step := range steps {
		stepBranch := "├── "
		if i == len(steps)-1 {
			stepBranch = "└── "
		}
		fmt.Fprintf(b, "%s%s%s\n", indent, stepBranch, f.FormatStep(step))
	}
}

// FormatStep renders one recipe or trade step
func (f *TreeFormatter) FormatStep(step crafting.Step) string {
	if trade, ok := step.(*crafting.TradeStep); ok {
		return fmt.Sprintf("%strade%s 1x%s from %s", f.color(colorYellow), f.color(colorReset), f.index.Name(trade.Commodity), trade.Peer)
	}

	parts := make([]string, 0, len(step.Ingredients()))
	for _, ing := range step.Ingredients() {
		parts = append(parts, fmt.Sprintf("%dx%s", ing.Count, f.index.Name(ing.Commodity)))
	}
	return fmt.Sprintf("%s -> %dx%s", strings.Join(parts, " + "), step.ResultCount(), f.index.Name(step.Result()))
}

// FormatCosts renders a cost split by channel
func (f *TreeFormatter) FormatCosts(costs crafting.Costs) string {
	var parts []string
	for _, p := range costs.Physical {
		parts = append(parts, fmt.Sprintf("%s%dx%s%s", f.color(colorGreen), p.Count, f.index.Name(p.Commodity), f.color(colorReset)))
	}
	for _, c := range costs.Convertible {
		parts = append(parts, fmt.Sprintf("%dx%s via %s", c.Count, f.index.Name(c.Commodity), c.Source))
	}
	for _, t := range costs.Trade {
		parts = append(parts, fmt.Sprintf("%s%dx%s from %s%s", f.color(colorYellow), t.Count, f.index.Name(t.Commodity), t.Peer, f.color(colorReset)))
	}
	if len(parts) == 0 {
		return "free"
	}
	return strings.Join(parts, ", ")
}

func (f *TreeFormatter) color(code string) string {
	if !f.useColors {
		return ""
	}
	return code
}
