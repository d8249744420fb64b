package services

import (
	"strings"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// IndexSortMode orders entries that share a tier
type IndexSortMode string

const (
	IndexSortAscending  IndexSortMode = "ascending"
	IndexSortDescending IndexSortMode = "descending"
)

// DefaultTierOrder lists tiers from most to least prominent
var DefaultTierOrder = []string{
	"FoodTier", "NoTier", "Equipment", "Boss", "Tier3", "Tier2", "Tier1",
	"VoidTier3", "VoidTier2", "VoidTier1", "Lunar",
}

// TierOrder is the default external total order for craftable entries:
// configured tier priority, then items before equipment, then index in the
// configured direction, then name.
type TierOrder struct {
	index *crafting.CommodityIndex
	rank  map[string]int
	mode  IndexSortMode
}

// NewTierOrder builds the comparator. Tiers missing from order sort last.
func NewTierOrder(index *crafting.CommodityIndex, order []string, mode IndexSortMode) *TierOrder {
	rank := make(map[string]int, len(order))
	for i, tier := range order {
		if _, exists := rank[tier]; !exists {
			rank[tier] = i
		}
	}
	return &TierOrder{index: index, rank: rank, mode: mode}
}

// ParseTierCSV splits a comma separated tier list, dropping blanks
func ParseTierCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (o *TierOrder) tierRank(c crafting.Commodity) int {
	if r, ok := o.rank[o.index.Tier(c)]; ok {
		return r
	}
	return len(o.rank)
}

// Compare implements crafting.EntryComparator
func (o *TierOrder) Compare(a, b *crafting.CraftableEntry) int {
	if ra, rb := o.tierRank(a.Result), o.tierRank(b.Result); ra != rb {
		return ra - rb
	}

	ka, kb := o.index.Kind(a.Result), o.index.Kind(b.Result)
	if ka != kb {
		if ka == crafting.KindItem {
			return -1
		}
		return 1
	}

	if a.Result != b.Result {
		diff := int(a.Result) - int(b.Result)
		if o.mode == IndexSortDescending {
			return -diff
		}
		return diff
	}

	return strings.Compare(o.index.Name(a.Result), o.index.Name(b.Result))
}
