package services

import (
	"sort"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// AggregatorOptions controls how discovered chains become entries
type AggregatorOptions struct {
	MaxChainsPerResult int
	HideCorrupted      bool
	Comparator         crafting.EntryComparator
}

// ResultAggregator turns per-result chain buckets into sorted craftable entries
type ResultAggregator struct {
	catalog *crafting.Catalog
	opts    AggregatorOptions
}

// NewResultAggregator creates an aggregator for catalog
func NewResultAggregator(catalog *crafting.Catalog, opts AggregatorOptions) *ResultAggregator {
	return &ResultAggregator{catalog: catalog, opts: opts}
}

// Aggregate builds one entry per result commodity that still has a
// representative chain, then orders the entries.
func (a *ResultAggregator) Aggregate(
	buckets map[crafting.Commodity][]*crafting.Chain,
	snapshot *crafting.Snapshot,
) []*crafting.CraftableEntry {
	results := make([]crafting.Commodity, 0, len(buckets))
	for c := range buckets {
		results = append(results, c)
	}
	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })

	entries := make([]*crafting.CraftableEntry, 0, len(results))
	for _, result := range results {
		if a.hidden(result, snapshot) {
			continue
		}
		if entry := a.buildEntry(result, buckets[result]); entry != nil {
			entries = append(entries, entry)
		}
	}

	a.Sort(entries)
	return entries
}

// Sort orders entries by the configured comparator, falling back to index order
func (a *ResultAggregator) Sort(entries []*crafting.CraftableEntry) {
	cmp := a.opts.Comparator
	sort.SliceStable(entries, func(i, j int) bool {
		if cmp != nil {
			if c := cmp(entries[i], entries[j]); c != 0 {
				return c < 0
			}
		}
		return entries[i].Result < entries[j].Result
	})
}

func (a *ResultAggregator) buildEntry(result crafting.Commodity, chains []*crafting.Chain) *crafting.CraftableEntry {
	valid := make([]*crafting.Chain, 0, len(chains))
	for _, ch := range chains {
		if ch.Result() != result || ch.IsTradeOnly() {
			continue
		}
		if ch.Surplus(result) <= 0 {
			continue
		}
		if ch.HasDanglingIntermediate() {
			continue
		}
		valid = append(valid, ch)
	}
	if len(valid) == 0 {
		return nil
	}

	sort.SliceStable(valid, func(i, j int) bool {
		ni, nj := valid[i].NonPhysicalCostEntries(), valid[j].NonPhysicalCostEntries()
		if ni != nj {
			return ni < nj
		}
		return valid[i].Depth() < valid[j].Depth()
	})

	if limit := a.opts.MaxChainsPerResult; limit > 0 && len(valid) > limit {
		valid = valid[:limit]
	}

	minDepth := valid[0].Depth()
	for _, ch := range valid[1:] {
		if ch.Depth() < minDepth {
			minDepth = ch.Depth()
		}
	}

	return &crafting.CraftableEntry{
		Result:      result,
		ResultCount: valid[0].ResultCount(),
		MinDepth:    minDepth,
		Chains:      valid,
	}
}

// hidden reports a base result whose corrupted variant is already owned
func (a *ResultAggregator) hidden(result crafting.Commodity, snapshot *crafting.Snapshot) bool {
	if !a.opts.HideCorrupted || snapshot == nil {
		return false
	}
	corrupted, ok := a.catalog.CorruptedVariant(result)
	return ok && snapshot.PhysicalCount(corrupted) > 0
}
