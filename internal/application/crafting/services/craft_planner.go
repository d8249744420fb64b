package services

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/internal/domain/shared"
)

const demandCacheSize = 8

// PlannerOptions is the explicit parameter object for a pass. Changing it
// invalidates the cached result set.
type PlannerOptions struct {
	MaxDepth               int
	MaxChainsPerResult     int
	PeerTradingEnabled     bool
	ConvertibleCostEnabled bool
	HideCorrupted          bool
	InefficiencyMultiplier float64
	TierWeights            map[string]float64

	// Comparator is the final entry order; nil sorts by commodity index
	Comparator crafting.EntryComparator
}

// DefaultPlannerOptions mirrors the configuration defaults
func DefaultPlannerOptions() PlannerOptions {
	return PlannerOptions{
		MaxDepth:               3,
		MaxChainsPerResult:     40,
		PeerTradingEnabled:     true,
		ConvertibleCostEnabled: true,
		HideCorrupted:          true,
		InefficiencyMultiplier: DefaultInefficiencyMultiplier,
	}
}

// ComputeRequest is one recomputation trigger
type ComputeRequest struct {
	Snapshot *crafting.Snapshot

	// Changed lists commodities touched since the last trigger; empty means unknown
	Changed []crafting.Commodity

	// Force bypasses the cached short-circuit
	Force bool
}

// PassMode tells how a pass was served
type PassMode string

const (
	PassModeFull    PassMode = "FULL"
	PassModeCached  PassMode = "CACHED"
	PassModeSkipped PassMode = "SKIPPED"
)

// PassStats summarizes one pass for logs, metrics and history
type PassStats struct {
	Mode               PassMode
	CatalogFingerprint string
	StartedAt          time.Time
	Duration           time.Duration
	Layers             int
	Considered         int
	Retained           int
	Entries            int
	Rejections         map[RejectReason]int
}

// CraftablesListener receives every emitted result set
type CraftablesListener func(entries []*crafting.CraftableEntry)

// CraftPlanner owns the catalog-derived indices and the previous result set.
// It is not safe for concurrent use: passes run to completion one at a time
// and catalog changes must happen between passes.
type CraftPlanner struct {
	catalog     *crafting.Catalog
	demand      *DemandIndex
	demandCache *lru.Cache[string, *DemandIndex]
	opts        PlannerOptions
	clock       shared.Clock
	listeners   []CraftablesListener

	cache     map[crafting.Commodity]*crafting.CraftableEntry
	cacheDeps map[crafting.Commodity]struct{}
}

// NewCraftPlanner creates a planner without a catalog. If clock is nil the
// real clock is used.
func NewCraftPlanner(opts PlannerOptions, clock shared.Clock) *CraftPlanner {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	cache, err := lru.New[string, *DemandIndex](demandCacheSize)
	if err != nil {
		panic(fmt.Sprintf("demand cache: %v", err))
	}
	return &CraftPlanner{
		demandCache: cache,
		opts:        opts,
		clock:       clock,
		cache:       make(map[crafting.Commodity]*crafting.CraftableEntry),
		cacheDeps:   make(map[crafting.Commodity]struct{}),
	}
}

// SetCatalog installs a catalog and its demand index. Indices for recently
// used catalogs are reused by fingerprint.
func (p *CraftPlanner) SetCatalog(catalog *crafting.Catalog) {
	p.catalog = catalog
	p.invalidate()
	if catalog == nil {
		p.demand = nil
		return
	}

	if idx, ok := p.demandCache.Get(catalog.Fingerprint()); ok {
		p.demand = idx
		return
	}
	p.demand = NewDemandIndex(catalog)
	p.demandCache.Add(catalog.Fingerprint(), p.demand)
}

// Catalog returns the installed catalog, possibly nil
func (p *CraftPlanner) Catalog() *crafting.Catalog {
	return p.catalog
}

// SetOptions replaces the pass parameters; the next pass is a full one
func (p *CraftPlanner) SetOptions(opts PlannerOptions) {
	p.opts = opts
	p.invalidate()
}

// Options returns the current pass parameters
func (p *CraftPlanner) Options() PlannerOptions {
	return p.opts
}

// Subscribe registers a listener for emitted result sets
func (p *CraftPlanner) Subscribe(listener CraftablesListener) {
	p.listeners = append(p.listeners, listener)
}

func (p *CraftPlanner) invalidate() {
	p.cache = make(map[crafting.Commodity]*crafting.CraftableEntry)
	p.cacheDeps = make(map[crafting.Commodity]struct{})
}

// Compute runs one pass. When the catalog or snapshot is missing it does
// nothing and emits nothing. The only error is a snapshot that violates the
// catalog's index range.
func (p *CraftPlanner) Compute(ctx context.Context, req ComputeRequest) ([]*crafting.CraftableEntry, *PassStats, error) {
	logger := common.LoggerFromContext(ctx)
	started := p.clock.Now()

	if p.catalog == nil || p.demand == nil || req.Snapshot == nil {
		logger.Log(common.LevelDebug, "Craft planner input not ready, skipping pass", nil)
		return nil, &PassStats{Mode: PassModeSkipped, StartedAt: started}, nil
	}

	if err := req.Snapshot.Validate(p.catalog.Size()); err != nil {
		return nil, nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	aggregator := p.newAggregator()

	if !req.Force && len(req.Changed) > 0 && len(p.cache) > 0 && !p.impacted(req.Changed) {
		entries := make([]*crafting.CraftableEntry, 0, len(p.cache))
		for _, e := range p.cache {
			entries = append(entries, e)
		}
		aggregator.Sort(entries)

		stats := &PassStats{
			Mode:               PassModeCached,
			CatalogFingerprint: p.catalog.Fingerprint(),
			StartedAt:          started,
			Duration:           p.clock.Now().Sub(started),
			Entries:            len(entries),
		}
		logger.Log(common.LevelDebug, "Snapshot change does not touch any recipe, re-emitting cached craftables", map[string]interface{}{
			"changed": len(req.Changed),
			"entries": len(entries),
		})
		p.emit(entries)
		return entries, stats, nil
	}

	enumerator := NewChainEnumerator(
		p.catalog,
		p.demand,
		NewCostResolver(p.opts.ConvertibleCostEnabled),
		NewPruningPolicy(NewWeightTable(p.catalog.Index(), p.opts.TierWeights), p.opts.InefficiencyMultiplier),
		EnumeratorOptions{
			MaxDepth:           p.opts.MaxDepth,
			MaxChainsPerResult: p.opts.MaxChainsPerResult,
			PeerTradingEnabled: p.opts.PeerTradingEnabled,
		},
	)

	discovery := enumerator.Enumerate(req.Snapshot)
	entries := aggregator.Aggregate(discovery.Buckets, req.Snapshot)

	cache := make(map[crafting.Commodity]*crafting.CraftableEntry, len(entries))
	deps := make(map[crafting.Commodity]struct{})
	for _, e := range entries {
		cache[e.Result] = e
		for _, c := range e.Dependencies() {
			deps[c] = struct{}{}
		}
	}
	p.cache = cache
	p.cacheDeps = deps

	stats := &PassStats{
		Mode:               PassModeFull,
		CatalogFingerprint: p.catalog.Fingerprint(),
		StartedAt:          started,
		Duration:           p.clock.Now().Sub(started),
		Layers:             discovery.Stats.Layers,
		Considered:         discovery.Stats.Considered,
		Retained:           discovery.Stats.Retained,
		Entries:            len(entries),
		Rejections:         discovery.Stats.Rejections,
	}

	logger.Log(common.LevelInfo, "Craft planner pass complete", map[string]interface{}{
		"entries":     stats.Entries,
		"layers":      stats.Layers,
		"considered":  stats.Considered,
		"retained":    stats.Retained,
		"duration_ms": stats.Duration.Milliseconds(),
	})

	p.emit(entries)
	return entries, stats, nil
}

// CachedEntries returns the last full result set in its emitted order
func (p *CraftPlanner) CachedEntries() []*crafting.CraftableEntry {
	if p.catalog == nil {
		return nil
	}
	entries := make([]*crafting.CraftableEntry, 0, len(p.cache))
	for _, e := range p.cache {
		entries = append(entries, e)
	}
	p.newAggregator().Sort(entries)
	return entries
}

func (p *CraftPlanner) newAggregator() *ResultAggregator {
	return NewResultAggregator(p.catalog, AggregatorOptions{
		MaxChainsPerResult: p.opts.MaxChainsPerResult,
		HideCorrupted:      p.opts.HideCorrupted,
		Comparator:         p.opts.Comparator,
	})
}

// impacted reports whether any changed commodity is a recipe ingredient, a
// cached result, or a dependency of a cached chain
func (p *CraftPlanner) impacted(changed []crafting.Commodity) bool {
	for _, c := range changed {
		if p.demand.IsIngredient(c) {
			return true
		}
		if _, ok := p.cache[c]; ok {
			return true
		}
		if _, ok := p.cacheDeps[c]; ok {
			return true
		}
		if p.opts.HideCorrupted && p.isCorruptedVariant(c) {
			return true
		}
	}
	return false
}

func (p *CraftPlanner) isCorruptedVariant(c crafting.Commodity) bool {
	for _, r := range p.catalog.Recipes() {
		if v, ok := p.catalog.CorruptedVariant(r.Result()); ok && v == c {
			return true
		}
	}
	return false
}

func (p *CraftPlanner) emit(entries []*crafting.CraftableEntry) {
	for _, l := range p.listeners {
		l(entries)
	}
}
