package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/internal/domain/shared"
	"github.com/andrescamacho/cookbook-go/test/helpers"
)

func newPlanner(cat *crafting.Catalog, mutate func(*services.PlannerOptions)) *services.CraftPlanner {
	opts := services.DefaultPlannerOptions()
	if mutate != nil {
		mutate(&opts)
	}
	p := services.NewCraftPlanner(opts, shared.NewManualClock(time0))
	p.SetCatalog(cat)
	return p
}

func plan(t *testing.T, cat *crafting.Catalog, snap *crafting.Snapshot, mutate func(*services.PlannerOptions)) ([]*crafting.CraftableEntry, *services.PassStats) {
	t.Helper()
	entries, stats, err := newPlanner(cat, mutate).Compute(context.Background(), services.ComputeRequest{Snapshot: snap})
	require.NoError(t, err)
	require.NotNil(t, stats)
	return entries, stats
}

func withDepth(depth int) func(*services.PlannerOptions) {
	return func(o *services.PlannerOptions) { o.MaxDepth = depth }
}

func TestCraftPlanner_LinearChain(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz"}, "Bar <- Foo", "Baz <- Bar")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1})

	entries, stats := plan(t, cat, snap, withDepth(2))

	assert.Equal(t, services.PassModeFull, stats.Mode)
	assert.Equal(t, []string{"Bar", "Baz"}, helpers.ResultNames(cat, entries))
	assert.Nil(t, helpers.EntryFor(cat, entries, "Foo"))

	bar := helpers.EntryFor(cat, entries, "Bar")
	require.Len(t, bar.Chains, 1)
	assert.Equal(t, 1, bar.MinDepth)
	assert.Equal(t, map[string]int{"Foo": 1}, helpers.PhysicalCostByName(cat, bar.Chains[0]))

	baz := helpers.EntryFor(cat, entries, "Baz")
	require.Len(t, baz.Chains, 1)
	assert.Equal(t, 2, baz.MinDepth)
	assert.Equal(t, map[string]int{"Foo": 1}, helpers.PhysicalCostByName(cat, baz.Chains[0]))

	steps := baz.Chains[0].Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, helpers.Commodity(t, cat, "Bar"), steps[0].Result())
	assert.Equal(t, helpers.Commodity(t, cat, "Baz"), steps[1].Result())
}

func TestCraftPlanner_UnaffordableRecipeProducesNothing(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar"}, "Bar <- 2 Foo")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1})

	entries, stats := plan(t, cat, snap, nil)

	assert.Empty(t, entries)
	assert.Equal(t, 1, stats.Rejections[services.RejectUnaffordable])
}

func TestCraftPlanner_MultiOutputCoversDownstreamDemand(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz"}, "2 Bar <- Foo", "Baz <- 2 Bar")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1})

	entries, _ := plan(t, cat, snap, withDepth(2))

	baz := helpers.EntryFor(cat, entries, "Baz")
	require.NotNil(t, baz)
	assert.Equal(t, map[string]int{"Foo": 1}, helpers.PhysicalCostByName(cat, baz.Chains[0]))
	assert.Equal(t, 2, baz.MinDepth)
}

func TestCraftPlanner_DepthBound(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "A", "B", "C", "D"},
		"A <- Foo", "B <- A", "C <- B", "D <- C")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1})

	tests := []struct {
		depth int
		want  []string
	}{
		{0, []string{}},
		{1, []string{"A"}},
		{2, []string{"A", "B"}},
		{4, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		entries, stats := plan(t, cat, snap, withDepth(tt.depth))

		assert.Equal(t, tt.want, helpers.ResultNames(cat, entries), "depth %d", tt.depth)
		assert.LessOrEqual(t, stats.Layers, tt.depth)
		for _, e := range entries {
			for _, ch := range e.Chains {
				assert.LessOrEqual(t, ch.Depth(), tt.depth)
			}
		}
	}
}

func TestCraftPlanner_SelfCycleNeverAppears(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz"}, "Bar <- Foo + Bar", "Baz <- Foo")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 3, "Bar": 3})

	entries, _ := plan(t, cat, snap, nil)

	assert.Equal(t, []string{"Baz"}, helpers.ResultNames(cat, entries))
	for _, e := range entries {
		for _, ch := range e.Chains {
			for _, s := range ch.Steps() {
				if r, ok := s.(*crafting.Recipe); ok {
					assert.False(t, r.IsSelfCycle())
				}
			}
		}
	}
}

func TestCraftPlanner_PeerTrades(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz"}, "Bar <- Foo", "Baz <- Bar")
	snap := helpers.ResolveSnapshot(t, cat, &crafting.SnapshotDefinition{
		Peers: []crafting.PeerDef{{Name: "alice", RemainingTrades: 1, Stock: map[string]int{"Foo": 1}}},
	})

	entries, _ := plan(t, cat, snap, withDepth(3))

	assert.Equal(t, []string{"Bar", "Baz"}, helpers.ResultNames(cat, entries))
	assert.Nil(t, helpers.EntryFor(cat, entries, "Foo"), "a lone trade is not a craft")

	bar := helpers.EntryFor(cat, entries, "Bar")
	require.Len(t, bar.Chains, 1)
	costs := bar.Chains[0].Costs()
	assert.Empty(t, costs.Physical)
	assert.Equal(t, []crafting.TradeCost{{Peer: "alice", Commodity: helpers.Commodity(t, cat, "Foo"), Count: 1}}, costs.Trade)
	assert.True(t, crafting.IsTrade(bar.Chains[0].Steps()[0]))

	disabled, _ := plan(t, cat, snap, func(o *services.PlannerOptions) {
		o.MaxDepth = 3
		o.PeerTradingEnabled = false
	})
	assert.Empty(t, disabled)
}

func TestCraftPlanner_PeerTradeAllowanceIsRespected(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar"}, "Bar <- 2 Foo")
	snap := helpers.ResolveSnapshot(t, cat, &crafting.SnapshotDefinition{
		Peers: []crafting.PeerDef{{Name: "alice", RemainingTrades: 1, Stock: map[string]int{"Foo": 5}}},
	})

	entries, _ := plan(t, cat, snap, withDepth(3))
	assert.Empty(t, entries)

	snap.Peers[0].RemainingTrades = 2
	entries, _ = plan(t, cat, snap, withDepth(3))
	bar := helpers.EntryFor(cat, entries, "Bar")
	require.NotNil(t, bar)
	assert.Equal(t, 2, bar.Chains[0].Costs().TradedUnits("alice", helpers.Commodity(t, cat, "Foo")))
}

func TestCraftPlanner_ConvertibleCosts(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar"}, "Bar <- 2 Foo")
	snap := helpers.ResolveSnapshot(t, cat, &crafting.SnapshotDefinition{
		Physical:    map[string]int{"Foo": 1},
		Convertible: map[string][]crafting.SourceDef{"Foo": {{ID: "old-foo", Potential: 1}}},
	})

	entries, _ := plan(t, cat, snap, nil)

	bar := helpers.EntryFor(cat, entries, "Bar")
	require.NotNil(t, bar)
	costs := bar.Chains[0].Costs()
	assert.Equal(t, map[string]int{"Foo": 1}, helpers.PhysicalCostByName(cat, bar.Chains[0]))
	assert.Equal(t, []crafting.ConvertibleCost{{Source: "old-foo", Commodity: helpers.Commodity(t, cat, "Foo"), Count: 1}}, costs.Convertible)

	disabled, _ := plan(t, cat, snap, func(o *services.PlannerOptions) { o.ConvertibleCostEnabled = false })
	assert.Empty(t, disabled)
}

func TestCraftPlanner_CheaperAlternativeEvictsDominatedChain(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar"}, "Bar <- 2 Foo", "Bar <- Foo")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 2})

	entries, stats := plan(t, cat, snap, nil)

	bar := helpers.EntryFor(cat, entries, "Bar")
	require.NotNil(t, bar)
	require.Len(t, bar.Chains, 1)
	assert.Equal(t, map[string]int{"Foo": 1}, helpers.PhysicalCostByName(cat, bar.Chains[0]))
	assert.Equal(t, 1, stats.Rejections[services.RejectDominated])
}

func TestCraftPlanner_ChainCapPerResult(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Qux", "Bar"}, "Bar <- Foo", "2 Bar <- 3 Qux")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1, "Qux": 3})

	uncapped, _ := plan(t, cat, snap, nil)
	require.Len(t, helpers.EntryFor(cat, uncapped, "Bar").Chains, 2)

	capped, stats := plan(t, cat, snap, func(o *services.PlannerOptions) { o.MaxChainsPerResult = 1 })
	assert.Len(t, helpers.EntryFor(cat, capped, "Bar").Chains, 1)
	assert.Equal(t, 1, stats.Rejections[services.RejectBucketFull])
}

func TestCraftPlanner_PartialStacksDoNotTakeBucketSlots(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Qux", "Mid", "Bar", "Baz"},
		"Bar <- 2 Foo", "Mid <- Qux", "Bar <- Mid", "Baz <- 2 Bar")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 4, "Qux": 1})

	uncapped, _ := plan(t, cat, snap, withDepth(2))
	require.Len(t, helpers.EntryFor(cat, uncapped, "Bar").Chains, 2)

	capped, stats := plan(t, cat, snap, func(o *services.PlannerOptions) {
		o.MaxDepth = 2
		o.MaxChainsPerResult = 2
	})

	bar := helpers.EntryFor(cat, capped, "Bar")
	require.NotNil(t, bar)
	require.Len(t, bar.Chains, 2)
	costs := []map[string]int{
		helpers.PhysicalCostByName(cat, bar.Chains[0]),
		helpers.PhysicalCostByName(cat, bar.Chains[1]),
	}
	assert.ElementsMatch(t, []map[string]int{{"Foo": 2}, {"Qux": 1}}, costs)
	assert.Zero(t, stats.Rejections[services.RejectBucketFull])
}

func TestCraftPlanner_StacksTowardMultiUnitDemand(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Junk", "Bar", "Baz", "Gunk"},
		"Bar <- Foo", "Baz <- 2 Bar", "Gunk <- Junk")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 2, "Junk": 1})

	entries, stats := plan(t, cat, snap, withDepth(3))

	assert.Equal(t, []string{"Bar", "Baz", "Gunk"}, helpers.ResultNames(cat, entries))

	baz := helpers.EntryFor(cat, entries, "Baz")
	require.NotNil(t, baz)
	require.Len(t, baz.Chains, 1)
	assert.Equal(t, 3, baz.MinDepth)
	assert.Equal(t, map[string]int{"Foo": 2}, helpers.PhysicalCostByName(cat, baz.Chains[0]))

	gunk := helpers.Commodity(t, cat, "Gunk")
	for _, name := range []string{"Bar", "Baz"} {
		for _, ch := range helpers.EntryFor(cat, entries, name).Chains {
			for _, step := range ch.Steps() {
				assert.NotEqual(t, gunk, step.Result(), "%s chain %s", name, ch.StepsKey())
			}
		}
	}
	assert.Positive(t, stats.Rejections[services.RejectCausalLink])
}

func TestCraftPlanner_NoDuplicateChains(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Qux", "Bar", "Baz", "Zed"},
		"Bar <- Foo", "Baz <- Qux", "Zed <- Bar + Baz", "2 Bar <- Qux", "Baz <- 2 Bar")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 3, "Qux": 3})

	entries, _ := plan(t, cat, snap, withDepth(4))
	require.NotEmpty(t, entries)

	seen := make(map[string]bool)
	for _, e := range entries {
		for _, ch := range e.Chains {
			key := ch.IdentityKey()
			assert.False(t, seen[key], "duplicate chain %s", key)
			seen[key] = true
		}
	}
}

func TestCraftPlanner_MoreStockNeverLosesResults(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Qux", "Bar", "Baz", "Zed"},
		"Bar <- Foo", "Baz <- 2 Qux", "Zed <- Bar + Baz")

	before, _ := plan(t, cat, helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1, "Qux": 1}), nil)
	after, _ := plan(t, cat, helpers.NewSnapshot(t, cat, map[string]int{"Foo": 2, "Qux": 2, "Baz": 1}), nil)

	assert.Subset(t, helpers.ResultNames(cat, after), helpers.ResultNames(cat, before))
	assert.Contains(t, helpers.ResultNames(cat, after), "Zed")
}

func TestCraftPlanner_HidesResultsWhoseCorruptedVariantIsOwned(t *testing.T) {
	def := helpers.NewCatalogDefinition(t, []string{"Foo", "Bar", "VoidBar"}, "Bar <- Foo")
	def.Corruptions = []crafting.CorruptionDef{{Base: "Bar", Corrupted: "VoidBar"}}
	cat := helpers.BuildCatalog(t, def)
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1, "VoidBar": 1})

	hidden, _ := plan(t, cat, snap, nil)
	assert.Empty(t, hidden)

	shown, _ := plan(t, cat, snap, func(o *services.PlannerOptions) { o.HideCorrupted = false })
	assert.Equal(t, []string{"Bar"}, helpers.ResultNames(cat, shown))
}

func TestCraftPlanner_SkipsWithoutCatalogOrSnapshot(t *testing.T) {
	p := services.NewCraftPlanner(services.DefaultPlannerOptions(), nil)
	emitted := 0
	p.Subscribe(func([]*crafting.CraftableEntry) { emitted++ })

	entries, stats, err := p.Compute(context.Background(), services.ComputeRequest{})
	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Equal(t, services.PassModeSkipped, stats.Mode)

	cat := helpers.NewCatalog(t, []string{"Foo", "Bar"}, "Bar <- Foo")
	p.SetCatalog(cat)
	_, stats, err = p.Compute(context.Background(), services.ComputeRequest{})
	require.NoError(t, err)
	assert.Equal(t, services.PassModeSkipped, stats.Mode)
	assert.Zero(t, emitted)
}

func TestCraftPlanner_RejectsSnapshotOutsideCatalog(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar"}, "Bar <- Foo")
	p := newPlanner(cat, nil)

	_, _, err := p.Compute(context.Background(), services.ComputeRequest{
		Snapshot: &crafting.Snapshot{Physical: []int{1}},
	})

	var shape *crafting.ErrSnapshotShape
	assert.ErrorAs(t, err, &shape)
}

func TestCraftPlanner_ShortCircuitsUnrelatedChanges(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz", "Junk"}, "Bar <- Foo", "Baz <- Bar")
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1})
	p := newPlanner(cat, nil)

	var emitted [][]*crafting.CraftableEntry
	p.Subscribe(func(entries []*crafting.CraftableEntry) { emitted = append(emitted, entries) })

	junk := helpers.Commodity(t, cat, "Junk")
	foo := helpers.Commodity(t, cat, "Foo")
	ctx := context.Background()

	first, stats, err := p.Compute(ctx, services.ComputeRequest{Snapshot: snap})
	require.NoError(t, err)
	assert.Equal(t, services.PassModeFull, stats.Mode)

	cached, stats, err := p.Compute(ctx, services.ComputeRequest{Snapshot: snap, Changed: []crafting.Commodity{junk}})
	require.NoError(t, err)
	assert.Equal(t, services.PassModeCached, stats.Mode)
	assert.Equal(t, helpers.ResultNames(cat, first), helpers.ResultNames(cat, cached))

	_, stats, err = p.Compute(ctx, services.ComputeRequest{Snapshot: snap, Changed: []crafting.Commodity{foo}})
	require.NoError(t, err)
	assert.Equal(t, services.PassModeFull, stats.Mode)

	_, stats, err = p.Compute(ctx, services.ComputeRequest{Snapshot: snap, Changed: []crafting.Commodity{junk}, Force: true})
	require.NoError(t, err)
	assert.Equal(t, services.PassModeFull, stats.Mode)

	p.SetOptions(p.Options())
	_, stats, err = p.Compute(ctx, services.ComputeRequest{Snapshot: snap, Changed: []crafting.Commodity{junk}})
	require.NoError(t, err)
	assert.Equal(t, services.PassModeFull, stats.Mode, "options change drops the cache")

	assert.Len(t, emitted, 5)
	assert.Equal(t, helpers.ResultNames(cat, first), helpers.ResultNames(cat, p.CachedEntries()))
}

func TestCraftPlanner_CorruptedVariantChangeTriggersFullPass(t *testing.T) {
	def := helpers.NewCatalogDefinition(t, []string{"Foo", "Bar", "VoidBar"}, "Bar <- Foo")
	def.Corruptions = []crafting.CorruptionDef{{Base: "Bar", Corrupted: "VoidBar"}}
	cat := helpers.BuildCatalog(t, def)
	p := newPlanner(cat, nil)
	ctx := context.Background()

	entries, _, err := p.Compute(ctx, services.ComputeRequest{Snapshot: helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1})})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, stats, err := p.Compute(ctx, services.ComputeRequest{
		Snapshot: helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1, "VoidBar": 1}),
		Changed:  []crafting.Commodity{helpers.Commodity(t, cat, "VoidBar")},
	})
	require.NoError(t, err)
	assert.Equal(t, services.PassModeFull, stats.Mode)
	assert.Empty(t, entries)
}

func TestCraftPlanner_StatsUseClock(t *testing.T) {
	clock := shared.NewManualClock(time0)
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar"}, "Bar <- Foo")
	p := services.NewCraftPlanner(services.DefaultPlannerOptions(), clock)
	p.SetCatalog(cat)

	_, stats, err := p.Compute(context.Background(), services.ComputeRequest{Snapshot: helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1})})
	require.NoError(t, err)

	assert.Equal(t, time0, stats.StartedAt)
	assert.Equal(t, cat.Fingerprint(), stats.CatalogFingerprint)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Retained)
}
