package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/test/helpers"
)

func TestResultAggregator_ChainOrderAndFilters(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz", "Qux"}, "Bar <- Foo", "Baz <- Bar", "Qux <- Foo")
	recipes := cat.Recipes()
	toBar, toBaz, toQux := recipes[0], recipes[1], recipes[2]
	trade := crafting.NewTradeStep("alice", 0)

	l := func(steps ...crafting.Step) crafting.Ledger {
		out := crafting.NewLedger()
		for _, s := range steps {
			out = out.Apply(s)
		}
		return out
	}

	viaTrade := crafting.NewChain([]crafting.Step{trade, toBar}, l(trade, toBar), crafting.Costs{
		Trade: []crafting.TradeCost{{Peer: "alice", Commodity: 0, Count: 1}},
	})
	deep := crafting.NewChain([]crafting.Step{toBar, toBaz}, l(toBar, toBaz), crafting.Costs{
		Physical: []crafting.Ingredient{{Commodity: 0, Count: 1}},
	})
	shallow := crafting.NewChain([]crafting.Step{toBaz}, l(toBaz), crafting.Costs{
		Physical: []crafting.Ingredient{{Commodity: 1, Count: 1}},
	})
	dangling := crafting.NewChain([]crafting.Step{toQux, toBaz}, l(toQux, toBaz), crafting.Costs{})
	tradeOnly := crafting.NewChain([]crafting.Step{trade}, l(trade), crafting.Costs{})

	buckets := map[crafting.Commodity][]*crafting.Chain{
		1: {viaTrade},
		2: {dangling, deep, shallow},
		0: {tradeOnly},
	}

	entries := services.NewResultAggregator(cat, services.AggregatorOptions{}).Aggregate(buckets, nil)

	require.Len(t, entries, 2)
	assert.Equal(t, crafting.Commodity(1), entries[0].Result)
	assert.Equal(t, crafting.Commodity(2), entries[1].Result)

	baz := entries[1]
	assert.Equal(t, []*crafting.Chain{shallow, deep}, baz.Chains)
	assert.Equal(t, 1, baz.MinDepth)

	capped := services.NewResultAggregator(cat, services.AggregatorOptions{MaxChainsPerResult: 1}).Aggregate(buckets, nil)
	assert.Equal(t, []*crafting.Chain{shallow}, capped[1].Chains)
}

func TestResultAggregator_PhysicalChainsFirst(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar"}, "Bar <- Foo")
	toBar := cat.Recipes()[0]
	trade := crafting.NewTradeStep("alice", 0)

	traded := crafting.NewChain([]crafting.Step{toBar}, crafting.NewLedger().Apply(toBar), crafting.Costs{
		Trade: []crafting.TradeCost{{Peer: "alice", Commodity: 0, Count: 1}},
	})
	tradeStepChain := crafting.NewChain([]crafting.Step{trade, toBar}, crafting.NewLedger().Apply(trade).Apply(toBar), crafting.Costs{})

	entries := services.NewResultAggregator(cat, services.AggregatorOptions{}).Aggregate(
		map[crafting.Commodity][]*crafting.Chain{1: {traded, tradeStepChain}}, nil)

	require.Len(t, entries, 1)
	assert.Equal(t, []*crafting.Chain{tradeStepChain, traded}, entries[0].Chains)
}

func TestResultAggregator_ComparatorOrdersEntries(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz"}, "Bar <- Foo", "Baz <- Foo")
	toBar, toBaz := cat.Recipes()[0], cat.Recipes()[1]

	buckets := map[crafting.Commodity][]*crafting.Chain{
		1: {crafting.NewChain([]crafting.Step{toBar}, crafting.NewLedger().Apply(toBar), crafting.Costs{})},
		2: {crafting.NewChain([]crafting.Step{toBaz}, crafting.NewLedger().Apply(toBaz), crafting.Costs{})},
	}
	reverse := func(a, b *crafting.CraftableEntry) int { return int(b.Result) - int(a.Result) }

	entries := services.NewResultAggregator(cat, services.AggregatorOptions{Comparator: reverse}).Aggregate(buckets, nil)

	assert.Equal(t, []string{"Baz", "Bar"}, helpers.ResultNames(cat, entries))
}
