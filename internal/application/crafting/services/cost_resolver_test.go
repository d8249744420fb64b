package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

func TestCostResolver_ChannelOrder(t *testing.T) {
	r, err := crafting.NewRecipe(1, 1, []crafting.Ingredient{{Commodity: 0, Count: 5}})
	require.NoError(t, err)
	ledger := crafting.NewLedger().Apply(r)

	snap := &crafting.Snapshot{
		Physical: []int{2, 0},
		Convertible: map[crafting.Commodity][]crafting.ConvertibleSource{
			0: {{ID: "first", Potential: 2}, {ID: "second", Potential: 4}},
		},
	}

	costs, ok := services.NewCostResolver(true).Resolve(ledger, crafting.Costs{}, r, snap)
	require.True(t, ok)

	assert.Equal(t, []crafting.Ingredient{{Commodity: 0, Count: 2}}, costs.Physical)
	assert.Equal(t, []crafting.ConvertibleCost{
		{Source: "first", Commodity: 0, Count: 2},
		{Source: "second", Commodity: 0, Count: 1},
	}, costs.Convertible)
	assert.Empty(t, costs.Trade)
}

func TestCostResolver_NoPartialChains(t *testing.T) {
	r, err := crafting.NewRecipe(2, 1, []crafting.Ingredient{{Commodity: 0, Count: 1}, {Commodity: 1, Count: 3}})
	require.NoError(t, err)
	ledger := crafting.NewLedger().Apply(r)

	snap := &crafting.Snapshot{
		Physical:    []int{1, 1, 0},
		Convertible: map[crafting.Commodity][]crafting.ConvertibleSource{1: {{ID: "s", Potential: 1}}},
	}

	_, ok := services.NewCostResolver(true).Resolve(ledger, crafting.Costs{}, r, snap)
	assert.False(t, ok)

	_, ok = services.NewCostResolver(false).Resolve(ledger, crafting.Costs{}, r, &crafting.Snapshot{Physical: []int{1, 3, 0}})
	assert.True(t, ok)
}

func TestCostResolver_TradeLimits(t *testing.T) {
	trade := crafting.NewTradeStep("alice", 0)
	snap := &crafting.Snapshot{
		Physical: []int{0, 0},
		Peers:    []crafting.PeerHoldings{{Peer: "alice", Stock: map[crafting.Commodity]int{0: 2}, RemainingTrades: 3}},
	}
	resolver := services.NewCostResolver(true)

	first, ok := resolver.Resolve(crafting.NewLedger().Apply(trade), crafting.Costs{}, trade, snap)
	require.True(t, ok)
	assert.Equal(t, []crafting.TradeCost{{Peer: "alice", Commodity: 0, Count: 1}}, first.Trade)

	second, ok := resolver.Resolve(crafting.NewLedger(), first, trade, snap)
	require.True(t, ok)
	assert.Equal(t, 2, second.TradedUnits("alice", 0))
	assert.Equal(t, 1, first.TradedUnits("alice", 0), "parent costs are not mutated")

	_, ok = resolver.Resolve(crafting.NewLedger(), second, trade, snap)
	assert.False(t, ok, "peer stock exhausted")

	_, ok = resolver.Resolve(crafting.NewLedger(), crafting.Costs{}, crafting.NewTradeStep("bob", 0), snap)
	assert.False(t, ok, "unknown peer")
}

func TestCostResolver_RemainingTradesAcrossCommodities(t *testing.T) {
	snap := &crafting.Snapshot{
		Physical: []int{0, 0},
		Peers:    []crafting.PeerHoldings{{Peer: "alice", Stock: map[crafting.Commodity]int{0: 5, 1: 5}, RemainingTrades: 1}},
	}
	resolver := services.NewCostResolver(true)

	costs, ok := resolver.Resolve(crafting.NewLedger(), crafting.Costs{}, crafting.NewTradeStep("alice", 0), snap)
	require.True(t, ok)

	_, ok = resolver.Resolve(crafting.NewLedger(), costs, crafting.NewTradeStep("alice", 1), snap)
	assert.False(t, ok)
}
