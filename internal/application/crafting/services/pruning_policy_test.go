package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/test/helpers"
)

func pricedChain(t *testing.T, steps []crafting.Step, physical ...crafting.Ingredient) *crafting.Chain {
	t.Helper()
	l := crafting.NewLedger()
	for _, s := range steps {
		l = l.Apply(s)
	}
	return crafting.NewChain(steps, l, crafting.Costs{Physical: physical})
}

func TestWeightTable_UsesTierWeights(t *testing.T) {
	def := helpers.NewCatalogDefinition(t, nil)
	def.Items = []crafting.CommodityDef{{Name: "Common", Tier: "Tier1"}, {Name: "Rare", Tier: "Tier3"}, {Name: "Odd"}}
	cat := helpers.BuildCatalog(t, def)

	table := services.NewWeightTable(cat.Index(), map[string]float64{"Tier1": 1, "tier3": 5, "": -2})

	assert.Equal(t, 1.0, table.Weight(0))
	assert.Equal(t, 5.0, table.Weight(1))
	assert.Equal(t, services.DefaultCommodityWeight, table.Weight(2))
	assert.Equal(t, services.DefaultCommodityWeight, table.Weight(42))
}

func TestPruningPolicy_Inefficiency(t *testing.T) {
	toBar, err := crafting.NewRecipe(1, 1, []crafting.Ingredient{{Commodity: 0, Count: 1}})
	require.NoError(t, err)
	toBaz, err := crafting.NewRecipe(2, 1, []crafting.Ingredient{{Commodity: 1, Count: 1}, {Commodity: 3, Count: 4}})
	require.NoError(t, err)
	costly, err := crafting.NewRecipe(1, 1, []crafting.Ingredient{{Commodity: 0, Count: 9}})
	require.NoError(t, err)

	policy := services.NewPruningPolicy(nil, 2.0)

	wasteful := pricedChain(t, []crafting.Step{toBar, toBaz},
		crafting.Ingredient{Commodity: 0, Count: 1}, crafting.Ingredient{Commodity: 3, Count: 4})
	assert.Equal(t, 5.0, policy.WeightedCost(wasteful))
	assert.Equal(t, 1.0, policy.WeightedYield(wasteful))
	assert.True(t, policy.IsInefficient(wasteful))

	seed := pricedChain(t, []crafting.Step{costly}, crafting.Ingredient{Commodity: 0, Count: 9})
	assert.False(t, policy.IsInefficient(seed), "single recipes are kept")

	assert.False(t, services.NewPruningPolicy(nil, 0).IsInefficient(wasteful), "zero multiplier disables the check")
}

func TestPruningPolicy_Dominance(t *testing.T) {
	cheap, err := crafting.NewRecipe(1, 1, []crafting.Ingredient{{Commodity: 0, Count: 1}})
	require.NoError(t, err)
	dear, err := crafting.NewRecipe(1, 1, []crafting.Ingredient{{Commodity: 0, Count: 2}})
	require.NoError(t, err)
	bulk, err := crafting.NewRecipe(1, 3, []crafting.Ingredient{{Commodity: 0, Count: 2}})
	require.NoError(t, err)

	policy := services.NewPruningPolicy(nil, 2.0)
	a := pricedChain(t, []crafting.Step{cheap}, crafting.Ingredient{Commodity: 0, Count: 1})
	b := pricedChain(t, []crafting.Step{dear}, crafting.Ingredient{Commodity: 0, Count: 2})
	c := pricedChain(t, []crafting.Step{bulk}, crafting.Ingredient{Commodity: 0, Count: 2})

	assert.True(t, policy.IsDominated(b, []*crafting.Chain{a}))
	assert.False(t, policy.IsDominated(a, []*crafting.Chain{b}))
	assert.False(t, policy.IsDominated(c, []*crafting.Chain{a}), "more surplus is not dominated")
	assert.False(t, policy.IsDominated(a, nil))

	kept, evicted := policy.Evict([]*crafting.Chain{b, c}, a)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, []*crafting.Chain{c}, kept)
}
