package crafting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

func TestLedger_ApplyLeavesReceiverUntouched(t *testing.T) {
	r, err := crafting.NewRecipe(1, 2, []crafting.Ingredient{{Commodity: 0, Count: 3}})
	require.NoError(t, err)

	empty := crafting.NewLedger()
	once := empty.Apply(r)
	twice := once.Apply(r)

	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 2, once.Surplus(1))
	assert.Equal(t, -3, once.Surplus(0))
	assert.Equal(t, 4, twice.Surplus(1))
	assert.Equal(t, -6, twice.Surplus(0))
}

func TestLedger_SiblingsDoNotShareState(t *testing.T) {
	toBar, err := crafting.NewRecipe(1, 1, []crafting.Ingredient{{Commodity: 0, Count: 1}})
	require.NoError(t, err)
	toBaz, err := crafting.NewRecipe(2, 1, []crafting.Ingredient{{Commodity: 1, Count: 1}})
	require.NoError(t, err)

	parent := crafting.NewLedger().Apply(toBar)
	left := parent.Apply(toBaz)
	right := parent.Apply(toBar)

	assert.Equal(t, 1, parent.Surplus(1))
	assert.Equal(t, 0, left.Surplus(1))
	assert.Equal(t, 2, right.Surplus(1))
	assert.Equal(t, 0, right.Surplus(2))
}

func TestLedger_ZeroBalancesAreDropped(t *testing.T) {
	toBar, err := crafting.NewRecipe(1, 1, []crafting.Ingredient{{Commodity: 0, Count: 1}})
	require.NoError(t, err)
	toBaz, err := crafting.NewRecipe(2, 1, []crafting.Ingredient{{Commodity: 1, Count: 1}})
	require.NoError(t, err)

	l := crafting.NewLedger().Apply(toBar).Apply(toBaz)

	assert.Equal(t, map[crafting.Commodity]int{0: -1, 2: 1}, l.Profile())
	assert.Equal(t, []crafting.Ingredient{{Commodity: 0, Count: 1}}, l.Deficits())
}

func TestLedger_TradeStepAddsOneUnit(t *testing.T) {
	l := crafting.NewLedger().Apply(crafting.NewTradeStep("alice", 4))

	assert.Equal(t, 1, l.Surplus(4))
	assert.Empty(t, l.Deficits())
}
