package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/test/helpers"
)

func TestDemandIndex(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz", "Qux"},
		"Bar <- 2 Foo", "Baz <- 5 Foo + Bar", "Qux <- Qux + Foo")

	idx := services.NewDemandIndex(cat)

	assert.Equal(t, 5, idx.MaxDemand(0))
	assert.Equal(t, 1, idx.MaxDemand(1))
	assert.Equal(t, 0, idx.MaxDemand(2))
	assert.Equal(t, 0, idx.MaxDemand(3), "self-cycles are not in the catalog")
	assert.Equal(t, 0, idx.MaxDemand(99))
	assert.True(t, idx.IsIngredient(0))
	assert.False(t, idx.IsIngredient(2))
	assert.Equal(t, []crafting.Commodity{0, 1}, idx.Ingredients())
	assert.Len(t, idx.Consumers(0), 2)
	assert.False(t, idx.Empty())
}

func TestDemandIndex_IndependentOfRecipeOrder(t *testing.T) {
	a := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz"}, "Bar <- 2 Foo", "Baz <- 3 Foo + Bar")
	b := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz"}, "Baz <- 3 Foo + Bar", "Bar <- 2 Foo")

	ia, ib := services.NewDemandIndex(a), services.NewDemandIndex(b)
	for c := 0; c < a.Size(); c++ {
		assert.Equal(t, ia.MaxDemand(crafting.Commodity(c)), ib.MaxDemand(crafting.Commodity(c)))
	}
	assert.Equal(t, ia.Ingredients(), ib.Ingredients())
}
