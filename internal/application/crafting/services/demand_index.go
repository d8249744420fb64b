package services

import (
	"sort"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// DemandIndex is derived once per catalog: for each commodity the largest
// single-recipe ingredient count, and the recipes that consume it.
type DemandIndex struct {
	maxDemand   []int
	consumers   map[crafting.Commodity][]*crafting.Recipe
	ingredients []crafting.Commodity
}

// NewDemandIndex scans every searchable recipe of the catalog. The result does
// not depend on recipe order.
func NewDemandIndex(catalog *crafting.Catalog) *DemandIndex {
	idx := &DemandIndex{
		maxDemand: make([]int, catalog.Size()),
		consumers: make(map[crafting.Commodity][]*crafting.Recipe),
	}

	for _, r := range catalog.Recipes() {
		if r.IsSelfCycle() {
			continue
		}
		for _, ing := range r.Ingredients() {
			if ing.Count > idx.maxDemand[ing.Commodity] {
				idx.maxDemand[ing.Commodity] = ing.Count
			}
			idx.consumers[ing.Commodity] = append(idx.consumers[ing.Commodity], r)
		}
	}

	for c := range idx.consumers {
		idx.ingredients = append(idx.ingredients, c)
	}
	sort.Slice(idx.ingredients, func(i, j int) bool { return idx.ingredients[i] < idx.ingredients[j] })

	return idx
}

// MaxDemand is the largest count any single recipe asks of c
func (d *DemandIndex) MaxDemand(c crafting.Commodity) int {
	if c < 0 || int(c) >= len(d.maxDemand) {
		return 0
	}
	return d.maxDemand[c]
}

// Consumers lists the recipes that take c as an ingredient
func (d *DemandIndex) Consumers(c crafting.Commodity) []*crafting.Recipe {
	return d.consumers[c]
}

// IsIngredient reports whether any recipe consumes c
func (d *DemandIndex) IsIngredient(c crafting.Commodity) bool {
	return d.MaxDemand(c) > 0
}

// Ingredients lists every consumed commodity in ascending order
func (d *DemandIndex) Ingredients() []crafting.Commodity {
	return d.ingredients
}

// Empty reports an index built from a catalog without searchable recipes
func (d *DemandIndex) Empty() bool {
	return len(d.ingredients) == 0
}
