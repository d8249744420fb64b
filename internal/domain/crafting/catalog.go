package crafting

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// ExclusionReason explains why a recipe is kept out of the search
type ExclusionReason string

const (
	// ExclusionDuplicate marks a recipe equal to an earlier one
	ExclusionDuplicate ExclusionReason = "DUPLICATE"

	// ExclusionNoIngredients marks a non-trade recipe with an empty ingredient multiset
	ExclusionNoIngredients ExclusionReason = "NO_INGREDIENTS"

	// ExclusionSelfCycle marks a recipe that consumes its own result
	ExclusionSelfCycle ExclusionReason = "SELF_CYCLE"
)

// ExcludedRecipe records a recipe the catalog will never offer to the search
type ExcludedRecipe struct {
	Recipe *Recipe
	Reason ExclusionReason
}

// Catalog is the read-only, deduplicated view of production rules plus the
// commodity index they are expressed in.
type Catalog struct {
	index       *CommodityIndex
	recipes     []*Recipe
	excluded    []ExcludedRecipe
	corruptions map[Commodity]Commodity
	fingerprint string
}

// NewCatalog validates indices and deduplicates recipes, keeping first
// occurrence order. Malformed recipes are excluded, never fatal; only indices
// outside the commodity index are rejected.
func NewCatalog(index *CommodityIndex, recipes []*Recipe, corruptions map[Commodity]Commodity) (*Catalog, error) {
	if index == nil {
		return nil, fmt.Errorf("commodity index is required")
	}

	cat := &Catalog{
		index:       index,
		corruptions: make(map[Commodity]Commodity, len(corruptions)),
	}

	seen := make(map[string]struct{}, len(recipes))
	for _, r := range recipes {
		if r == nil {
			continue
		}
		if !index.Contains(r.Result()) {
			return nil, &ErrCommodityOutOfRange{Commodity: r.Result(), Size: index.Len(), Context: "recipe result"}
		}
		for _, ing := range r.Ingredients() {
			if !index.Contains(ing.Commodity) {
				return nil, &ErrCommodityOutOfRange{Commodity: ing.Commodity, Size: index.Len(), Context: "recipe ingredient"}
			}
		}

		switch {
		case hasKey(seen, r.Key()):
			cat.excluded = append(cat.excluded, ExcludedRecipe{Recipe: r, Reason: ExclusionDuplicate})
		case r.IsEmpty():
			cat.excluded = append(cat.excluded, ExcludedRecipe{Recipe: r, Reason: ExclusionNoIngredients})
		case r.IsSelfCycle():
			cat.excluded = append(cat.excluded, ExcludedRecipe{Recipe: r, Reason: ExclusionSelfCycle})
		default:
			cat.recipes = append(cat.recipes, r)
		}
		seen[r.Key()] = struct{}{}
	}

	for base, corrupted := range corruptions {
		if !index.Contains(base) || !index.Contains(corrupted) {
			return nil, fmt.Errorf("corruption pair %d -> %d outside commodity index", int(base), int(corrupted))
		}
		cat.corruptions[base] = corrupted
	}

	cat.fingerprint = cat.computeFingerprint()
	return cat, nil
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func (c *Catalog) Index() *CommodityIndex      { return c.index }
func (c *Catalog) Recipes() []*Recipe          { return c.recipes }
func (c *Catalog) Excluded() []ExcludedRecipe  { return c.excluded }
func (c *Catalog) Size() int                   { return c.index.Len() }
func (c *Catalog) Fingerprint() string         { return c.fingerprint }

// CorruptedVariant returns the corrupted counterpart registered for base
func (c *Catalog) CorruptedVariant(base Commodity) (Commodity, bool) {
	v, ok := c.corruptions[base]
	return v, ok
}

func (c *Catalog) computeFingerprint() string {
	h := fnv.New64a()
	for _, name := range c.index.Names() {
		_, _ = h.Write([]byte(name))
		_, _ = h.Write([]byte{0})
	}
	for _, r := range c.recipes {
		_, _ = h.Write([]byte(r.Key()))
		_, _ = h.Write([]byte{0})
	}
	bases := make([]int, 0, len(c.corruptions))
	for b := range c.corruptions {
		bases = append(bases, int(b))
	}
	sort.Ints(bases)
	for _, b := range bases {
		_, _ = fmt.Fprintf(h, "%d>%d;", b, int(c.corruptions[Commodity(b)]))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
