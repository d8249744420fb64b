package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// ParseRecipe reads the compact fixture notation "[n] Result <- [n] A + [n] B".
// Counts default to 1.
func ParseRecipe(s string) (crafting.RecipeDef, error) {
	left, right, ok := strings.Cut(s, "<-")
	if !ok {
		return crafting.RecipeDef{}, fmt.Errorf("recipe %q: missing '<-'", s)
	}

	count, result, err := parseTerm(left)
	if err != nil {
		return crafting.RecipeDef{}, fmt.Errorf("recipe %q: %w", s, err)
	}

	def := crafting.RecipeDef{Result: result, Count: count}
	for _, part := range strings.Split(right, "+") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		n, name, err := parseTerm(part)
		if err != nil {
			return crafting.RecipeDef{}, fmt.Errorf("recipe %q: %w", s, err)
		}
		def.Ingredients = append(def.Ingredients, crafting.IngredientDef{Name: name, Count: n})
	}
	return def, nil
}

func parseTerm(term string) (int, string, error) {
	fields := strings.Fields(term)
	switch len(fields) {
	case 1:
		return 1, fields[0], nil
	case 2:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, "", fmt.Errorf("bad count in %q", term)
		}
		return n, fields[1], nil
	default:
		return 0, "", fmt.Errorf("bad term %q", term)
	}
}

// NewCatalogDefinition declares items (all without tier) and parses recipes
func NewCatalogDefinition(t testing.TB, items []string, recipes ...string) *crafting.CatalogDefinition {
	t.Helper()

	def := &crafting.CatalogDefinition{}
	for _, name := range items {
		def.Items = append(def.Items, crafting.CommodityDef{Name: name})
	}
	for _, s := range recipes {
		rd, err := ParseRecipe(s)
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
		def.Recipes = append(def.Recipes, rd)
	}
	return def
}

// NewCatalog builds a catalog from items and compact recipes
func NewCatalog(t testing.TB, items []string, recipes ...string) *crafting.Catalog {
	t.Helper()
	return BuildCatalog(t, NewCatalogDefinition(t, items, recipes...))
}

// BuildCatalog builds def and fails the test on error
func BuildCatalog(t testing.TB, def *crafting.CatalogDefinition) *crafting.Catalog {
	t.Helper()

	cat, err := def.Build()
	if err != nil {
		t.Fatalf("fixture: build catalog: %v", err)
	}
	return cat
}

// NewSnapshot resolves physical holdings by name against cat
func NewSnapshot(t testing.TB, cat *crafting.Catalog, physical map[string]int) *crafting.Snapshot {
	t.Helper()
	return ResolveSnapshot(t, cat, &crafting.SnapshotDefinition{Physical: physical})
}

// ResolveSnapshot resolves def against cat and fails the test on error
func ResolveSnapshot(t testing.TB, cat *crafting.Catalog, def *crafting.SnapshotDefinition) *crafting.Snapshot {
	t.Helper()

	snap, err := def.Resolve(cat.Index())
	if err != nil {
		t.Fatalf("fixture: resolve snapshot: %v", err)
	}
	return snap
}

// Commodity looks up name in cat and fails the test when it is unknown
func Commodity(t testing.TB, cat *crafting.Catalog, name string) crafting.Commodity {
	t.Helper()

	c, err := cat.Index().MustLookup(name)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return c
}

// EntryFor finds the entry for the named result, or nil
func EntryFor(cat *crafting.Catalog, entries []*crafting.CraftableEntry, name string) *crafting.CraftableEntry {
	c, ok := cat.Index().Lookup(name)
	if !ok {
		return nil
	}
	for _, e := range entries {
		if e.Result == c {
			return e
		}
	}
	return nil
}

// ResultNames lists entry results by name in emitted order
func ResultNames(cat *crafting.Catalog, entries []*crafting.CraftableEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = cat.Index().Name(e.Result)
	}
	return names
}

// PhysicalCostByName flattens a chain's physical costs to a name -> count map
func PhysicalCostByName(cat *crafting.Catalog, chain *crafting.Chain) map[string]int {
	out := make(map[string]int)
	for _, c := range chain.Costs().Physical {
		out[cat.Index().Name(c.Commodity)] += c.Count
	}
	return out
}
