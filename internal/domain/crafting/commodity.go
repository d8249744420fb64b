package crafting

import "fmt"

// Commodity is a dense index into the unified item + equipment address space.
// Values in [0, ItemCount) are items, the remainder are equipment.
type Commodity int

// NoCommodity marks an absent commodity reference.
const NoCommodity Commodity = -1

// CommodityKind distinguishes the two underlying categories
type CommodityKind string

const (
	// KindItem is a stackable inventory item
	KindItem CommodityKind = "ITEM"

	// KindEquipment is an equipment slot item
	KindEquipment CommodityKind = "EQUIPMENT"
)

// CommodityDef describes one commodity as registered by the catalog source
type CommodityDef struct {
	Name string
	Tier string
}

// CommodityIndex maps names to dense commodity indices. It is immutable once built.
type CommodityIndex struct {
	defs      []CommodityDef
	itemCount int
	byName    map[string]Commodity
}

// NewCommodityIndex flattens items followed by equipment into one index space.
func NewCommodityIndex(items []CommodityDef, equipment []CommodityDef) (*CommodityIndex, error) {
	defs := make([]CommodityDef, 0, len(items)+len(equipment))
	defs = append(defs, items...)
	defs = append(defs, equipment...)

	byName := make(map[string]Commodity, len(defs))
	for i, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("commodity at index %d has empty name", i)
		}
		if _, exists := byName[def.Name]; exists {
			return nil, &ErrDuplicateCommodity{Name: def.Name}
		}
		byName[def.Name] = Commodity(i)
	}

	return &CommodityIndex{
		defs:      defs,
		itemCount: len(items),
		byName:    byName,
	}, nil
}

func (ci *CommodityIndex) Len() int       { return len(ci.defs) }
func (ci *CommodityIndex) ItemCount() int { return ci.itemCount }

// Contains reports whether c is a valid index
func (ci *CommodityIndex) Contains(c Commodity) bool {
	return c >= 0 && int(c) < len(ci.defs)
}

// Kind returns the category of c
func (ci *CommodityIndex) Kind(c Commodity) CommodityKind {
	if int(c) < ci.itemCount {
		return KindItem
	}
	return KindEquipment
}

// Name returns the registered name, or a placeholder for out-of-range values
func (ci *CommodityIndex) Name(c Commodity) string {
	if !ci.Contains(c) {
		return fmt.Sprintf("#%d", int(c))
	}
	return ci.defs[c].Name
}

// Tier returns the registered tier of c (empty when unknown)
func (ci *CommodityIndex) Tier(c Commodity) string {
	if !ci.Contains(c) {
		return ""
	}
	return ci.defs[c].Tier
}

// Lookup resolves a commodity by name
func (ci *CommodityIndex) Lookup(name string) (Commodity, bool) {
	c, ok := ci.byName[name]
	return c, ok
}

// MustLookup resolves a commodity by name or returns ErrUnknownCommodity
func (ci *CommodityIndex) MustLookup(name string) (Commodity, error) {
	c, ok := ci.byName[name]
	if !ok {
		return NoCommodity, &ErrUnknownCommodity{Name: name}
	}
	return c, nil
}

// Names returns all names in index order
func (ci *CommodityIndex) Names() []string {
	names := make([]string, len(ci.defs))
	for i, def := range ci.defs {
		names[i] = def.Name
	}
	return names
}

// Defs returns a copy of the definitions in index order
func (ci *CommodityIndex) Defs() []CommodityDef {
	out := make([]CommodityDef, len(ci.defs))
	copy(out, ci.defs)
	return out
}
