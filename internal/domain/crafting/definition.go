package crafting

import "sort"

// Name-based catalog and snapshot descriptions, as read from files or storage.
// They are resolved against a CommodityIndex before the planner sees them.

// IngredientDef names one ingredient entry
type IngredientDef struct {
	Name  string
	Count int
}

// RecipeDef names one production rule
type RecipeDef struct {
	Result      string
	Count       int
	Ingredients []IngredientDef
}

// CorruptionDef pairs a base commodity with its corrupted variant
type CorruptionDef struct {
	Base      string
	Corrupted string
}

// CatalogDefinition is the serializable form of a Catalog
type CatalogDefinition struct {
	Items       []CommodityDef
	Equipment   []CommodityDef
	Recipes     []RecipeDef
	Corruptions []CorruptionDef
}

// Build resolves names and constructs the Catalog
func (d *CatalogDefinition) Build() (*Catalog, error) {
	index, err := NewCommodityIndex(d.Items, d.Equipment)
	if err != nil {
		return nil, err
	}

	recipes := make([]*Recipe, 0, len(d.Recipes))
	for _, rd := range d.Recipes {
		result, err := index.MustLookup(rd.Result)
		if err != nil {
			return nil, err
		}
		ings := make([]Ingredient, 0, len(rd.Ingredients))
		for _, id := range rd.Ingredients {
			c, err := index.MustLookup(id.Name)
			if err != nil {
				return nil, err
			}
			ings = append(ings, Ingredient{Commodity: c, Count: id.Count})
		}
		count := rd.Count
		if count == 0 {
			count = 1
		}
		r, err := NewRecipe(result, count, ings)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}

	corruptions := make(map[Commodity]Commodity, len(d.Corruptions))
	for _, cd := range d.Corruptions {
		base, err := index.MustLookup(cd.Base)
		if err != nil {
			return nil, err
		}
		corrupted, err := index.MustLookup(cd.Corrupted)
		if err != nil {
			return nil, err
		}
		corruptions[base] = corrupted
	}

	return NewCatalog(index, recipes, corruptions)
}

// SourceDef names one convertible source
type SourceDef struct {
	ID        string
	Potential int
}

// PeerDef names one peer's holdings
type PeerDef struct {
	Name            string
	RemainingTrades int
	Stock           map[string]int
}

// SnapshotDefinition is the serializable form of a Snapshot
type SnapshotDefinition struct {
	Physical    map[string]int
	Convertible map[string][]SourceDef
	Peers       []PeerDef
}

// Resolve maps names to indices, producing a dense snapshot for index
func (d *SnapshotDefinition) Resolve(index *CommodityIndex) (*Snapshot, error) {
	snap := &Snapshot{
		Physical:    make([]int, index.Len()),
		Convertible: make(map[Commodity][]ConvertibleSource, len(d.Convertible)),
	}

	for name, n := range d.Physical {
		c, err := index.MustLookup(name)
		if err != nil {
			return nil, err
		}
		snap.Physical[c] = n
	}

	for name, sources := range d.Convertible {
		c, err := index.MustLookup(name)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			snap.Convertible[c] = append(snap.Convertible[c], ConvertibleSource{ID: src.ID, Potential: src.Potential})
		}
	}

	for _, pd := range d.Peers {
		holdings := PeerHoldings{
			Peer:            PeerID(pd.Name),
			RemainingTrades: pd.RemainingTrades,
			Stock:           make(map[Commodity]int, len(pd.Stock)),
		}
		for name, n := range pd.Stock {
			c, err := index.MustLookup(name)
			if err != nil {
				return nil, err
			}
			holdings.Stock[c] = n
		}
		snap.Peers = append(snap.Peers, holdings)
	}

	return snap, nil
}

// Definition converts a Catalog back to its name-based form
func (c *Catalog) Definition() *CatalogDefinition {
	defs := c.index.Defs()
	def := &CatalogDefinition{
		Items:     defs[:c.index.ItemCount()],
		Equipment: defs[c.index.ItemCount():],
	}
	all := make([]*Recipe, 0, len(c.recipes)+len(c.excluded))
	all = append(all, c.recipes...)
	for _, ex := range c.excluded {
		if ex.Reason != ExclusionDuplicate {
			all = append(all, ex.Recipe)
		}
	}
	for _, r := range all {
		rd := RecipeDef{Result: c.index.Name(r.Result()), Count: r.ResultCount()}
		for _, ing := range r.Ingredients() {
			rd.Ingredients = append(rd.Ingredients, IngredientDef{Name: c.index.Name(ing.Commodity), Count: ing.Count})
		}
		def.Recipes = append(def.Recipes, rd)
	}
	bases := make([]Commodity, 0, len(c.corruptions))
	for base := range c.corruptions {
		bases = append(bases, base)
	}
	sort.Slice(bases, func(i, j int) bool { return bases[i] < bases[j] })
	for _, base := range bases {
		def.Corruptions = append(def.Corruptions, CorruptionDef{Base: c.index.Name(base), Corrupted: c.index.Name(c.corruptions[base])})
	}
	return def
}
