package catalogfile

import "github.com/andrescamacho/cookbook-go/internal/domain/crafting"

// YAML documents. Field names are snake_case on disk.

type commodityDoc struct {
	Name string `yaml:"name"`
	Tier string `yaml:"tier,omitempty"`
}

type ingredientDoc struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

type recipeDoc struct {
	Result      string          `yaml:"result"`
	Count       int             `yaml:"count,omitempty"`
	Ingredients []ingredientDoc `yaml:"ingredients"`
}

type corruptionDoc struct {
	Base      string `yaml:"base"`
	Corrupted string `yaml:"corrupted"`
}

type catalogDoc struct {
	Items       []commodityDoc  `yaml:"items"`
	Equipment   []commodityDoc  `yaml:"equipment,omitempty"`
	Recipes     []recipeDoc     `yaml:"recipes"`
	Corruptions []corruptionDoc `yaml:"corruptions,omitempty"`
}

type sourceDoc struct {
	ID        string `yaml:"id"`
	Potential int    `yaml:"potential"`
}

type peerDoc struct {
	Name            string         `yaml:"name"`
	RemainingTrades int            `yaml:"remaining_trades"`
	Stock           map[string]int `yaml:"stock"`
}

type snapshotDoc struct {
	Physical    map[string]int         `yaml:"physical"`
	Convertible map[string][]sourceDoc `yaml:"convertible,omitempty"`
	Peers       []peerDoc              `yaml:"peers,omitempty"`
}

func commodityDocsToDefs(docs []commodityDoc) []crafting.CommodityDef {
	defs := make([]crafting.CommodityDef, 0, len(docs))
	for _, d := range docs {
		defs = append(defs, crafting.CommodityDef{Name: d.Name, Tier: d.Tier})
	}
	return defs
}

func defsToCommodityDocs(defs []crafting.CommodityDef) []commodityDoc {
	docs := make([]commodityDoc, 0, len(defs))
	for _, d := range defs {
		docs = append(docs, commodityDoc{Name: d.Name, Tier: d.Tier})
	}
	return docs
}

func (d *catalogDoc) toDefinition() *crafting.CatalogDefinition {
	def := &crafting.CatalogDefinition{
		Items:     commodityDocsToDefs(d.Items),
		Equipment: commodityDocsToDefs(d.Equipment),
	}
	for _, r := range d.Recipes {
		rd := crafting.RecipeDef{Result: r.Result, Count: r.Count}
		for _, ing := range r.Ingredients {
			rd.Ingredients = append(rd.Ingredients, crafting.IngredientDef{Name: ing.Name, Count: ing.Count})
		}
		def.Recipes = append(def.Recipes, rd)
	}
	for _, c := range d.Corruptions {
		def.Corruptions = append(def.Corruptions, crafting.CorruptionDef{Base: c.Base, Corrupted: c.Corrupted})
	}
	return def
}

func catalogDocFromDefinition(def *crafting.CatalogDefinition) *catalogDoc {
	doc := &catalogDoc{
		Items:     defsToCommodityDocs(def.Items),
		Equipment: defsToCommodityDocs(def.Equipment),
	}
	for _, r := range def.Recipes {
		rd := recipeDoc{Result: r.Result, Count: r.Count}
		for _, ing := range r.Ingredients {
			rd.Ingredients = append(rd.Ingredients, ingredientDoc{Name: ing.Name, Count: ing.Count})
		}
		doc.Recipes = append(doc.Recipes, rd)
	}
	for _, c := range def.Corruptions {
		doc.Corruptions = append(doc.Corruptions, corruptionDoc{Base: c.Base, Corrupted: c.Corrupted})
	}
	return doc
}

func (d *snapshotDoc) toDefinition() *crafting.SnapshotDefinition {
	def := &crafting.SnapshotDefinition{
		Physical:    d.Physical,
		Convertible: make(map[string][]crafting.SourceDef, len(d.Convertible)),
	}
	for name, sources := range d.Convertible {
		for _, s := range sources {
			def.Convertible[name] = append(def.Convertible[name], crafting.SourceDef{ID: s.ID, Potential: s.Potential})
		}
	}
	for _, p := range d.Peers {
		def.Peers = append(def.Peers, crafting.PeerDef{Name: p.Name, RemainingTrades: p.RemainingTrades, Stock: p.Stock})
	}
	return def
}
