package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/internal/domain/shared"
)

const (
	kindItem      = "ITEM"
	kindEquipment = "EQUIPMENT"
)

// GormCatalogRepository implements CatalogRepository using GORM
type GormCatalogRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormCatalogRepository creates a new GORM catalog repository
func NewGormCatalogRepository(db *gorm.DB, clock shared.Clock) *GormCatalogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormCatalogRepository{db: db, clock: clock}
}

// Save replaces the catalog stored under name in a single transaction
func (r *GormCatalogRepository) Save(ctx context.Context, name string, def *crafting.CatalogDefinition) error {
	commodities, recipes, corruptions, err := r.definitionToModels(name, def)
	if err != nil {
		return fmt.Errorf("failed to convert catalog to models: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := r.clock.Now()

		var existing CatalogModel
		err := tx.Where("name = ?", name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&CatalogModel{Name: name, CreatedAt: now, UpdatedAt: now}).Error; err != nil {
				return fmt.Errorf("failed to create catalog: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to find catalog: %w", err)
		default:
			if err := tx.Model(&existing).Update("updated_at", now).Error; err != nil {
				return fmt.Errorf("failed to update catalog: %w", err)
			}
		}

		for _, model := range []interface{}{&CatalogCommodityModel{}, &CatalogRecipeModel{}, &CatalogCorruptionModel{}} {
			if err := tx.Where("catalog_name = ?", name).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear catalog rows: %w", err)
			}
		}

		if len(commodities) > 0 {
			if err := tx.Create(&commodities).Error; err != nil {
				return fmt.Errorf("failed to save commodities: %w", err)
			}
		}
		if len(recipes) > 0 {
			if err := tx.Create(&recipes).Error; err != nil {
				return fmt.Errorf("failed to save recipes: %w", err)
			}
		}
		if len(corruptions) > 0 {
			if err := tx.Create(&corruptions).Error; err != nil {
				return fmt.Errorf("failed to save corruptions: %w", err)
			}
		}
		return nil
	})
}

// Load retrieves the catalog stored under name
func (r *GormCatalogRepository) Load(ctx context.Context, name string) (*crafting.CatalogDefinition, error) {
	db := r.db.WithContext(ctx)

	var catalog CatalogModel
	if err := db.Where("name = ?", name).First(&catalog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &crafting.ErrCatalogNotFound{Name: name}
		}
		return nil, fmt.Errorf("failed to find catalog: %w", err)
	}

	var commodities []CatalogCommodityModel
	if err := db.Where("catalog_name = ?", name).Order("kind DESC, position ASC").Find(&commodities).Error; err != nil {
		return nil, fmt.Errorf("failed to load commodities: %w", err)
	}

	var recipes []CatalogRecipeModel
	if err := db.Where("catalog_name = ?", name).Order("position ASC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	var corruptions []CatalogCorruptionModel
	if err := db.Where("catalog_name = ?", name).Order("id ASC").Find(&corruptions).Error; err != nil {
		return nil, fmt.Errorf("failed to load corruptions: %w", err)
	}

	return r.modelsToDefinition(commodities, recipes, corruptions)
}

// List returns stored catalog names in alphabetical order
func (r *GormCatalogRepository) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&CatalogModel{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}
	return names, nil
}

// definitionToModels converts a catalog definition to its row models
func (r *GormCatalogRepository) definitionToModels(
	name string,
	def *crafting.CatalogDefinition,
) ([]CatalogCommodityModel, []CatalogRecipeModel, []CatalogCorruptionModel, error) {
	commodities := make([]CatalogCommodityModel, 0, len(def.Items)+len(def.Equipment))
	for i, d := range def.Items {
		commodities = append(commodities, CatalogCommodityModel{CatalogName: name, Kind: kindItem, Position: i, Name: d.Name, Tier: d.Tier})
	}
	for i, d := range def.Equipment {
		commodities = append(commodities, CatalogCommodityModel{CatalogName: name, Kind: kindEquipment, Position: i, Name: d.Name, Tier: d.Tier})
	}

	recipes := make([]CatalogRecipeModel, 0, len(def.Recipes))
	for i, rd := range def.Recipes {
		ingredientsJSON, err := json.Marshal(rd.Ingredients)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal ingredients of %s: %w", rd.Result, err)
		}
		recipes = append(recipes, CatalogRecipeModel{
			CatalogName: name,
			Position:    i,
			Result:      rd.Result,
			Count:       rd.Count,
			Ingredients: string(ingredientsJSON),
		})
	}

	corruptions := make([]CatalogCorruptionModel, 0, len(def.Corruptions))
	for _, cd := range def.Corruptions {
		corruptions = append(corruptions, CatalogCorruptionModel{CatalogName: name, Base: cd.Base, Corrupted: cd.Corrupted})
	}

	return commodities, recipes, corruptions, nil
}

// modelsToDefinition converts row models back to a catalog definition
func (r *GormCatalogRepository) modelsToDefinition(
	commodities []CatalogCommodityModel,
	recipes []CatalogRecipeModel,
	corruptions []CatalogCorruptionModel,
) (*crafting.CatalogDefinition, error) {
	def := &crafting.CatalogDefinition{}

	for _, m := range commodities {
		cd := crafting.CommodityDef{Name: m.Name, Tier: m.Tier}
		if m.Kind == kindEquipment {
			def.Equipment = append(def.Equipment, cd)
		} else {
			def.Items = append(def.Items, cd)
		}
	}

	for _, m := range recipes {
		var ings []crafting.IngredientDef
		if m.Ingredients != "" {
			if err := json.Unmarshal([]byte(m.Ingredients), &ings); err != nil {
				return nil, fmt.Errorf("failed to unmarshal ingredients of %s: %w", m.Result, err)
			}
		}
		def.Recipes = append(def.Recipes, crafting.RecipeDef{Result: m.Result, Count: m.Count, Ingredients: ings})
	}

	for _, m := range corruptions {
		def.Corruptions = append(def.Corruptions, crafting.CorruptionDef{Base: m.Base, Corrupted: m.Corrupted})
	}

	return def, nil
}
