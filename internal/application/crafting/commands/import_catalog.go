package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// ImportCatalogCommand validates a catalog definition, stores it under Name
// and optionally installs it on the planner
type ImportCatalogCommand struct {
	Name       string
	Definition *crafting.CatalogDefinition
	Activate   bool
}

// ImportCatalogResponse describes the imported catalog
type ImportCatalogResponse struct {
	Name        string
	Fingerprint string
	Commodities int
	Recipes     int
	Excluded    []crafting.ExcludedRecipe
}

// ImportCatalogHandler handles the ImportCatalog command
type ImportCatalogHandler struct {
	catalogRepo crafting.CatalogRepository
	planner     *services.CraftPlanner
}

// NewImportCatalogHandler creates a new ImportCatalogHandler. catalogRepo may
// be nil when only activation is wanted.
func NewImportCatalogHandler(catalogRepo crafting.CatalogRepository, planner *services.CraftPlanner) *ImportCatalogHandler {
	return &ImportCatalogHandler{
		catalogRepo: catalogRepo,
		planner:     planner,
	}
}

// Handle executes the ImportCatalog command
func (h *ImportCatalogHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ImportCatalogCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ImportCatalogCommand")
	}
	if cmd.Definition == nil {
		return nil, fmt.Errorf("catalog definition is required")
	}
	if cmd.Name == "" {
		return nil, fmt.Errorf("catalog name is required")
	}

	catalog, err := cmd.Definition.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", cmd.Name, err)
	}

	logger := common.LoggerFromContext(ctx)
	for _, ex := range catalog.Excluded() {
		logger.Log(common.LevelWarn, "Recipe excluded from catalog", map[string]interface{}{
			"catalog": cmd.Name,
			"recipe":  ex.Recipe.Key(),
			"reason":  string(ex.Reason),
		})
	}

	if h.catalogRepo != nil {
		if err := h.catalogRepo.Save(ctx, cmd.Name, cmd.Definition); err != nil {
			return nil, fmt.Errorf("failed to save catalog %s: %w", cmd.Name, err)
		}
	}

	if cmd.Activate && h.planner != nil {
		h.planner.SetCatalog(catalog)
	}

	logger.Log(common.LevelInfo, "Catalog imported", map[string]interface{}{
		"catalog":     cmd.Name,
		"commodities": catalog.Size(),
		"recipes":     len(catalog.Recipes()),
		"excluded":    len(catalog.Excluded()),
	})

	return &ImportCatalogResponse{
		Name:        cmd.Name,
		Fingerprint: catalog.Fingerprint(),
		Commodities: catalog.Size(),
		Recipes:     len(catalog.Recipes()),
		Excluded:    catalog.Excluded(),
	}, nil
}
