package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// GetCatalogQuery loads a stored catalog. An empty Name lists stored names instead.
type GetCatalogQuery struct {
	Name string
}

// GetCatalogResponse carries either the built catalog or the stored names
type GetCatalogResponse struct {
	Catalog *crafting.Catalog
	Names   []string
}

// GetCatalogHandler handles the GetCatalog query
type GetCatalogHandler struct {
	catalogRepo crafting.CatalogRepository
}

// NewGetCatalogHandler creates a new GetCatalogHandler
func NewGetCatalogHandler(catalogRepo crafting.CatalogRepository) *GetCatalogHandler {
	return &GetCatalogHandler{catalogRepo: catalogRepo}
}

// Handle executes the GetCatalog query
func (h *GetCatalogHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetCatalogQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetCatalogQuery")
	}

	if query.Name == "" {
		names, err := h.catalogRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list catalogs: %w", err)
		}
		return &GetCatalogResponse{Names: names}, nil
	}

	def, err := h.catalogRepo.Load(ctx, query.Name)
	if err != nil {
		return nil, err
	}

	catalog, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("stored catalog %s is invalid: %w", query.Name, err)
	}

	return &GetCatalogResponse{Catalog: catalog}, nil
}
