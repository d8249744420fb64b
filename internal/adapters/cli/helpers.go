package cli

import (
	"context"
	"fmt"

	"github.com/andrescamacho/cookbook-go/internal/adapters/catalogfile"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/queries"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// catalogSource identifies where a command reads its catalog from: a YAML
// file or a name stored in the database
type catalogSource struct {
	file   string
	stored string
}

func (s catalogSource) validate() error {
	switch {
	case s.file == "" && s.stored == "":
		return fmt.Errorf("one of --catalog or --stored is required")
	case s.file != "" && s.stored != "":
		return fmt.Errorf("--catalog and --stored are mutually exclusive")
	}
	return nil
}

// name labels the catalog in pass history
func (s catalogSource) name() string {
	if s.stored != "" {
		return s.stored
	}
	return s.file
}

func (s catalogSource) needsDatabase() bool {
	return s.stored != ""
}

// loadCatalog builds the catalog from its source
func loadCatalog(ctx context.Context, app *application, src catalogSource) (*crafting.Catalog, error) {
	if src.file != "" {
		def, err := catalogfile.LoadCatalogFile(src.file)
		if err != nil {
			return nil, err
		}
		return catalogfile.BuildCatalog(def)
	}

	response, err := app.mediator.Send(ctx, &queries.GetCatalogQuery{Name: src.stored})
	if err != nil {
		return nil, err
	}
	return response.(*queries.GetCatalogResponse).Catalog, nil
}

// intFlag returns a pointer to value when the flag was set explicitly
func intFlag(changed bool, value int) *int {
	if !changed {
		return nil
	}
	return &value
}
