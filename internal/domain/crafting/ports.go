package crafting

import (
	"context"
	"time"
)

// CatalogRepository persists named catalog definitions
type CatalogRepository interface {
	// Save creates or replaces the catalog stored under name
	Save(ctx context.Context, name string, def *CatalogDefinition) error

	// Load retrieves the catalog stored under name
	Load(ctx context.Context, name string) (*CatalogDefinition, error)

	// List returns stored catalog names in alphabetical order
	List(ctx context.Context) ([]string, error)
}

// PassRecord summarizes one recomputation pass
type PassRecord struct {
	ID          string
	CatalogName string
	Mode        string
	StartedAt   time.Time
	Duration    time.Duration
	Layers      int
	Retained    int
	Entries     int
	Rejections  map[string]int
	Results     []string
}

// PassRepository stores pass history
type PassRepository interface {
	// Record persists a pass summary
	Record(ctx context.Context, record *PassRecord) error

	// FindRecent returns up to limit records, newest first
	FindRecent(ctx context.Context, limit int) ([]*PassRecord, error)
}
