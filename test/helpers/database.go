package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/cookbook-go/internal/adapters/persistence"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/internal/domain/shared"
	"github.com/andrescamacho/cookbook-go/internal/infrastructure/database"
)

// plannerTables are created by database.AutoMigrate
var plannerTables = []string{
	"catalogs", "catalog_commodities", "catalog_recipes", "catalog_corruptions", "planner_passes",
}

// NewTestDB opens a private in-memory database with the catalog and pass
// tables migrated, closed when t ends
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { _ = database.Close(db) })

	for _, table := range plannerTables {
		require.True(t, db.Migrator().HasTable(table), "table %s not migrated", table)
	}
	return db
}

// SeedCatalog stores def under name, stamped with at
func SeedCatalog(t testing.TB, db *gorm.DB, name string, def *crafting.CatalogDefinition, at time.Time) {
	t.Helper()

	repo := persistence.NewGormCatalogRepository(db, shared.NewManualClock(at))
	require.NoError(t, repo.Save(context.Background(), name, def), "failed to seed catalog %s", name)
}
