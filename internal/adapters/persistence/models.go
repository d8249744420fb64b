package persistence

import (
	"time"
)

// CatalogModel represents the catalogs table
type CatalogModel struct {
	Name      string    `gorm:"column:name;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (CatalogModel) TableName() string {
	return "catalogs"
}

// CatalogCommodityModel represents the catalog_commodities table.
// Position preserves index order inside each kind.
type CatalogCommodityModel struct {
	ID          int    `gorm:"column:id;primaryKey;autoIncrement"`
	CatalogName string `gorm:"column:catalog_name;not null;index"`
	Kind        string `gorm:"column:kind;not null"` // ITEM or EQUIPMENT
	Position    int    `gorm:"column:position;not null"`
	Name        string `gorm:"column:name;not null"`
	Tier        string `gorm:"column:tier"`
}

func (CatalogCommodityModel) TableName() string {
	return "catalog_commodities"
}

// CatalogRecipeModel represents the catalog_recipes table
type CatalogRecipeModel struct {
	ID          int    `gorm:"column:id;primaryKey;autoIncrement"`
	CatalogName string `gorm:"column:catalog_name;not null;index"`
	Position    int    `gorm:"column:position;not null"`
	Result      string `gorm:"column:result;not null"`
	Count       int    `gorm:"column:count;not null;default:1"`
	Ingredients string `gorm:"column:ingredients;type:text"` // JSON array as text
}

func (CatalogRecipeModel) TableName() string {
	return "catalog_recipes"
}

// CatalogCorruptionModel represents the catalog_corruptions table
type CatalogCorruptionModel struct {
	ID          int    `gorm:"column:id;primaryKey;autoIncrement"`
	CatalogName string `gorm:"column:catalog_name;not null;index"`
	Base        string `gorm:"column:base;not null"`
	Corrupted   string `gorm:"column:corrupted;not null"`
}

func (CatalogCorruptionModel) TableName() string {
	return "catalog_corruptions"
}

// PassModel represents the planner_passes table
type PassModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	CatalogName string    `gorm:"column:catalog_name;index"`
	Mode        string    `gorm:"column:mode;not null"`
	StartedAt   time.Time `gorm:"column:started_at;not null;index"`
	DurationMs  int64     `gorm:"column:duration_ms;not null;default:0"`
	Layers      int       `gorm:"column:layers;not null;default:0"`
	Retained    int       `gorm:"column:retained;not null;default:0"`
	Entries     int       `gorm:"column:entries;not null;default:0"`
	Rejections  string    `gorm:"column:rejections;type:text"` // JSON object as text
	Results     string    `gorm:"column:results;type:text"`    // JSON array as text
}

func (PassModel) TableName() string {
	return "planner_passes"
}
