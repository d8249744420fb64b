package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// GormPassRepository implements PassRepository using GORM
type GormPassRepository struct {
	db *gorm.DB
}

// NewGormPassRepository creates a new GORM pass history repository
func NewGormPassRepository(db *gorm.DB) *GormPassRepository {
	return &GormPassRepository{db: db}
}

// Record persists a pass summary
func (r *GormPassRepository) Record(ctx context.Context, record *crafting.PassRecord) error {
	model, err := r.entityToModel(record)
	if err != nil {
		return fmt.Errorf("failed to convert pass to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record pass: %w", err)
	}
	return nil
}

// FindRecent returns up to limit records, newest first
func (r *GormPassRepository) FindRecent(ctx context.Context, limit int) ([]*crafting.PassRecord, error) {
	var models []PassModel
	result := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&models)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to find recent passes: %w", result.Error)
	}

	records := make([]*crafting.PassRecord, 0, len(models))
	for i := range models {
		record, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert pass %s: %w", models[i].ID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *GormPassRepository) entityToModel(record *crafting.PassRecord) (*PassModel, error) {
	rejectionsJSON, err := json.Marshal(record.Rejections)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rejections: %w", err)
	}
	resultsJSON, err := json.Marshal(record.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	return &PassModel{
		ID:          record.ID,
		CatalogName: record.CatalogName,
		Mode:        record.Mode,
		StartedAt:   record.StartedAt,
		DurationMs:  record.Duration.Milliseconds(),
		Layers:      record.Layers,
		Retained:    record.Retained,
		Entries:     record.Entries,
		Rejections:  string(rejectionsJSON),
		Results:     string(resultsJSON),
	}, nil
}

func (r *GormPassRepository) modelToEntity(model *PassModel) (*crafting.PassRecord, error) {
	record := &crafting.PassRecord{
		ID:          model.ID,
		CatalogName: model.CatalogName,
		Mode:        model.Mode,
		StartedAt:   model.StartedAt,
		Duration:    time.Duration(model.DurationMs) * time.Millisecond,
		Layers:      model.Layers,
		Retained:    model.Retained,
		Entries:     model.Entries,
	}

	if model.Rejections != "" {
		if err := json.Unmarshal([]byte(model.Rejections), &record.Rejections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rejections: %w", err)
		}
	}
	if model.Results != "" {
		if err := json.Unmarshal([]byte(model.Results), &record.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
	}
	return record, nil
}
