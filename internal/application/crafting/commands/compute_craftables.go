package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/andrescamacho/cookbook-go/internal/adapters/metrics"
	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/pkg/utils"
)

// ComputeCraftablesCommand triggers one planner pass
type ComputeCraftablesCommand struct {
	Snapshot *crafting.Snapshot
	Changed  []crafting.Commodity
	Force    bool

	// CatalogName labels the pass in history
	CatalogName string

	// RequireCatalog turns a not-ready pass into ErrCatalogNotReady
	RequireCatalog bool
}

// ComputeCraftablesResponse carries the emitted entries and pass summary
type ComputeCraftablesResponse struct {
	Entries []*crafting.CraftableEntry
	Stats   *services.PassStats
	PassID  string
}

// ComputeCraftablesHandler runs passes on a shared planner
type ComputeCraftablesHandler struct {
	planner  *services.CraftPlanner
	passRepo crafting.PassRepository
}

// NewComputeCraftablesHandler creates a handler. passRepo may be nil, in which
// case history is not recorded.
func NewComputeCraftablesHandler(planner *services.CraftPlanner, passRepo crafting.PassRepository) *ComputeCraftablesHandler {
	return &ComputeCraftablesHandler{
		planner:  planner,
		passRepo: passRepo,
	}
}

// Handle executes the ComputeCraftables command
func (h *ComputeCraftablesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ComputeCraftablesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ComputeCraftablesCommand")
	}

	entries, stats, err := h.planner.Compute(ctx, services.ComputeRequest{
		Snapshot: cmd.Snapshot,
		Changed:  cmd.Changed,
		Force:    cmd.Force,
	})
	if err != nil {
		return nil, err
	}

	if stats.Mode == services.PassModeSkipped {
		if cmd.RequireCatalog {
			return nil, &crafting.ErrCatalogNotReady{}
		}
		return &ComputeCraftablesResponse{Stats: stats}, nil
	}

	metrics.RecordPlannerPass(stats)

	response := &ComputeCraftablesResponse{
		Entries: entries,
		Stats:   stats,
	}

	if stats.Mode == services.PassModeFull && h.passRepo != nil {
		record := buildPassRecord(cmd.CatalogName, stats, entries, h.planner.Catalog().Index())
		if err := h.passRepo.Record(ctx, record); err != nil {
			// History is best-effort; the pass itself succeeded
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Failed to record pass history", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			response.PassID = record.ID
		}
	}

	return response, nil
}

func buildPassRecord(
	catalogName string,
	stats *services.PassStats,
	entries []*crafting.CraftableEntry,
	index *crafting.CommodityIndex,
) *crafting.PassRecord {
	rejections := make(map[string]int, len(stats.Rejections))
	for reason, n := range stats.Rejections {
		rejections[string(reason)] = n
	}

	results := make([]string, 0, len(entries))
	for _, e := range entries {
		results = append(results, index.Name(e.Result))
	}
	sort.Strings(results)

	return &crafting.PassRecord{
		ID:          utils.GeneratePassID(catalogName),
		CatalogName: catalogName,
		Mode:        string(stats.Mode),
		StartedAt:   stats.StartedAt,
		Duration:    stats.Duration,
		Layers:      stats.Layers,
		Retained:    stats.Retained,
		Entries:     stats.Entries,
		Rejections:  rejections,
		Results:     results,
	}
}
