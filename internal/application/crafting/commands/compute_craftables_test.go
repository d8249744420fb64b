package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/commands"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/test/helpers"
)

func newPlanner(t *testing.T) (*services.CraftPlanner, *crafting.Catalog) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar", "Baz", "Junk"}, "Bar <- Foo", "Baz <- Bar")
	p := services.NewCraftPlanner(services.DefaultPlannerOptions(), nil)
	p.SetCatalog(cat)
	return p, cat
}

func TestComputeCraftables_RecordsFullPass(t *testing.T) {
	planner, cat := newPlanner(t)
	passes := helpers.NewMockPassRepository()
	handler := commands.NewComputeCraftablesHandler(planner, passes)

	resp, err := handler.Handle(context.Background(), &commands.ComputeCraftablesCommand{
		Snapshot:    helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1}),
		CatalogName: "base",
	})
	require.NoError(t, err)

	result := resp.(*commands.ComputeCraftablesResponse)
	assert.Len(t, result.Entries, 2)
	assert.Equal(t, services.PassModeFull, result.Stats.Mode)
	require.NotEmpty(t, result.PassID)

	records := passes.Records()
	require.Len(t, records, 1)
	assert.Equal(t, result.PassID, records[0].ID)
	assert.Equal(t, "base", records[0].CatalogName)
	assert.Equal(t, "FULL", records[0].Mode)
	assert.Equal(t, []string{"Bar", "Baz"}, records[0].Results)
}

func TestComputeCraftables_CachedPassIsNotRecorded(t *testing.T) {
	planner, cat := newPlanner(t)
	passes := helpers.NewMockPassRepository()
	handler := commands.NewComputeCraftablesHandler(planner, passes)
	snap := helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1})
	ctx := context.Background()

	_, err := handler.Handle(ctx, &commands.ComputeCraftablesCommand{Snapshot: snap})
	require.NoError(t, err)

	resp, err := handler.Handle(ctx, &commands.ComputeCraftablesCommand{
		Snapshot: snap,
		Changed:  []crafting.Commodity{helpers.Commodity(t, cat, "Junk")},
	})
	require.NoError(t, err)

	result := resp.(*commands.ComputeCraftablesResponse)
	assert.Equal(t, services.PassModeCached, result.Stats.Mode)
	assert.Empty(t, result.PassID)
	assert.Len(t, passes.Records(), 1)
}

func TestComputeCraftables_HistoryFailureDoesNotFailPass(t *testing.T) {
	planner, cat := newPlanner(t)
	passes := helpers.NewMockPassRepository()
	passes.SetRecordError(errors.New("disk full"))
	handler := commands.NewComputeCraftablesHandler(planner, passes)

	resp, err := handler.Handle(context.Background(), &commands.ComputeCraftablesCommand{
		Snapshot: helpers.NewSnapshot(t, cat, map[string]int{"Foo": 1}),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.(*commands.ComputeCraftablesResponse).PassID)
}

func TestComputeCraftables_NotReady(t *testing.T) {
	planner := services.NewCraftPlanner(services.DefaultPlannerOptions(), nil)
	handler := commands.NewComputeCraftablesHandler(planner, nil)

	resp, err := handler.Handle(context.Background(), &commands.ComputeCraftablesCommand{})
	require.NoError(t, err)
	assert.Equal(t, services.PassModeSkipped, resp.(*commands.ComputeCraftablesResponse).Stats.Mode)

	_, err = handler.Handle(context.Background(), &commands.ComputeCraftablesCommand{RequireCatalog: true})
	var notReady *crafting.ErrCatalogNotReady
	assert.ErrorAs(t, err, &notReady)
}

func TestComputeCraftables_InvalidRequest(t *testing.T) {
	planner, _ := newPlanner(t)
	handler := commands.NewComputeCraftablesHandler(planner, nil)

	_, err := handler.Handle(context.Background(), &commands.ImportCatalogCommand{})
	assert.Error(t, err)
}
