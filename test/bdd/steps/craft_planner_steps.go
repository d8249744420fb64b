package steps

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/cookbook-go/internal/adapters/persistence"
	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/commands"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/queries"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/internal/domain/shared"
	"github.com/andrescamacho/cookbook-go/test/helpers"
)

// craftPlannerContext holds state for end-to-end planner scenarios: catalogs
// and pass history go through the shared test database
type craftPlannerContext struct {
	clock    *shared.ManualClock
	planner  *services.CraftPlanner
	mediator common.Mediator

	definition *crafting.CatalogDefinition
	snapshot   *crafting.SnapshotDefinition
	catalog    *crafting.Catalog

	entries []*crafting.CraftableEntry
	stats   *services.PassStats
	passes  []*crafting.PassRecord
	err     error
}

func (ctx *craftPlannerContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}

	ctx.clock = shared.NewManualClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	ctx.planner = services.NewCraftPlanner(services.DefaultPlannerOptions(), ctx.clock)

	catalogRepo := persistence.NewGormCatalogRepository(helpers.SharedTestDB, ctx.clock)
	passRepo := persistence.NewGormPassRepository(helpers.SharedTestDB)

	ctx.mediator = common.NewMediator()
	handlers := []error{
		common.RegisterHandler[*commands.ImportCatalogCommand](ctx.mediator, commands.NewImportCatalogHandler(catalogRepo, ctx.planner)),
		common.RegisterHandler[*commands.ComputeCraftablesCommand](ctx.mediator, commands.NewComputeCraftablesHandler(ctx.planner, passRepo)),
		common.RegisterHandler[*queries.ListRecentPassesQuery](ctx.mediator, queries.NewListRecentPassesHandler(passRepo)),
	}
	for _, err := range handlers {
		if err != nil {
			return err
		}
	}

	ctx.definition = &crafting.CatalogDefinition{}
	ctx.snapshot = &crafting.SnapshotDefinition{
		Physical:    make(map[string]int),
		Convertible: make(map[string][]crafting.SourceDef),
	}
	ctx.catalog = nil
	ctx.entries = nil
	ctx.stats = nil
	ctx.passes = nil
	ctx.err = nil
	return nil
}

// splitNames reads a comma separated name list
func splitNames(list string) []string {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// tableRows maps every data row by header name
func tableRows(table *godog.Table) []map[string]string {
	if len(table.Rows) == 0 {
		return nil
	}
	header := table.Rows[0]
	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		rows = append(rows, rowValues(header, row))
	}
	return rows
}

func rowValues(header, row *messages.PickleTableRow) map[string]string {
	values := make(map[string]string, len(header.Cells))
	for i, cell := range header.Cells {
		if i < len(row.Cells) {
			values[cell.Value] = strings.TrimSpace(row.Cells[i].Value)
		}
	}
	return values
}

// Given steps

func (ctx *craftPlannerContext) theCatalogHasItems(list string) error {
	for _, name := range splitNames(list) {
		ctx.definition.Items = append(ctx.definition.Items, crafting.CommodityDef{Name: name})
	}
	return nil
}

func (ctx *craftPlannerContext) theCatalogHasEquipment(list string) error {
	for _, name := range splitNames(list) {
		ctx.definition.Equipment = append(ctx.definition.Equipment, crafting.CommodityDef{Name: name})
	}
	return nil
}

func (ctx *craftPlannerContext) theCatalogHasRecipes(table *godog.Table) error {
	for _, row := range tableRows(table) {
		rd, err := helpers.ParseRecipe(row["recipe"])
		if err != nil {
			return err
		}
		ctx.definition.Recipes = append(ctx.definition.Recipes, rd)
	}
	return nil
}

func (ctx *craftPlannerContext) isTheCorruptedVariantOf(corrupted, base string) error {
	ctx.definition.Corruptions = append(ctx.definition.Corruptions, crafting.CorruptionDef{Base: base, Corrupted: corrupted})
	return nil
}

func (ctx *craftPlannerContext) theCatalogIsImportedAs(name string) error {
	resp, err := ctx.mediator.Send(context.Background(), &commands.ImportCatalogCommand{
		Name:       name,
		Definition: ctx.definition,
		Activate:   true,
	})
	if err != nil {
		return err
	}
	if resp.(*commands.ImportCatalogResponse).Fingerprint == "" {
		return fmt.Errorf("imported catalog %s has no fingerprint", name)
	}
	ctx.catalog = ctx.planner.Catalog()
	return nil
}

func (ctx *craftPlannerContext) theInventoryHolds(table *godog.Table) error {
	for _, row := range tableRows(table) {
		n, err := strconv.Atoi(row["count"])
		if err != nil {
			return fmt.Errorf("bad count %q", row["count"])
		}
		ctx.snapshot.Physical[row["commodity"]] = n
	}
	return nil
}

func (ctx *craftPlannerContext) theInventoryHoldsNothing() error {
	ctx.snapshot.Physical = make(map[string]int)
	return nil
}

func (ctx *craftPlannerContext) peerWithTradesHolds(peer string, trades int, table *godog.Table) error {
	def := crafting.PeerDef{Name: peer, RemainingTrades: trades, Stock: make(map[string]int)}
	for _, row := range tableRows(table) {
		n, err := strconv.Atoi(row["count"])
		if err != nil {
			return fmt.Errorf("bad count %q", row["count"])
		}
		def.Stock[row["commodity"]] = n
	}
	ctx.snapshot.Peers = append(ctx.snapshot.Peers, def)
	return nil
}

func (ctx *craftPlannerContext) sourceConvertsInto(source string, potential int, commodity string) error {
	ctx.snapshot.Convertible[commodity] = append(ctx.snapshot.Convertible[commodity], crafting.SourceDef{ID: source, Potential: potential})
	return nil
}

func (ctx *craftPlannerContext) theMaximumSearchDepthIs(depth int) error {
	opts := ctx.planner.Options()
	opts.MaxDepth = depth
	ctx.planner.SetOptions(opts)
	return nil
}

func (ctx *craftPlannerContext) peerTradingIsDisabled() error {
	opts := ctx.planner.Options()
	opts.PeerTradingEnabled = false
	ctx.planner.SetOptions(opts)
	return nil
}

// When steps

func (ctx *craftPlannerContext) compute(changed []crafting.Commodity) error {
	var snap *crafting.Snapshot
	if ctx.catalog != nil {
		var err error
		snap, err = ctx.snapshot.Resolve(ctx.catalog.Index())
		if err != nil {
			return err
		}
	}

	ctx.clock.Advance(time.Second)
	resp, err := ctx.mediator.Send(context.Background(), &commands.ComputeCraftablesCommand{
		Snapshot:    snap,
		Changed:     changed,
		CatalogName: "scenario",
	})
	ctx.err = err
	if err != nil {
		return nil
	}

	result := resp.(*commands.ComputeCraftablesResponse)
	ctx.entries = result.Entries
	ctx.stats = result.Stats
	return nil
}

func (ctx *craftPlannerContext) iComputeCraftables() error {
	return ctx.compute(nil)
}

func (ctx *craftPlannerContext) iComputeCraftablesAfterChanged(name string) error {
	if ctx.catalog == nil {
		return fmt.Errorf("no catalog imported")
	}
	c, ok := ctx.catalog.Index().Lookup(name)
	if !ok {
		return fmt.Errorf("unknown commodity %s", name)
	}
	return ctx.compute([]crafting.Commodity{c})
}

func (ctx *craftPlannerContext) iListRecentPasses() error {
	resp, err := ctx.mediator.Send(context.Background(), &queries.ListRecentPassesQuery{})
	if err != nil {
		return err
	}
	ctx.passes = resp.(*queries.ListRecentPassesResponse).Passes
	return nil
}

// Then steps

func (ctx *craftPlannerContext) theCraftableResultsShouldBe(list string) error {
	if ctx.err != nil {
		return fmt.Errorf("pass failed: %w", ctx.err)
	}
	expected := splitNames(list)
	actual := helpers.ResultNames(ctx.catalog, ctx.entries)
	sort.Strings(expected)
	sorted := append([]string(nil), actual...)
	sort.Strings(sorted)
	if strings.Join(expected, ",") != strings.Join(sorted, ",") {
		return fmt.Errorf("expected craftable results [%s] but got [%s]", strings.Join(expected, ", "), strings.Join(actual, ", "))
	}
	return nil
}

func (ctx *craftPlannerContext) nothingShouldBeCraftable() error {
	if ctx.err != nil {
		return fmt.Errorf("pass failed: %w", ctx.err)
	}
	if len(ctx.entries) != 0 {
		return fmt.Errorf("expected no craftable results but got %d", len(ctx.entries))
	}
	return nil
}

func (ctx *craftPlannerContext) entry(name string) (*crafting.CraftableEntry, error) {
	entry := helpers.EntryFor(ctx.catalog, ctx.entries, name)
	if entry == nil {
		return nil, fmt.Errorf("expected %s to be craftable", name)
	}
	return entry, nil
}

func (ctx *craftPlannerContext) shouldNotBeCraftable(name string) error {
	if helpers.EntryFor(ctx.catalog, ctx.entries, name) != nil {
		return fmt.Errorf("expected %s not to be craftable", name)
	}
	return nil
}

func (ctx *craftPlannerContext) shouldHaveMinimumDepth(name string, depth int) error {
	entry, err := ctx.entry(name)
	if err != nil {
		return err
	}
	if entry.MinDepth != depth {
		return fmt.Errorf("expected %s min depth %d but got %d", name, depth, entry.MinDepth)
	}
	return nil
}

func (ctx *craftPlannerContext) shouldHaveAChainCosting(name string, table *godog.Table) error {
	entry, err := ctx.entry(name)
	if err != nil {
		return err
	}

	expected := make(map[string]int)
	for _, row := range tableRows(table) {
		n, err := strconv.Atoi(row["count"])
		if err != nil {
			return fmt.Errorf("bad count %q", row["count"])
		}
		expected[row["commodity"]] = n
	}

	for _, ch := range entry.Chains {
		if ch.NonPhysicalCostEntries() > 0 {
			continue
		}
		got := helpers.PhysicalCostByName(ctx.catalog, ch)
		if sameCounts(expected, got) {
			return nil
		}
	}
	return fmt.Errorf("no physical-only chain for %s costs %v", name, expected)
}

func (ctx *craftPlannerContext) shouldHaveAChainTradingFrom(name string, count int, commodity, peer string) error {
	entry, err := ctx.entry(name)
	if err != nil {
		return err
	}
	c, ok := ctx.catalog.Index().Lookup(commodity)
	if !ok {
		return fmt.Errorf("unknown commodity %s", commodity)
	}
	for _, ch := range entry.Chains {
		if ch.Costs().TradedUnits(crafting.PeerID(peer), c) == count {
			return nil
		}
	}
	return fmt.Errorf("no chain for %s trades %d %s from %s", name, count, commodity, peer)
}

func (ctx *craftPlannerContext) shouldHaveAChainConvertingFrom(name string, count int, commodity, source string) error {
	entry, err := ctx.entry(name)
	if err != nil {
		return err
	}
	for _, ch := range entry.Chains {
		for _, cost := range ch.Costs().Convertible {
			if cost.Source == source && cost.Count == count && ctx.catalog.Index().Name(cost.Commodity) == commodity {
				return nil
			}
		}
	}
	return fmt.Errorf("no chain for %s converts %d %s from %s", name, count, commodity, source)
}

func (ctx *craftPlannerContext) noChainForShouldTradeWith(name string) error {
	entry, err := ctx.entry(name)
	if err != nil {
		return err
	}
	for _, ch := range entry.Chains {
		if len(ch.Costs().Trade) > 0 {
			return fmt.Errorf("chain for %s trades with peers", name)
		}
	}
	return nil
}

func (ctx *craftPlannerContext) thePassModeShouldBe(mode string) error {
	if ctx.err != nil {
		return fmt.Errorf("pass failed: %w", ctx.err)
	}
	if ctx.stats == nil || string(ctx.stats.Mode) != mode {
		return fmt.Errorf("expected pass mode %s but got %v", mode, ctx.stats)
	}
	return nil
}

func (ctx *craftPlannerContext) thePassHistoryShouldContainPasses(n int) error {
	if len(ctx.passes) != n {
		return fmt.Errorf("expected %d recorded passes but got %d", n, len(ctx.passes))
	}
	return nil
}

func (ctx *craftPlannerContext) theLatestRecordedPassShouldList(list string) error {
	if len(ctx.passes) == 0 {
		return fmt.Errorf("no recorded passes")
	}
	expected := splitNames(list)
	got := ctx.passes[0].Results
	if strings.Join(expected, ",") != strings.Join(got, ",") {
		return fmt.Errorf("expected latest pass results [%s] but got [%s]", strings.Join(expected, ", "), strings.Join(got, ", "))
	}
	return nil
}

func sameCounts(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// InitializeCraftPlannerScenario registers craft planner step definitions
func InitializeCraftPlannerScenario(sc *godog.ScenarioContext) {
	plannerCtx := &craftPlannerContext{}

	sc.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		return c, plannerCtx.reset()
	})

	sc.Step(`^the catalog has items "([^"]*)"$`, plannerCtx.theCatalogHasItems)
	sc.Step(`^the catalog has equipment "([^"]*)"$`, plannerCtx.theCatalogHasEquipment)
	sc.Step(`^the catalog has recipes:$`, plannerCtx.theCatalogHasRecipes)
	sc.Step(`^"([^"]*)" is the corrupted variant of "([^"]*)"$`, plannerCtx.isTheCorruptedVariantOf)
	sc.Step(`^the catalog is imported as "([^"]*)"$`, plannerCtx.theCatalogIsImportedAs)
	sc.Step(`^the inventory holds:$`, plannerCtx.theInventoryHolds)
	sc.Step(`^the inventory holds nothing$`, plannerCtx.theInventoryHoldsNothing)
	sc.Step(`^peer "([^"]*)" with (\d+) trades? left holds:$`, plannerCtx.peerWithTradesHolds)
	sc.Step(`^the source "([^"]*)" converts into (\d+) "([^"]*)"$`, plannerCtx.sourceConvertsInto)
	sc.Step(`^the maximum search depth is (\d+)$`, plannerCtx.theMaximumSearchDepthIs)
	sc.Step(`^peer trading is disabled$`, plannerCtx.peerTradingIsDisabled)

	sc.Step(`^I compute craftables$`, plannerCtx.iComputeCraftables)
	sc.Step(`^I compute craftables after "([^"]*)" changed$`, plannerCtx.iComputeCraftablesAfterChanged)
	sc.Step(`^I list recent passes$`, plannerCtx.iListRecentPasses)

	sc.Step(`^the craftable results should be "([^"]*)"$`, plannerCtx.theCraftableResultsShouldBe)
	sc.Step(`^nothing should be craftable$`, plannerCtx.nothingShouldBeCraftable)
	sc.Step(`^"([^"]*)" should not be craftable$`, plannerCtx.shouldNotBeCraftable)
	sc.Step(`^"([^"]*)" should have minimum depth (\d+)$`, plannerCtx.shouldHaveMinimumDepth)
	sc.Step(`^"([^"]*)" should have a chain costing:$`, plannerCtx.shouldHaveAChainCosting)
	sc.Step(`^"([^"]*)" should have a chain trading (\d+) "([^"]*)" from "([^"]*)"$`, plannerCtx.shouldHaveAChainTradingFrom)
	sc.Step(`^"([^"]*)" should have a chain converting (\d+) "([^"]*)" from "([^"]*)"$`, plannerCtx.shouldHaveAChainConvertingFrom)
	sc.Step(`^no chain for "([^"]*)" should trade with peers$`, plannerCtx.noChainForShouldTradeWith)
	sc.Step(`^the pass mode should be "([^"]*)"$`, plannerCtx.thePassModeShouldBe)
	sc.Step(`^the pass history should contain (\d+) pass(?:es)?$`, plannerCtx.thePassHistoryShouldContainPasses)
	sc.Step(`^the latest recorded pass should list "([^"]*)"$`, plannerCtx.theLatestRecordedPassShouldList)
}
