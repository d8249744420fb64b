package cli

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/cookbook-go/internal/adapters/metrics"
	"github.com/andrescamacho/cookbook-go/internal/adapters/persistence"
	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/commands"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/queries"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/internal/domain/shared"
	"github.com/andrescamacho/cookbook-go/internal/infrastructure/config"
	"github.com/andrescamacho/cookbook-go/internal/infrastructure/database"
	"github.com/andrescamacho/cookbook-go/internal/infrastructure/logging"
)

// application holds everything a command needs for one invocation
type application struct {
	cfg      *config.Config
	logger   *logging.StdLogger
	db       *gorm.DB
	mediator common.Mediator
	planner  *services.CraftPlanner
}

type appOptions struct {
	// withDatabase opens the configured database for catalogs and history
	withDatabase bool
}

func newApplication(opts appOptions) (*application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.NewLoggerFromConfig(&cfg.Logging)
	if err != nil {
		return nil, err
	}

	app := &application{
		cfg:      cfg,
		logger:   logger,
		mediator: common.NewMediator(),
		planner:  services.NewCraftPlanner(services.DefaultPlannerOptions(), shared.NewRealClock()),
	}

	var (
		catalogRepo crafting.CatalogRepository
		passRepo    crafting.PassRepository
	)
	if opts.withDatabase {
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			database.Close(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		app.db = db
		if cfg.Database.InMemory() {
			logger.Log(common.LevelWarn, "Using an in-memory database: catalogs and history are lost on exit", nil)
		}
		catalogRepo = persistence.NewGormCatalogRepository(db, nil)
		passRepo = persistence.NewGormPassRepository(db)
	}

	if err := app.setupMetrics(); err != nil {
		app.close()
		return nil, err
	}

	if err := app.registerHandlers(catalogRepo, passRepo); err != nil {
		app.close()
		return nil, err
	}

	return app, nil
}

func (a *application) setupMetrics() error {
	if !a.cfg.Metrics.Enabled {
		return nil
	}

	metrics.InitRegistry()

	planner := metrics.NewPlannerMetricsCollector()
	if err := planner.Register(); err != nil {
		return fmt.Errorf("failed to register planner metrics: %w", err)
	}
	metrics.SetGlobalPlannerCollector(planner)

	commandMetrics := metrics.NewCommandMetricsCollector()
	if err := commandMetrics.Register(); err != nil {
		return fmt.Errorf("failed to register command metrics: %w", err)
	}
	a.mediator.Use(metrics.PrometheusMiddleware(commandMetrics))
	return nil
}

func (a *application) registerHandlers(catalogRepo crafting.CatalogRepository, passRepo crafting.PassRepository) error {
	if err := common.RegisterHandler[*commands.ComputeCraftablesCommand](a.mediator, commands.NewComputeCraftablesHandler(a.planner, passRepo)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*commands.ImportCatalogCommand](a.mediator, commands.NewImportCatalogHandler(catalogRepo, a.planner)); err != nil {
		return err
	}
	if catalogRepo != nil {
		if err := common.RegisterHandler[*queries.GetCatalogQuery](a.mediator, queries.NewGetCatalogHandler(catalogRepo)); err != nil {
			return err
		}
	}
	if passRepo != nil {
		if err := common.RegisterHandler[*queries.ListRecentPassesQuery](a.mediator, queries.NewListRecentPassesHandler(passRepo)); err != nil {
			return err
		}
	}
	return nil
}

// context returns ctx carrying the application logger
func (a *application) context(ctx context.Context) context.Context {
	return common.WithLogger(ctx, a.logger)
}

// activate installs catalog on the planner together with options derived
// from configuration and flag overrides
func (a *application) activate(catalog *crafting.Catalog, overrides plannerOverrides) {
	a.planner.SetCatalog(catalog)
	a.planner.SetOptions(plannerOptions(&a.cfg.Planner, catalog.Index(), overrides))
}

func (a *application) close() {
	if a.db != nil {
		database.Close(a.db)
	}
	if a.logger != nil {
		a.logger.Close()
	}
	metrics.ResetRegistry()
}

// plannerOverrides carries flag values that take precedence over configuration
type plannerOverrides struct {
	maxDepth      *int
	maxChains     *int
	noTrades      bool
	noConvertible bool
	showCorrupted bool
}

func plannerOptions(cfg *config.PlannerConfig, index *crafting.CommodityIndex, o plannerOverrides) services.PlannerOptions {
	opts := services.PlannerOptions{
		MaxDepth:               cfg.MaxDepth,
		MaxChainsPerResult:     cfg.MaxChainsPerResult,
		PeerTradingEnabled:     cfg.PeerTradingEnabled && !o.noTrades,
		ConvertibleCostEnabled: cfg.ConvertibleCostEnabled && !o.noConvertible,
		HideCorrupted:          cfg.HideCorrupted && !o.showCorrupted,
		InefficiencyMultiplier: cfg.InefficiencyMultiplier,
		TierWeights:            cfg.Weights,
	}
	if o.maxDepth != nil {
		opts.MaxDepth = *o.maxDepth
	}
	if o.maxChains != nil {
		opts.MaxChainsPerResult = *o.maxChains
	}

	order := services.ParseTierCSV(cfg.TierOrder)
	if len(order) == 0 {
		order = services.DefaultTierOrder
	}
	opts.Comparator = services.NewTierOrder(index, order, services.IndexSortMode(cfg.IndexSortMode)).Compare
	return opts
}
