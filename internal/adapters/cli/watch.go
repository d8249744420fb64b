package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/cookbook-go/internal/adapters/catalogfile"
	"github.com/andrescamacho/cookbook-go/internal/adapters/metrics"
	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/commands"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
	"github.com/andrescamacho/cookbook-go/internal/infrastructure/pidfile"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	var (
		src        catalogSource
		snapshot   string
		showChains int
		record     bool
		throttle   time.Duration
		pidPath    string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompute craftables whenever the snapshot file changes",
		Long: `Watch a resource snapshot file and re-run the planner after every change.

Changes are coalesced: at most one pass runs per planner.compute_throttle
interval, and a change that touches no recipe re-emits the previous result.
When metrics are enabled the Prometheus endpoint is served while watching.

Examples:
  cookbook watch --catalog recipes.yaml --snapshot inventory.yaml
  cookbook watch --stored default --snapshot inventory.yaml --throttle 1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := src.validate(); err != nil {
				return err
			}
			if snapshot == "" {
				return fmt.Errorf("--snapshot is required")
			}

			if pidPath == "" {
				pidPath = defaultPIDPath(snapshot)
			}
			lock := pidfile.New(pidPath)
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer lock.Release()

			app, err := newApplication(appOptions{withDatabase: src.needsDatabase() || record})
			if err != nil {
				return err
			}
			defer app.close()

			ctx, stop := signal.NotifyContext(app.context(context.Background()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			catalog, err := loadCatalog(ctx, app, src)
			if err != nil {
				return err
			}
			app.activate(catalog, plannerOverrides{})

			if !cmd.Flags().Changed("throttle") {
				throttle = app.cfg.Planner.ComputeThrottle
			}

			if app.cfg.Metrics.Enabled {
				server, err := metrics.NewServer(app.cfg.Metrics.Host, app.cfg.Metrics.Port, app.cfg.Metrics.Path)
				if err != nil {
					return err
				}
				errc := server.Start()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					server.Shutdown(shutdownCtx)
				}()
				go func() {
					if err := <-errc; err != nil {
						app.logger.Log(common.LevelError, "Metrics server failed", map[string]interface{}{"error": err.Error()})
					}
				}()
			}

			formatter := NewTreeFormatter(catalog.Index(), useColors())
			app.planner.Subscribe(func(entries []*crafting.CraftableEntry) {
				fmt.Printf("\n=== %s ===\n", time.Now().Format(time.TimeOnly))
				fmt.Print(formatter.FormatEntries(entries, showChains))
			})

			name := ""
			if record {
				name = src.name()
			}

			w := &snapshotWatcher{
				path:     snapshot,
				index:    catalog.Index(),
				throttle: services.NewRecomputeThrottle(throttle),
				logger:   app.logger,
			}
			return w.run(ctx, func(ctx context.Context, req services.ComputeRequest) error {
				_, err := app.mediator.Send(ctx, &commands.ComputeCraftablesCommand{
					Snapshot:    req.Snapshot,
					Changed:     req.Changed,
					Force:       req.Force,
					CatalogName: name,
				})
				return err
			})
		},
	}

	cmd.Flags().StringVar(&src.file, "catalog", "", "Catalog YAML file")
	cmd.Flags().StringVar(&src.stored, "stored", "", "Name of a catalog stored in the database")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Resource snapshot YAML file to watch (required)")
	cmd.Flags().IntVar(&showChains, "show", 1, "Chains printed per result (0 prints all)")
	cmd.Flags().BoolVar(&record, "record", false, "Record full passes in history")
	cmd.Flags().DurationVar(&throttle, "throttle", 0, "Override planner.compute_throttle")
	cmd.Flags().StringVar(&pidPath, "pidfile", "", "PID file guarding against a second watcher (default: next to the snapshot)")

	return cmd
}

// defaultPIDPath places a hidden PID file beside the watched snapshot
func defaultPIDPath(snapshot string) string {
	return filepath.Join(filepath.Dir(snapshot), "."+filepath.Base(snapshot)+".watch.pid")
}

// snapshotWatcher turns file events into throttled compute requests
type snapshotWatcher struct {
	path     string
	index    *crafting.CommodityIndex
	throttle *services.RecomputeThrottle
	logger   common.ContainerLogger

	previous *crafting.Snapshot
}

func (w *snapshotWatcher) run(ctx context.Context, compute func(context.Context, services.ComputeRequest) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of writing it
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	return w.loop(ctx, watcher.Events, watcher.Errors, compute)
}

// loop serves file events until ctx ends or the watcher closes. The throttle
// goroutine has always returned by the time loop does.
func (w *snapshotWatcher) loop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	compute func(context.Context, services.ComputeRequest) error,
) error {
	ctx, cancel := context.WithCancel(ctx)
	throttleDone := make(chan error, 1)
	go func() {
		throttleDone <- w.throttle.Run(ctx, compute)
	}()
	defer func() {
		cancel()
		<-throttleDone
	}()

	// Initial pass
	w.reload(true)

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.reload(false)
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Log(common.LevelWarn, "File watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

// reload reads the snapshot and queues a request carrying the changed commodities
func (w *snapshotWatcher) reload(force bool) {
	snap, err := catalogfile.LoadSnapshotFile(w.path, w.index)
	if err != nil {
		// Half-written files are common while editing; the next event retries
		w.logger.Log(common.LevelWarn, "Snapshot not readable", map[string]interface{}{"error": err.Error()})
		return
	}

	req := services.ComputeRequest{Snapshot: snap, Force: force}
	if w.previous != nil && !force {
		req.Changed = crafting.ChangedCommodities(w.previous, snap)
		if len(req.Changed) == 0 {
			return
		}
	}
	w.previous = snap
	w.throttle.Notify(req)
}
