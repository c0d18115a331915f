// Package daemon runs continuous resolution: a filesystem watcher and a
// periodic schedule both trigger runs, results are published as events, and
// metrics are served over HTTP.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/lastupdated/internal/config"
	"git.home.luguber.info/inful/lastupdated/internal/git"
	"git.home.luguber.info/inful/lastupdated/internal/logfields"
	"git.home.luguber.info/inful/lastupdated/internal/notify"
	"git.home.luguber.info/inful/lastupdated/internal/pipeline"
)

// Daemon ties together the runner, watcher, scheduler, and event publisher.
type Daemon struct {
	cfg       *config.Config
	runner    *pipeline.Runner
	watcher   *DocsWatcher
	scheduler gocron.Scheduler
	publisher *notify.Publisher
	server    *MetricsServer
	registry  *prom.Registry

	// lastSeen maps page path to the RFC 3339 timestamp of the previous
	// run, for change detection before publishing.
	lastSeen map[string]string
	triggers chan struct{}
}

// New assembles a daemon from configuration. The runner must be constructed
// by the caller so CLI and daemon share recorder wiring.
func New(cfg *config.Config, repo *git.Repository, runner *pipeline.Runner, registry *prom.Registry) (*Daemon, error) {
	watcher, err := NewDocsWatcher(
		filepath.Join(repo.Dir(), cfg.Docs.Dir),
		cfg.Daemon.Debounce.Std(),
	)
	if err != nil {
		return nil, err
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	d := &Daemon{
		cfg:       cfg,
		runner:    runner,
		watcher:   watcher,
		scheduler: scheduler,
		registry:  registry,
		lastSeen:  make(map[string]string),
		triggers:  make(chan struct{}, 1),
	}

	if cfg.Notify.Enabled {
		publisher, pubErr := notify.NewPublisher(cfg.Notify.URL, cfg.Notify.Subject)
		if pubErr != nil {
			return nil, pubErr
		}
		d.publisher = publisher
	}

	d.server = NewMetricsServer(cfg.Daemon.Listen, registry)
	return d, nil
}

// Run blocks until the context is cancelled, resolving once at startup and
// again on every watcher trigger or schedule tick.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.watcher.Start(ctx); err != nil {
		return err
	}
	defer d.watcher.Stop()

	if _, err := d.scheduler.NewJob(
		gocron.DurationJob(d.cfg.Daemon.RefreshInterval.Std()),
		gocron.NewTask(d.requestRefresh),
		gocron.WithName("periodic-refresh"),
	); err != nil {
		return fmt.Errorf("failed to create periodic refresh job: %w", err)
	}
	d.scheduler.Start()
	defer func() {
		if err := d.scheduler.Shutdown(); err != nil {
			slog.Error("Scheduler shutdown failed", logfields.Error(err))
		}
	}()

	d.server.Start()
	defer d.server.Stop()

	if d.publisher != nil {
		defer d.publisher.Close()
	}

	// Initial run so the manifest exists before the first change.
	d.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Daemon shutting down")
			return nil
		case <-d.watcher.Triggers():
			d.refresh(ctx)
		case <-d.triggers:
			d.refresh(ctx)
		}
	}
}

// requestRefresh is called by gocron on each schedule tick.
func (d *Daemon) requestRefresh() {
	select {
	case d.triggers <- struct{}{}:
	default:
		// A refresh is already pending.
	}
}

// refresh runs one resolution pass, writes the manifest, and publishes
// change events for pages whose timestamp moved.
func (d *Daemon) refresh(ctx context.Context) {
	run, err := d.runner.Run(ctx)
	if err != nil {
		slog.Error("Resolution run failed", logfields.Error(err))
		return
	}

	if err := pipeline.WriteManifest(run, d.cfg.Output, d.cfg.Resolver); err != nil {
		slog.Error("Manifest write failed", logfields.Error(err))
	}
	if _, err := pipeline.InjectMetatags(run, d.cfg.Output, d.cfg.Docs.Dir); err != nil {
		slog.Error("Meta-tag injection failed", logfields.Error(err))
	}

	d.publishChanges(ctx, run)
}

func (d *Daemon) publishChanges(ctx context.Context, run *pipeline.RunResult) {
	for _, res := range run.Pages {
		if res.Meta.Timestamp == nil {
			continue
		}
		ts := res.Meta.Timestamp.UTC().Format(time.RFC3339)
		if d.lastSeen[res.Page.Path] == ts {
			continue
		}
		d.lastSeen[res.Page.Path] = ts

		if d.publisher == nil {
			continue
		}
		event := &notify.PageUpdatedEvent{
			Path:          res.Page.Path,
			Timestamp:     *res.Meta.Timestamp,
			PrimaryAuthor: res.Meta.PrimaryAuthor,
			Authors:       res.Meta.Authors,
			RunID:         run.RunID,
		}
		if err := d.publisher.PublishPageUpdated(ctx, event); err != nil {
			slog.Error("Failed to publish page update",
				logfields.Path(res.Page.Path),
				logfields.Error(err))
		}
	}
}
