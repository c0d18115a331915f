package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/lastupdated/internal/cache"
	"git.home.luguber.info/inful/lastupdated/internal/config"
	"git.home.luguber.info/inful/lastupdated/internal/daemon"
	"git.home.luguber.info/inful/lastupdated/internal/foundation/errors"
	"git.home.luguber.info/inful/lastupdated/internal/git"
	"git.home.luguber.info/inful/lastupdated/internal/history"
	"git.home.luguber.info/inful/lastupdated/internal/metrics"
	"git.home.luguber.info/inful/lastupdated/internal/pipeline"
	"git.home.luguber.info/inful/lastupdated/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"lastupdated.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Resolve struct {
		Path string   `arg:"" help:"Repository-relative file path to resolve"`
		Deps []string `short:"d" help:"Dependency paths to combine into the result"`
	} `cmd:"" help:"Resolve the last-updated metadata of a single file"`

	Build struct {
		Inject string `help:"Rendered-site directory to stamp with modified-time meta tags"`
	} `cmd:"" help:"Resolve all pages and write the manifest"`

	Daemon struct {
	} `cmd:"" help:"Run continuously, refreshing on changes and on a schedule"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct {
	} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "resolve <path>":
		err = runResolve(CLI.Resolve.Path, CLI.Resolve.Deps)
	case "build":
		err = runBuild()
	case "daemon":
		err = runDaemon()
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "version":
		fmt.Printf("lastupdated %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}

	if err != nil {
		slog.Error("Command failed", slog.String("error", err.Error()))
		if errors.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runResolve(path string, deps []string) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	repo, err := git.Open(cfg.Repository.Dir)
	if err != nil {
		return err
	}

	excl, err := cfg.Resolver.Exclusions()
	if err != nil {
		return err
	}

	combiner := history.NewCombiner(repo)
	md, err := combiner.Combine(context.Background(), history.CombineRequest{
		Primary:                    path,
		Dependencies:               deps,
		Policy:                     cfg.Resolver.Policy(),
		Exclusions:                 excl,
		Aliases:                    cfg.Resolver.Aliases(),
		WantAuthors:                cfg.Resolver.ShowAllAuthors,
		CheckUntrackedDependencies: cfg.Resolver.CheckUntracked(),
	})
	if err != nil {
		return err
	}

	out := struct {
		Path          string   `json:"path"`
		Timestamp     *string  `json:"timestamp,omitempty"`
		PrimaryAuthor string   `json:"primary_author,omitempty"`
		Authors       []string `json:"authors,omitempty"`
		Warnings      []string `json:"warnings,omitempty"`
		WinningPath   string   `json:"winning_path,omitempty"`
	}{
		Path:          path,
		PrimaryAuthor: md.PrimaryAuthor,
		Authors:       md.Authors,
		Warnings:      md.Warnings.Strings(),
	}
	if md.Timestamp != nil {
		ts := md.Timestamp.UTC().Format(time.RFC3339)
		out.Timestamp = &ts
		if md.WinningPath != path {
			out.WinningPath = md.WinningPath
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	if CLI.Build.Inject != "" {
		cfg.Output.InjectDir = CLI.Build.Inject
	}

	repo, err := git.Open(cfg.Repository.Dir)
	if err != nil {
		return err
	}

	store, err := openCache(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	runner := pipeline.NewRunner(cfg, repo, store, nil)
	run, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	if err := pipeline.WriteManifest(run, cfg.Output, cfg.Resolver); err != nil {
		return err
	}
	if _, err := pipeline.InjectMetatags(run, cfg.Output, cfg.Docs.Dir); err != nil {
		return err
	}
	return nil
}

func runDaemon() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	repo, err := git.Open(cfg.Repository.Dir)
	if err != nil {
		return err
	}

	store, err := openCache(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)
	runner := pipeline.NewRunner(cfg, repo, store, recorder)

	d, err := daemon.New(cfg, repo, runner, registry)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}

func openCache(cfg *config.Config) (*cache.Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}
