// Package pipeline orchestrates a full resolution run: page discovery,
// concurrent per-page history resolution, caching, metrics, and manifest
// output.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/lastupdated/internal/cache"
	"git.home.luguber.info/inful/lastupdated/internal/config"
	"git.home.luguber.info/inful/lastupdated/internal/docs"
	"git.home.luguber.info/inful/lastupdated/internal/git"
	"git.home.luguber.info/inful/lastupdated/internal/history"
	"git.home.luguber.info/inful/lastupdated/internal/logfields"
	"git.home.luguber.info/inful/lastupdated/internal/metrics"
)

// PageResult is the resolution outcome for one page.
type PageResult struct {
	Page docs.Page
	Meta history.CombinedMetadata
	// Outcome classifies the result for metrics and reporting.
	Outcome metrics.OutcomeLabel
	// ShowSourcelink reports whether a source link should be rendered for
	// the page. Untracked pages hide it unless configured otherwise.
	ShowSourcelink bool
	FromCache      bool
}

// RunResult is one complete resolution run over the documentation tree.
type RunResult struct {
	RunID    string
	Head     string
	Pages    []PageResult
	Duration time.Duration
}

// Runner executes resolution runs.
type Runner struct {
	cfg      *config.Config
	repo     *git.Repository
	combiner *history.Combiner
	store    *cache.Store
	rec      metrics.Recorder
}

// NewRunner creates a runner. store may be nil to disable caching; rec may be
// nil to disable metrics.
func NewRunner(cfg *config.Config, repo *git.Repository, store *cache.Store, rec metrics.Recorder) *Runner {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Runner{
		cfg:      cfg,
		repo:     repo,
		combiner: history.NewCombiner(repo),
		store:    store,
		rec:      rec,
	}
}

// Run discovers all pages and resolves each one. Results are ordered by page
// path regardless of worker scheduling.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	runID := uuid.New().String()
	log := slog.With(logfields.RunID(runID))

	head, err := r.repo.Head()
	if err != nil {
		return nil, err
	}

	discovery := docs.NewDiscovery(r.repo.Dir(), r.cfg.Docs.Dir, r.cfg.Docs.Extensions)
	pages, err := discovery.DiscoverPages()
	if err != nil {
		return nil, err
	}
	log.Info("Starting resolution run",
		logfields.Count(len(pages)),
		logfields.Commit(head))

	excl, err := r.cfg.Resolver.Exclusions()
	if err != nil {
		return nil, err
	}
	fingerprint := cache.Fingerprint(r.cfg.Resolver)

	results := make([]PageResult, len(pages))
	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(pages) {
		workers = len(pages)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, resErr := r.resolvePage(ctx, pages[i], head, fingerprint, excl)
				if resErr != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = resErr
					}
					mu.Unlock()
					continue
				}
				results[i] = res
			}
		}()
	}

	for i := range pages {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	run := &RunResult{
		RunID:    runID,
		Head:     head,
		Pages:    results,
		Duration: time.Since(start),
	}
	r.record(run, log)
	return run, nil
}

func (r *Runner) resolvePage(ctx context.Context, page docs.Page, head, fingerprint string, excl *history.ExclusionSet) (PageResult, error) {
	res := PageResult{Page: page}
	resolveStart := time.Now()

	var meta *history.CombinedMetadata
	if r.store != nil && head != "" {
		cached, err := r.store.Get(ctx, page.Path, head, fingerprint)
		switch {
		case err == nil:
			meta = cached
			res.FromCache = true
			r.rec.IncCacheHit()
		case errors.Is(err, cache.ErrMiss):
			r.rec.IncCacheMiss()
		default:
			slog.Warn("Cache lookup failed", logfields.Path(page.Path), logfields.Error(err))
		}
	}

	if meta == nil {
		combined, err := r.combiner.Combine(ctx, history.CombineRequest{
			Primary:                    page.Path,
			Dependencies:               page.Dependencies,
			Policy:                     r.cfg.Resolver.Policy(),
			Exclusions:                 excl,
			Aliases:                    r.cfg.Resolver.Aliases(),
			WantAuthors:                r.cfg.Resolver.ShowAllAuthors,
			CheckUntrackedDependencies: r.cfg.Resolver.CheckUntracked(),
		})
		if err != nil {
			return res, err
		}
		meta = &combined
		if r.store != nil && head != "" {
			if putErr := r.store.Put(ctx, page.Path, head, fingerprint, meta); putErr != nil {
				slog.Warn("Cache write failed", logfields.Path(page.Path), logfields.Error(putErr))
			}
		}
	}
	res.Meta = *meta

	tracked, err := r.repo.BlobExists(page.Path)
	if err != nil {
		return res, err
	}
	res.ShowSourcelink = tracked || r.cfg.Resolver.UntrackedShowSourcelink
	res.Outcome = classify(res.Meta, tracked)

	r.rec.ObserveResolveDuration(time.Since(resolveStart))
	r.rec.IncResolution(res.Outcome)
	return res, nil
}

func classify(meta history.CombinedMetadata, tracked bool) metrics.OutcomeLabel {
	switch {
	case meta.Timestamp != nil:
		return metrics.OutcomeResolved
	case meta.Warnings.Has(history.WarningShallowTruncated):
		return metrics.OutcomeShallow
	case !tracked:
		return metrics.OutcomeUntracked
	default:
		return metrics.OutcomeExcluded
	}
}

// record logs per-page warnings, honoring suppress_warnings, and publishes
// run-level metrics.
func (r *Runner) record(run *RunResult, log *slog.Logger) {
	for _, res := range run.Pages {
		for _, kind := range res.Meta.Warnings.Strings() {
			r.rec.IncWarning(kind)
			if r.cfg.Resolver.Suppressed(history.WarningKind(kind)) {
				continue
			}
			log.Warn("Resolution warning",
				logfields.Path(res.Page.Path),
				logfields.Warning(kind))
		}
	}
	r.rec.ObserveRunDuration(run.Duration)
	r.rec.SetPages(len(run.Pages))
	log.Info("Resolution run complete",
		logfields.Count(len(run.Pages)),
		logfields.DurationMS(float64(run.Duration.Milliseconds())))
}
