// Package listing resolves paged recipe lists from the catalog and keeps the
// browse state in front of it.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"recipebrowser"
)

const (
	// DefaultFreshness is how long list and detail results are reused without a refetch.
	DefaultFreshness = 5 * time.Minute
	// DefaultFanOutLimit bounds concurrent per-category fetches of the full listing.
	DefaultFanOutLimit = 8
	// DefaultRetryAfter is how long a list degraded by catalog failures is shown
	// before it reads as stale. Resolve refetches it regardless.
	DefaultRetryAfter = 15 * time.Second

	categoriesKey = "categories"
)

// Option configures the controller.
type Option func(*Controller)

func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithFreshness(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.freshness = d
		}
	}
}

func WithRetryAfter(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.retryAfter = d
		}
	}
}

func WithFanOutLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.fanOutLimit = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithResolutionLogger records every Resolve call.
func WithResolutionLogger(l recipebrowser.ResolutionLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.resolutions = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithMeter(m metric.Meter) Option {
	return func(c *Controller) {
		if m != nil {
			c.meter = m
		}
	}
}

// WithClock replaces time.Now for cache freshness.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// ConfigOptions maps environment configuration onto controller options.
func ConfigOptions(cfg recipebrowser.ListConfig) []Option {
	return []Option{
		WithPageSize(cfg.PageSize),
		WithFreshness(cfg.Freshness),
		WithFanOutLimit(cfg.FanOutLimit),
		WithRetryAfter(cfg.RetryAfter),
	}
}

// Controller selects the data source for a query, caches catalog results and
// computes the page to display. It is safe for concurrent use.
type Controller struct {
	catalog     recipebrowser.Catalog
	pageSize    int
	freshness   time.Duration
	retryAfter  time.Duration
	fanOutLimit int
	logger      *slog.Logger
	resolutions recipebrowser.ResolutionLogger
	tracer      trace.Tracer
	meter       metric.Meter
	now         func() time.Time
	metrics     controllerMetrics

	categories *cache[[]string]
	lists      *cache[[]recipebrowser.Recipe]
	details    *cache[*recipebrowser.Recipe]
}

type controllerMetrics struct {
	resolves       metric.Int64Counter
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	fetchFailures  metric.Int64Counter
	pageResets     metric.Int64Counter
	resolveSeconds metric.Float64Histogram
	resultSize     metric.Int64Gauge
}

// NewController creates a controller over the given catalog.
func NewController(catalog recipebrowser.Catalog, opts ...Option) *Controller {
	c := &Controller{
		catalog:     catalog,
		pageSize:    DefaultPageSize,
		freshness:   DefaultFreshness,
		retryAfter:  DefaultRetryAfter,
		fanOutLimit: DefaultFanOutLimit,
		logger:      slog.Default(),
		resolutions: recipebrowser.NewNoOpResolutionLogger(),
		tracer:      tracenoop.NewTracerProvider().Tracer(recipebrowser.TracerNameListing),
		meter:       metricnoop.NewMeterProvider().Meter(recipebrowser.TracerNameListing),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.categories = newCache[[]string](c.now, c.retryAfter)
	c.lists = newCache[[]recipebrowser.Recipe](c.now, c.retryAfter)
	c.details = newCache[*recipebrowser.Recipe](c.now, c.retryAfter)

	c.metrics.resolves, _ = c.meter.Int64Counter("listing_resolves_total",
		metric.WithDescription("Total number of list resolutions"))
	c.metrics.cacheHits, _ = c.meter.Int64Counter("listing_cache_hits_total",
		metric.WithDescription("Resolutions served from a fresh cache entry"))
	c.metrics.cacheMisses, _ = c.meter.Int64Counter("listing_cache_misses_total",
		metric.WithDescription("Resolutions that fetched from the catalog"))
	c.metrics.fetchFailures, _ = c.meter.Int64Counter("catalog_fetch_failures_total",
		metric.WithDescription("Catalog calls degraded to an empty contribution"))
	c.metrics.pageResets, _ = c.meter.Int64Counter("listing_page_resets_total",
		metric.WithDescription("Resolutions whose requested page was out of range"))
	c.metrics.resolveSeconds, _ = c.meter.Float64Histogram("listing_resolve_duration_seconds",
		metric.WithDescription("Duration of list resolutions in seconds"))
	c.metrics.resultSize, _ = c.meter.Int64Gauge("listing_result_size",
		metric.WithDescription("Number of recipes in the latest resolved list"))

	return c
}

// PageSize returns the configured page size.
func (c *Controller) PageSize() int { return c.pageSize }

// Resolve fetches (or reuses) the data of the query's source and returns the
// requested page. Catalog failures degrade to empty contributions; the only
// errors returned come from ctx.
func (c *Controller) Resolve(ctx context.Context, q Query) (Result, error) {
	start := time.Now()
	source, key := q.Source()

	ctx, span := c.tracer.Start(ctx, "Controller.Resolve", trace.WithAttributes(
		attribute.String("listing.source", source.String()),
		attribute.String("listing.key", key),
		attribute.Int("listing.page", q.Page),
	))
	defer span.End()

	c.metrics.resolves.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source.String())))

	rec := &failureRecorder{}
	entry := recipebrowser.ResolutionLog{
		Timestamp: start,
		Source:    source.String(),
		Key:       key,
		Page:      q.Page,
	}

	fail := func(err error) (Result, error) {
		entry.Duration = time.Since(start)
		entry.Failures = rec.list()
		entry.Error = err.Error()
		c.logResolution(entry)
		span.SetStatus(codes.Error, "resolve failed")
		span.RecordError(err)
		return Result{}, err
	}

	// The category list gates every source, as the selector needs it.
	cats, catState, err := c.loadCategories(ctx, rec)
	if err != nil {
		return fail(err)
	}

	recipes, state, err := c.lists.load(ctx, listKey(source, key), func(ctx context.Context) ([]recipebrowser.Recipe, time.Duration, error) {
		recipes, degraded, err := c.fetchSource(ctx, source, key, cats, rec)
		if degraded || (source == SourceAll && catState == loadDegraded) {
			return recipes, ttlRetry, err
		}
		return recipes, c.freshness, err
	})
	if err != nil {
		return fail(err)
	}
	hit := state == loadHit

	if hit {
		c.metrics.cacheHits.Add(ctx, 1)
	} else {
		c.metrics.cacheMisses.Add(ctx, 1)
	}

	res := c.page(recipes, q.Page)
	res.Source = source
	if res.ResetPage {
		c.metrics.pageResets.Add(ctx, 1)
	}

	elapsed := time.Since(start)
	c.metrics.resolveSeconds.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("source", source.String())))
	c.metrics.resultSize.Record(ctx, int64(res.Total))

	span.SetAttributes(
		attribute.Int("listing.total", res.Total),
		attribute.Int("listing.total_pages", res.TotalPages),
		attribute.Bool("listing.cache_hit", hit),
		attribute.Bool("listing.reset_page", res.ResetPage),
	)

	c.logger.Info("LISTING: Resolved",
		"source", source.String(),
		"key", key,
		"page", res.Page,
		"total", res.Total,
		"total_pages", res.TotalPages,
		"cache_hit", hit,
		"reset_page", res.ResetPage,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	entry.Page = res.Page
	entry.Total = res.Total
	entry.TotalPages = res.TotalPages
	entry.ResetPage = res.ResetPage
	entry.CacheHit = hit
	entry.Duration = elapsed
	entry.Failures = rec.list()
	c.logResolution(entry)

	return res, nil
}

// Snapshot computes the query's result from cached data only. It never blocks
// and never shows another source's data: when the categories or the active
// source have not resolved yet, the result is loading.
func (c *Controller) Snapshot(q Query) Result {
	source, key := q.Source()
	loading := Result{Page: q.Page, Source: source, IsLoading: true}

	if _, _, ok := c.categories.peek(categoriesKey); !ok {
		return loading
	}
	recipes, fresh, ok := c.lists.peek(listKey(source, key))
	if !ok {
		return loading
	}

	res := c.page(recipes, q.Page)
	res.Source = source
	res.Stale = !fresh
	return res
}

// Categories returns the catalog's category names. A successful list is kept for
// the lifetime of the controller.
func (c *Controller) Categories(ctx context.Context) ([]string, error) {
	cats, _, err := c.loadCategories(ctx, nil)
	return slices.Clone(cats), err
}

// Detail is the read model of a single recipe. NotFound is set when the catalog
// has no recipe with the requested id.
type Detail struct {
	Recipe   *recipebrowser.Recipe `json:"recipe,omitempty"`
	NotFound bool                  `json:"not_found"`
}

// Detail looks a recipe up by id. Unlike list sources, transport failures are
// returned since there is nothing to degrade to.
func (c *Controller) Detail(ctx context.Context, id string) (Detail, error) {
	ctx, span := c.tracer.Start(ctx, "Controller.Detail", trace.WithAttributes(
		attribute.String("recipe.id", id),
	))
	defer span.End()

	r, _, err := c.details.load(ctx, id, func(ctx context.Context) (*recipebrowser.Recipe, time.Duration, error) {
		r, err := c.catalog.LookupByID(ctx, id)
		if errors.Is(err, recipebrowser.ErrNotFound) {
			return nil, c.freshness, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return r, c.freshness, nil
	})
	if err != nil {
		span.SetStatus(codes.Error, "lookup failed")
		span.RecordError(err)
		return Detail{}, fmt.Errorf("lookup recipe %s: %w", id, err)
	}
	if r == nil {
		c.logger.Info("LISTING: Recipe not found", "id", id)
		return Detail{NotFound: true}, nil
	}

	cp := *r
	return Detail{Recipe: &cp}, nil
}

func (c *Controller) page(recipes []recipebrowser.Recipe, page int) Result {
	items, totalPages, ok := Paginate(recipes, page, c.pageSize)
	res := Result{
		Page:       page,
		TotalPages: totalPages,
		Total:      len(recipes),
	}
	if !ok {
		items, _, _ = Paginate(recipes, 1, c.pageSize)
		res.Page = 1
		res.ResetPage = true
	}
	res.Items = slices.Clone(items)
	if res.Items == nil {
		res.Items = []recipebrowser.Recipe{}
	}
	return res
}

func (c *Controller) loadCategories(ctx context.Context, rec *failureRecorder) ([]string, loadState, error) {
	return c.categories.load(ctx, categoriesKey, func(ctx context.Context) ([]string, time.Duration, error) {
		cats, err := c.catalog.ListCategories(ctx)
		if err != nil {
			c.recordFailure(ctx, rec, "categories", "", err)
			return []string{}, ttlRetry, nil
		}
		return cats, ttlForever, nil
	})
}

// fetchSource reports degraded when a catalog failure was replaced by an
// empty contribution.
func (c *Controller) fetchSource(ctx context.Context, source Source, key string, categories []string, rec *failureRecorder) ([]recipebrowser.Recipe, bool, error) {
	switch source {
	case SourceSearch:
		recipes, err := c.catalog.SearchByName(ctx, key)
		if err != nil {
			c.recordFailure(ctx, rec, "search", key, err)
			return []recipebrowser.Recipe{}, true, nil
		}
		return recipes, false, nil
	case SourceCategory:
		// Already inside the load of this category's entry.
		recipes, ttl, err := c.categoryFetch(key, rec)(ctx)
		return recipes, ttl == ttlRetry, err
	default:
		return c.allRecipes(ctx, categories, rec)
	}
}

// categoryRecipes goes through the list cache so the full listing and the
// category source share per-category entries.
func (c *Controller) categoryRecipes(ctx context.Context, category string, rec *failureRecorder) ([]recipebrowser.Recipe, bool, error) {
	recipes, state, err := c.lists.load(ctx, listKey(SourceCategory, category), c.categoryFetch(category, rec))
	return recipes, state == loadDegraded, err
}

func (c *Controller) categoryFetch(category string, rec *failureRecorder) func(context.Context) ([]recipebrowser.Recipe, time.Duration, error) {
	return func(ctx context.Context) ([]recipebrowser.Recipe, time.Duration, error) {
		recipes, err := c.catalog.FilterByCategory(ctx, category)
		if err != nil {
			c.recordFailure(ctx, rec, "filter", category, err)
			return []recipebrowser.Recipe{}, ttlRetry, nil
		}
		return recipes, c.freshness, nil
	}
}

// allRecipes fans out one fetch per category and concatenates the results in
// category order, keeping the first occurrence of each recipe id. A failed
// category contributes nothing and does not stop the others, but marks the
// merged list degraded.
func (c *Controller) allRecipes(ctx context.Context, categories []string, rec *failureRecorder) ([]recipebrowser.Recipe, bool, error) {
	ctx, span := c.tracer.Start(ctx, "Controller.fanOut", trace.WithAttributes(
		attribute.Int("listing.categories", len(categories)),
	))
	defer span.End()

	results := make([][]recipebrowser.Recipe, len(categories))
	var degraded atomic.Bool

	var g errgroup.Group
	g.SetLimit(c.fanOutLimit)
	for i, category := range categories {
		g.Go(func() error {
			recipes, failed, err := c.categoryRecipes(ctx, category, rec)
			if err != nil {
				return err
			}
			if failed {
				degraded.Store(true)
			}
			results[i] = recipes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, "fan-out interrupted")
		span.RecordError(err)
		return nil, false, err
	}

	seen := make(map[string]bool)
	all := make([]recipebrowser.Recipe, 0)
	for _, recipes := range results {
		for _, r := range recipes {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			all = append(all, r)
		}
	}

	span.AddEvent("Fan-out complete", trace.WithAttributes(
		attribute.Int("listing.recipes", len(all)),
		attribute.Int("listing.failures", rec.len()),
		attribute.Bool("listing.degraded", degraded.Load()),
	))
	return all, degraded.Load(), nil
}

func (c *Controller) recordFailure(ctx context.Context, rec *failureRecorder, op, key string, err error) {
	c.logger.Warn("LISTING: Catalog fetch failed, degrading to empty",
		"op", op,
		"key", key,
		"error", err,
	)
	c.metrics.fetchFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	rec.add(recipebrowser.FetchFailure{Op: op, Key: key, Error: err.Error()})
}

func (c *Controller) logResolution(entry recipebrowser.ResolutionLog) {
	if err := c.resolutions.LogResolution(entry); err != nil {
		c.logger.Error("Failed to log resolution", "error", err, "source", entry.Source, "key", entry.Key)
	}
}

// failureRecorder collects degraded fetches of one resolution. A nil recorder drops them.
type failureRecorder struct {
	mu       sync.Mutex
	failures []recipebrowser.FetchFailure
}

func (r *failureRecorder) add(f recipebrowser.FetchFailure) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
}

func (r *failureRecorder) list() []recipebrowser.FetchFailure {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.failures)
}

func (r *failureRecorder) len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}
