// Package aggregator orchestrates a feed request: sanitation, rate limiting,
// cache lookup, concurrent dual-source fetch, merge, annotation and cache
// store. It owns the error taxonomy; only the transport layer maps errors to
// HTTP statuses.
package aggregator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/civicwire/statehouse-news/internal/annotate"
	"github.com/civicwire/statehouse-news/internal/cache"
	"github.com/civicwire/statehouse-news/internal/classify"
	"github.com/civicwire/statehouse-news/internal/domain"
	"github.com/civicwire/statehouse-news/internal/logger"
	"github.com/civicwire/statehouse-news/internal/ratelimit"
	"github.com/civicwire/statehouse-news/internal/sanitize"
	"github.com/civicwire/statehouse-news/internal/storage"
	"github.com/civicwire/statehouse-news/pkg/newsapi"
	"github.com/civicwire/statehouse-news/pkg/notify"
)

const (
	// localSourceID marks merged articles that came from the local store.
	localSourceID   = "local"
	localSourceName = "Statehouse News"

	defaultFetchTimeout = 20 * time.Second
)

// SearchClient is the external search source.
type SearchClient interface {
	Search(ctx context.Context, f domain.QueryFilters) (*newsapi.SearchResult, error)
}

// Options wires the aggregator's collaborators.
type Options struct {
	Cache        cache.Cache
	Limiter      *ratelimit.Limiter
	Store        storage.Store
	Search       SearchClient
	Notifier     *notify.Fanout
	Log          logger.Logger
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	// DefaultPageSize applies when the request omits pageSize. Zero means
	// sanitize.DefaultPageSize.
	DefaultPageSize int
}

// Aggregator builds merged, annotated, cached news pages.
type Aggregator struct {
	cache        cache.Cache
	limiter      *ratelimit.Limiter
	store        storage.Store
	search       SearchClient
	notifier     *notify.Fanout
	log          logger.Logger
	cacheTTL     time.Duration
	fetchTimeout time.Duration
	pageSize     int
}

// New constructs an Aggregator. Missing collaborators degrade gracefully:
// a nil store behaves as empty, a nil notifier skips event delivery.
func New(opts Options) *Aggregator {
	a := &Aggregator{
		cache:        opts.Cache,
		limiter:      opts.Limiter,
		store:        opts.Store,
		search:       opts.Search,
		notifier:     opts.Notifier,
		log:          opts.Log,
		cacheTTL:     opts.CacheTTL,
		fetchTimeout: opts.FetchTimeout,
		pageSize:     opts.DefaultPageSize,
	}
	if a.limiter == nil {
		a.limiter = ratelimit.New(0, 0)
	}
	if a.log == nil {
		a.log = logger.NopLogger{}
	}
	if a.cacheTTL <= 0 {
		a.cacheTTL = cache.DefaultTTL
	}
	if a.fetchTimeout <= 0 {
		a.fetchTimeout = defaultFetchTimeout
	}
	if a.pageSize <= 0 {
		a.pageSize = sanitize.DefaultPageSize
	}
	return a
}

// RawParams carries unsanitized query parameters from the transport layer.
type RawParams struct {
	Search   string
	Region   string
	Topic    string
	Page     string
	PageSize string
}

// Sanitize validates raw parameters into normalized filters. The topic must
// additionally be a known category.
func Sanitize(p RawParams) (domain.QueryFilters, error) {
	return sanitizeParams(p, sanitize.DefaultPageSize)
}

func sanitizeParams(p RawParams, defaultPageSize int) (domain.QueryFilters, error) {
	var f domain.QueryFilters
	var ok bool

	if f.Search, ok = sanitize.SearchQuery(p.Search); !ok {
		return domain.QueryFilters{}, &ValidationError{Field: "search"}
	}
	if f.Region, ok = sanitize.Region(p.Region); !ok {
		return domain.QueryFilters{}, &ValidationError{Field: "state"}
	}
	if f.Topic, ok = sanitize.Topic(p.Topic); !ok {
		return domain.QueryFilters{}, &ValidationError{Field: "topic"}
	}
	if f.Topic != "" {
		if _, ok := classify.Parse(f.Topic); !ok {
			return domain.QueryFilters{}, &ValidationError{Field: "topic"}
		}
	}
	f.Page = sanitize.Page(p.Page)
	f.PageSize = sanitize.PageSizeWith(p.PageSize, defaultPageSize)
	return f, nil
}

// FeedResult is a completed feed request.
type FeedResult struct {
	Response  *domain.NewsResponse
	FromCache bool
	RateInfo  ratelimit.Result
}

// Feed runs the full request pipeline for one client.
func (a *Aggregator) Feed(ctx context.Context, clientKey string, p RawParams) (*FeedResult, error) {
	filters, err := sanitizeParams(p, a.pageSize)
	if err != nil {
		return nil, err
	}

	rate := a.limiter.Check(clientKey)
	if !rate.Allowed {
		return nil, &RateLimitError{Result: rate}
	}

	key := cache.Key(filters)
	if a.cache != nil {
		cached, hit, err := a.cache.Get(ctx, key)
		if err != nil {
			a.log.WarnObj("cache read failed, treating as miss", "cache_error", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		} else if hit {
			return &FeedResult{Response: cached, FromCache: true, RateInfo: rate}, nil
		}
	}

	external, local, err := a.fetchBoth(ctx, filters)
	if err != nil {
		return nil, err
	}

	merged := make([]domain.Article, 0, len(local)+len(external.Articles))
	for _, la := range local {
		merged = append(merged, localToArticle(la))
	}
	merged = append(merged, external.Articles...)

	resp := &domain.NewsResponse{
		Status:       "ok",
		TotalResults: external.TotalResults + len(local),
		Articles:     annotate.Process(merged, filters.Topic),
	}

	if a.cache != nil && ctx.Err() == nil {
		if err := a.cache.Set(ctx, key, resp, a.cacheTTL); err != nil {
			a.log.WarnObj("cache write failed", "cache_error", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	return &FeedResult{Response: resp, FromCache: false, RateInfo: rate}, nil
}

// fetchBoth queries the external search API and the local store
// concurrently. Either failure fails the request; no partial results.
func (a *Aggregator) fetchBoth(ctx context.Context, filters domain.QueryFilters) (*newsapi.SearchResult, []domain.LocalArticle, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	var external *newsapi.SearchResult
	var local []domain.LocalArticle

	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		if a.search == nil {
			external = &newsapi.SearchResult{Status: "ok"}
			return nil
		}
		res, err := a.search.Search(gctx, filters)
		if err != nil {
			return &UpstreamError{Source: "newsapi", Err: err}
		}
		external = res
		return nil
	})
	g.Go(func() error {
		if a.store == nil {
			return nil
		}
		articles, err := a.store.QueryArticles(storage.Query{
			Region:      filters.Region,
			Category:    filters.Topic,
			TitlePrefix: filters.Search,
		})
		if err != nil {
			return &UpstreamError{Source: "store", Err: err}
		}
		local = articles
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return external, local, nil
}

// localToArticle maps a stored article into the common merged shape. The URL
// is rewritten to the service's own article-detail path.
func localToArticle(la domain.LocalArticle) domain.Article {
	return domain.Article{
		Source:      domain.Source{ID: localSourceID, Name: localSourceName},
		Author:      la.Author,
		Title:       la.Title,
		Description: la.Description,
		URL:         "/articles/" + la.ID,
		ImageURL:    la.ImageURL,
		PublishedAt: la.CreatedAt,
		Content:     la.Content,
	}
}

// LocalArticle returns one article from the local store.
func (a *Aggregator) LocalArticle(id string) (*domain.LocalArticle, bool, error) {
	if a.store == nil {
		return nil, false, nil
	}
	return a.store.GetArticle(id)
}

// CreateArticle validates and stores a local article, then announces it to
// the configured sinks. Sink failures are logged, never returned.
func (a *Aggregator) CreateArticle(ctx context.Context, article domain.LocalArticle) (*domain.LocalArticle, error) {
	if a.store == nil {
		return nil, &ValidationError{Field: "article"}
	}
	if article.Title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	if article.Category != "" {
		parsed, ok := classify.Parse(article.Category)
		if !ok {
			return nil, &ValidationError{Field: "category"}
		}
		article.Category = parsed
	}
	if region, ok := sanitize.Region(article.Region); ok {
		article.Region = region
	} else {
		return nil, &ValidationError{Field: "region"}
	}

	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now().UTC()
	}
	if article.ID == "" {
		article.ID = storage.NewArticleID(article.Title, article.CreatedAt)
	}

	if err := a.store.InsertArticle(article); err != nil {
		return nil, err
	}

	a.deliver(ctx, notify.NewArticleCreatedEvent(article))
	return &article, nil
}

// FlushCache clears the response cache and announces the flush.
func (a *Aggregator) FlushCache(ctx context.Context) error {
	if a.cache == nil {
		return nil
	}
	if err := a.cache.Clear(ctx); err != nil {
		return err
	}
	a.deliver(ctx, notify.NewCacheFlushedEvent(""))
	return nil
}

// RateLimit exposes the configured per-window limit.
func (a *Aggregator) RateLimit() int { return a.limiter.Limit() }

func (a *Aggregator) deliver(ctx context.Context, evt notify.Event) {
	if a.notifier == nil || a.notifier.Size() == 0 {
		return
	}
	count, err := a.notifier.Deliver(ctx, evt)
	if err != nil {
		a.log.WarnObj("event delivery partially failed", "notify_error", map[string]any{
			"kind":      evt.Kind,
			"delivered": count,
			"error":     err.Error(),
		})
		return
	}
	a.log.DebugObj("event delivered", "notify_delivery", map[string]any{
		"kind":      evt.Kind,
		"delivered": count,
	})
}
