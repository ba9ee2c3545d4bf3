// Package app wires configuration into a running HTTP service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/civicwire/statehouse-news/internal/aggregator"
	"github.com/civicwire/statehouse-news/internal/api"
	"github.com/civicwire/statehouse-news/internal/cache"
	"github.com/civicwire/statehouse-news/internal/config"
	"github.com/civicwire/statehouse-news/internal/logger"
	"github.com/civicwire/statehouse-news/internal/ratelimit"
	"github.com/civicwire/statehouse-news/internal/storage"
	"github.com/civicwire/statehouse-news/pkg/httpclient"
	"github.com/civicwire/statehouse-news/pkg/newsapi"
	"github.com/civicwire/statehouse-news/pkg/notify"
)

const shutdownGrace = 10 * time.Second

// Server is the aggregation service runtime. It owns the component
// lifecycles: store, cache, sink fanout, aggregator and the HTTP engine.
type Server struct {
	cfg   *config.Config
	log   logger.Logger
	store storage.Store
	cache cache.Cache
	http  *http.Server
}

// NewServer builds the service runtime from config.
func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	responseCache, err := cache.NewCache(cfg.CacheType, cache.Options{
		RedisAddr:  cfg.RedisAddr,
		DefaultTTL: cfg.CacheTTL,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}
	log.InfoObj("cache initialized", "cache_config", map[string]any{
		"type":        cfg.CacheType,
		"ttl_seconds": int(cfg.CacheTTL.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		store.Close()
		responseCache.Close()
		return nil, err
	}

	searchClient := newsapi.New(
		cfg.NewsAPIBaseURL,
		cfg.NewsAPIKey,
		httpclient.NewRestyClient(cfg.NewsAPITimeout),
	)

	agg := aggregator.New(aggregator.Options{
		Cache:           responseCache,
		Limiter:         ratelimit.New(cfg.RateLimit, cfg.RateWindow),
		Store:           store,
		Search:          searchClient,
		Notifier:        fanout,
		Log:             log,
		CacheTTL:        cfg.CacheTTL,
		FetchTimeout:    cfg.FetchTimeout,
		DefaultPageSize: cfg.DefaultPageSize,
	})

	engine := api.NewServer(api.NewHandler(agg, cfg.AppName, log), cfg.APIAccessKey)

	return &Server{
		cfg:   cfg,
		log:   log,
		store: store,
		cache: responseCache,
		http: &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: engine,
		},
	}, nil
}

// buildFanout loads the sink registry when one is configured. No sinks file
// means no event delivery, which is a valid deployment.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*notify.Fanout, error) {
	if cfg.SinksFile == "" {
		return nil, nil
	}

	reg, err := notify.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}

	enabled := reg.Enabled()
	sinks, err := notify.BuildAll(ctx, notify.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, sinkCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   sinkCfg.ID,
			"type": sinkCfg.Type,
		})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})

	return notify.NewFanout(sinks), nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully and releases the store and cache.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.http == nil {
		return fmt.Errorf("server is not initialized")
	}
	defer s.close()

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.InfoObj("shutting down", "grace_seconds", int(shutdownGrace.Seconds()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}

func (s *Server) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.WarnObj("close storage failed", "error", err.Error())
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.log.WarnObj("close cache failed", "error", err.Error())
		}
	}
}
