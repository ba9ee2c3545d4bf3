package api

import (
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicwire/statehouse-news/internal/aggregator"
	"github.com/civicwire/statehouse-news/internal/domain"
	"github.com/civicwire/statehouse-news/internal/logger"
	"github.com/civicwire/statehouse-news/internal/ratelimit"
)

// Handler exposes the aggregation pipeline over HTTP.
type Handler struct {
	agg     *aggregator.Aggregator
	appName string
	log     logger.Logger
}

// NewHandler builds a Handler around the aggregator.
func NewHandler(agg *aggregator.Aggregator, appName string, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{agg: agg, appName: appName, log: log}
}

// AppName reports the configured service name.
func (h *Handler) AppName() string { return h.appName }

// GetNews serves the merged, annotated, cached feed page.
func (h *Handler) GetNews(c *gin.Context) {
	params := aggregator.RawParams{
		Search:   c.Query("search"),
		Region:   c.Query("state"),
		Topic:    c.Query("topic"),
		Page:     c.Query("page"),
		PageSize: c.Query("pageSize"),
	}

	res, err := h.agg.Feed(c.Request.Context(), clientKey(c), params)
	if err != nil {
		h.renderError(c, err)
		return
	}

	setRateHeaders(c, res.RateInfo)
	if res.FromCache {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, res.Response)
}

// GetArticle serves one locally stored article.
func (h *Handler) GetArticle(c *gin.Context) {
	id := c.Param("id")

	article, found, err := h.agg.LocalArticle(id)
	if err != nil {
		h.log.ErrorObj("article lookup failed", "api_error", map[string]any{
			"id":    id,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

// CreateArticle inserts an article into the local store.
func (h *Handler) CreateArticle(c *gin.Context) {
	var article domain.LocalArticle
	if err := c.ShouldBindJSON(&article); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.agg.CreateArticle(c.Request.Context(), article)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// FlushCache unconditionally clears the response cache.
func (h *Handler) FlushCache(c *gin.Context) {
	if err := h.agg.FlushCache(c.Request.Context()); err != nil {
		h.log.ErrorObj("cache flush failed", "api_error", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}

// GetHealth reports liveness and basic component info.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"service":    h.appName,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"rate_limit": h.agg.RateLimit(),
	})
}

// renderError maps the aggregator error taxonomy to HTTP statuses. Anything
// unrecognized is internal; detail goes to the log, not the client.
func (h *Handler) renderError(c *gin.Context, err error) {
	var verr *aggregator.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}

	var rerr *aggregator.RateLimitError
	if errors.As(err, &rerr) {
		setRateHeaders(c, rerr.Result)
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(rerr.Result.ResetAt)))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}

	var uerr *aggregator.UpstreamError
	if errors.As(err, &uerr) {
		h.log.ErrorObj("upstream fetch failed", "api_error", map[string]any{
			"source": uerr.Source,
			"error":  uerr.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch news"})
		return
	}

	h.log.ErrorObj("request failed", "api_error", map[string]any{"error": err.Error()})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func setRateHeaders(c *gin.Context, r ratelimit.Result) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(r.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(r.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(r.ResetAt.Unix(), 10))
}

func retryAfterSeconds(resetAt time.Time) int {
	secs := int(math.Ceil(time.Until(resetAt).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// clientKey derives the rate-limit bucket for a request: first hop of
// X-Forwarded-For, else the connection's remote address, else a shared
// fallback bucket.
func clientKey(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(c.Request.RemoteAddr); addr != "" {
		return addr
	}
	return "unknown"
}
