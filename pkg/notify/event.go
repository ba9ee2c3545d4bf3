package notify

import (
	"time"

	"github.com/civicwire/statehouse-news/internal/domain"
)

// Event kinds emitted by the service.
const (
	KindCacheFlushed   = "cache_flushed"
	KindArticleCreated = "article_created"
)

// Event represents the payload delivered to downstream sinks.
type Event struct {
	Kind       string               `json:"kind"`
	Key        string               `json:"key,omitempty"`
	Article    *domain.LocalArticle `json:"article,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// NewCacheFlushedEvent constructs an Event announcing a cache flush.
// The key is empty when the whole cache was cleared.
func NewCacheFlushedEvent(key string) Event {
	return Event{
		Kind:       KindCacheFlushed,
		Key:        key,
		OccurredAt: time.Now().UTC(),
	}
}

// NewArticleCreatedEvent constructs an Event for a newly stored article.
func NewArticleCreatedEvent(article domain.LocalArticle) Event {
	return Event{
		Kind:       KindArticleCreated,
		Key:        article.ID,
		Article:    &article,
		OccurredAt: time.Now().UTC(),
	}
}
