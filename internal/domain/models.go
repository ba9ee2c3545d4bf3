package domain

import "time"

// Domain contains the core models shared across the aggregation pipeline.

// Source identifies where an article came from.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is the common shape both news sources are mapped into. URL is
// treated as a stable identifier within a result set; the pipeline never
// mutates an Article after it has been built.
type Article struct {
	Source      Source    `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

// AnnotatedArticle is an Article enriched with an inferred (or forced)
// category and an estimated reading time. Derived per request, never
// persisted upstream.
type AnnotatedArticle struct {
	Article
	Category        string `json:"category"`
	ReadTimeMinutes int    `json:"readTime"`
}

// NewsResponse is the aggregated page returned to clients and stored in the
// response cache.
type NewsResponse struct {
	Status       string             `json:"status"`
	TotalResults int                `json:"totalResults"`
	Articles     []AnnotatedArticle `json:"articles"`
}

// QueryFilters carries the sanitized request parameters. An empty string
// means the filter is absent. Page and PageSize are always >= 1.
type QueryFilters struct {
	Search   string
	Region   string
	Topic    string
	Page     int
	PageSize int
}

// LocalArticle is an article held in the local content store.
type LocalArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	Region      string    `json:"region"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}
