package aggregator

import (
	"fmt"

	"github.com/civicwire/statehouse-news/internal/ratelimit"
)

// ValidationError reports a rejected request parameter.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s parameter", e.Field)
}

// RateLimitError reports an exhausted client window. Result carries the
// limit state the transport layer needs for response headers.
type RateLimitError struct {
	Result ratelimit.Result
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit of %d requests exceeded", e.Result.Limit)
}

// UpstreamError wraps a failure from one of the feed sources.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s source failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
