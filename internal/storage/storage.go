// Package storage provides the local article content store.
package storage

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/civicwire/statehouse-news/internal/domain"
)

// Query filters a store listing. Region and Category match by equality,
// TitlePrefix by case-insensitive prefix. Zero values mean "no filter".
type Query struct {
	Region      string
	Category    string
	TitlePrefix string
}

// Store holds locally authored articles. Implementations are safe for
// concurrent use.
type Store interface {
	Close() error
	InsertArticle(a domain.LocalArticle) error
	GetArticle(id string) (*domain.LocalArticle, bool, error)
	QueryArticles(q Query) ([]domain.LocalArticle, error)
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// NewArticleID derives a short stable identifier for an article from its
// title and creation time.
func NewArticleID(title string, createdAt time.Time) string {
	sum := sha1.Sum([]byte(title + "|" + strconv.FormatInt(createdAt.UnixNano(), 10))) //nolint:gosec
	return hex.EncodeToString(sum[:8])
}

// noopStore serves an empty collection; the service then runs external-only.
type noopStore struct{}

func (noopStore) Close() error                            { return nil }
func (noopStore) InsertArticle(domain.LocalArticle) error { return nil }
func (noopStore) GetArticle(string) (*domain.LocalArticle, bool, error) {
	return nil, false, nil
}
func (noopStore) QueryArticles(Query) ([]domain.LocalArticle, error) { return nil, nil }
