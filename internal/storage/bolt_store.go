package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/civicwire/statehouse-news/internal/domain"
)

const articleBucket = "articles"

// boltStore implements a Store backed by BoltDB. Articles are stored as JSON
// values keyed by id; filtering happens in-process over a cursor scan, which
// is fine for the modest size of a locally authored collection.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(articleBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// InsertArticle stores the article, generating an id and creation time when
// absent.
func (b *boltStore) InsertArticle(a domain.LocalArticle) error {
	if b == nil || b.db == nil {
		return fmt.Errorf("store is not initialized")
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("article title is required")
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.ID == "" {
		a.ID = NewArticleID(a.Title, a.CreatedAt)
	}

	value, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return fmt.Errorf("article bucket missing")
		}
		return bucket.Put([]byte(a.ID), value)
	})
}

// GetArticle looks up a single article by id.
func (b *boltStore) GetArticle(id string) (*domain.LocalArticle, bool, error) {
	if b == nil || b.db == nil {
		return nil, false, nil
	}

	var found *domain.LocalArticle
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return fmt.Errorf("article bucket missing")
		}
		value := bucket.Get([]byte(id))
		if value == nil {
			return nil
		}
		var a domain.LocalArticle
		if err := json.Unmarshal(value, &a); err != nil {
			return fmt.Errorf("decode article %s: %w", id, err)
		}
		found = &a
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return found, found != nil, nil
}

// QueryArticles scans the collection and returns articles matching the
// query, newest first.
func (b *boltStore) QueryArticles(q Query) ([]domain.LocalArticle, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	prefix := strings.ToLower(strings.TrimSpace(q.TitlePrefix))

	var out []domain.LocalArticle
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return fmt.Errorf("article bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var a domain.LocalArticle
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("decode article %s: %w", string(k), err)
			}
			if !matches(a, q, prefix) {
				continue
			}
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// matches applies the query filters to one article.
func matches(a domain.LocalArticle, q Query, titlePrefix string) bool {
	if q.Region != "" && !strings.EqualFold(a.Region, q.Region) {
		return false
	}
	if q.Category != "" && !strings.EqualFold(a.Category, q.Category) {
		return false
	}
	if titlePrefix != "" && !strings.HasPrefix(strings.ToLower(a.Title), titlePrefix) {
		return false
	}
	return true
}
