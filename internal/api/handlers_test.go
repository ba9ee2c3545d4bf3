package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicwire/statehouse-news/internal/aggregator"
	"github.com/civicwire/statehouse-news/internal/cache"
	"github.com/civicwire/statehouse-news/internal/domain"
	"github.com/civicwire/statehouse-news/internal/ratelimit"
	"github.com/civicwire/statehouse-news/internal/storage"
	"github.com/civicwire/statehouse-news/pkg/newsapi"
)

type fakeSearch struct {
	result *newsapi.SearchResult
	calls  int
}

func (f *fakeSearch) Search(context.Context, domain.QueryFilters) (*newsapi.SearchResult, error) {
	f.calls++
	return f.result, nil
}

type fakeStore struct {
	articles []domain.LocalArticle
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) InsertArticle(a domain.LocalArticle) error {
	f.articles = append(f.articles, a)
	return nil
}

func (f *fakeStore) GetArticle(id string) (*domain.LocalArticle, bool, error) {
	for i := range f.articles {
		if f.articles[i].ID == id {
			return &f.articles[i], true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeStore) QueryArticles(storage.Query) ([]domain.LocalArticle, error) {
	return f.articles, nil
}

func newTestServer(t *testing.T, limit int, accessKey string) (*gin.Engine, *fakeSearch, *fakeStore) {
	t.Helper()

	search := &fakeSearch{result: &newsapi.SearchResult{
		Status:       "ok",
		TotalResults: 1,
		Articles: []domain.Article{{
			Source:      domain.Source{ID: "wire", Name: "Wire Service"},
			Title:       "Senate passes budget",
			Description: "The chamber approved the biennial budget.",
			URL:         "https://wire.example/budget",
			Content:     "Lawmakers approved the budget after a marathon session at the statehouse.",
		}},
	}}
	store := &fakeStore{}

	agg := aggregator.New(aggregator.Options{
		Cache:   cache.NewMemory(),
		Limiter: ratelimit.New(limit, time.Minute),
		Store:   store,
		Search:  search,
	})
	engine := NewServer(NewHandler(agg, "statehouse-news", nil), accessKey)
	return engine, search, store
}

func doRequest(engine *gin.Engine, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:51234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGetNewsMissThenHit(t *testing.T) {
	engine, search, _ := newTestServer(t, 100, "")

	first := doRequest(engine, http.MethodGet, "/api/news?search=budget", "", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", first.Code, first.Body.String())
	}
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}
	if first.Header().Get("X-RateLimit-Limit") != "100" {
		t.Errorf("X-RateLimit-Limit = %q", first.Header().Get("X-RateLimit-Limit"))
	}
	if first.Header().Get("X-RateLimit-Remaining") == "" || first.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("rate limit headers missing")
	}

	var resp domain.NewsResponse
	if err := json.Unmarshal(first.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "ok" || resp.TotalResults != 1 {
		t.Errorf("body = %+v", resp)
	}

	second := doRequest(engine, http.MethodGet, "/api/news?search=budget", "", nil)
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("X-Cache = %q, want HIT", got)
	}
	if search.calls != 1 {
		t.Errorf("search called %d times, want 1", search.calls)
	}
}

func TestGetNewsValidationFailure(t *testing.T) {
	engine, _, _ := newTestServer(t, 100, "")

	w := doRequest(engine, http.MethodGet, "/api/news?search=%3Cscript%3E", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "search") {
		t.Errorf("error should name the field, got %s", w.Body.String())
	}
}

func TestGetNewsRateLimited(t *testing.T) {
	engine, _, _ := newTestServer(t, 1, "")

	if w := doRequest(engine, http.MethodGet, "/api/news", "", nil); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}

	w := doRequest(engine, http.MethodGet, "/api/news", "", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", w.Header().Get("X-RateLimit-Remaining"))
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}

	// A different forwarded client gets its own window.
	other := doRequest(engine, http.MethodGet, "/api/news", "", map[string]string{
		"X-Forwarded-For": "198.51.100.7, 10.0.0.1",
	})
	if other.Code != http.StatusOK {
		t.Errorf("forwarded client status = %d, want 200", other.Code)
	}
}

func TestGetArticle(t *testing.T) {
	engine, _, store := newTestServer(t, 100, "")
	store.articles = []domain.LocalArticle{{ID: "abc12345", Title: "Committee advances water bill"}}

	found := doRequest(engine, http.MethodGet, "/articles/abc12345", "", nil)
	if found.Code != http.StatusOK {
		t.Fatalf("status = %d", found.Code)
	}
	if !strings.Contains(found.Body.String(), "water bill") {
		t.Errorf("body = %s", found.Body.String())
	}

	missing := doRequest(engine, http.MethodGet, "/articles/nope", "", nil)
	if missing.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", missing.Code)
	}
}

func TestCreateArticle(t *testing.T) {
	engine, _, store := newTestServer(t, 100, "")

	body := `{"title":"New ethics rules proposed","region":"ohio","category":"politics"}`
	w := doRequest(engine, http.MethodPost, "/api/articles", body, map[string]string{
		"Content-Type": "application/json",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(store.articles) != 1 || store.articles[0].ID == "" {
		t.Errorf("store = %+v", store.articles)
	}

	bad := doRequest(engine, http.MethodPost, "/api/articles", `{"region":"ohio"}`, map[string]string{
		"Content-Type": "application/json",
	})
	if bad.Code != http.StatusBadRequest {
		t.Errorf("missing title status = %d, want 400", bad.Code)
	}
}

func TestAdminRoutesRequireConfiguredKey(t *testing.T) {
	engine, _, _ := newTestServer(t, 100, "sekret")

	w := doRequest(engine, http.MethodDelete, "/api/cache", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	wrong := doRequest(engine, http.MethodDelete, "/api/cache", "", map[string]string{"X-API-Key": "nope"})
	if wrong.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key status = %d, want 401", wrong.Code)
	}

	ok := doRequest(engine, http.MethodDelete, "/api/cache", "", map[string]string{"X-API-Key": "sekret"})
	if ok.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", ok.Code, ok.Body.String())
	}

	bearer := doRequest(engine, http.MethodDelete, "/api/cache", "", map[string]string{"Authorization": "Bearer sekret"})
	if bearer.Code != http.StatusOK {
		t.Fatalf("bearer status = %d", bearer.Code)
	}

	// The public feed stays open.
	news := doRequest(engine, http.MethodGet, "/api/news", "", nil)
	if news.Code != http.StatusOK {
		t.Errorf("public route status = %d, want 200", news.Code)
	}
}

func TestFlushCacheForcesRefetch(t *testing.T) {
	engine, search, _ := newTestServer(t, 100, "")

	doRequest(engine, http.MethodGet, "/api/news", "", nil)
	if w := doRequest(engine, http.MethodDelete, "/api/cache", "", nil); w.Code != http.StatusOK {
		t.Fatalf("flush status = %d", w.Code)
	}
	w := doRequest(engine, http.MethodGet, "/api/news", "", nil)
	if got := w.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache after flush = %q, want MISS", got)
	}
	if search.calls != 2 {
		t.Errorf("search called %d times, want 2", search.calls)
	}
}

func TestHealth(t *testing.T) {
	engine, _, _ := newTestServer(t, 100, "")

	w := doRequest(engine, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}
