package annotate

import (
	"strings"
	"testing"

	"github.com/civicwire/statehouse-news/internal/classify"
	"github.com/civicwire/statehouse-news/internal/domain"
)

func validArticle(title string) domain.Article {
	return domain.Article{
		Title:       title,
		Description: "A fine description",
		Content:     "Some ordinary content here.",
	}
}

func TestProcessDropsRemovedArticles(t *testing.T) {
	articles := []domain.Article{
		{Title: "[Removed]", Description: "d", Content: "c"},
		{Title: "t", Description: "", Content: "c"},
		{Title: "t", Description: "d", Content: "[Removed]"},
		{Title: "t", Description: "This item was Removed by the editor", Content: "c"},
		validArticle("keeper"),
	}

	got := Process(articles, "")
	if len(got) != 1 {
		t.Fatalf("survivors = %d, want 1", len(got))
	}
	if got[0].Title != "keeper" {
		t.Errorf("survivor = %q, want %q", got[0].Title, "keeper")
	}
}

func TestProcessDropsOnContentAloneRegardlessOfOtherFields(t *testing.T) {
	a := domain.Article{
		Title:       "Perfectly good title",
		Description: "Perfectly good description",
		Content:     "[Removed]",
	}
	if got := Process([]domain.Article{a}, ""); len(got) != 0 {
		t.Fatalf("article with removed content survived: %+v", got)
	}
}

func TestProcessPreservesOrder(t *testing.T) {
	articles := []domain.Article{
		validArticle("first"),
		validArticle("second"),
		validArticle("third"),
	}
	got := Process(articles, "")
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Title != want {
			t.Errorf("got[%d].Title = %q, want %q", i, got[i].Title, want)
		}
	}
}

func TestProcessForcedCategoryOverridesInference(t *testing.T) {
	// Text full of health keywords, but the caller's topic filter wins.
	a := domain.Article{
		Title:       "Hospital patient treatment",
		Description: "medical doctor medicine",
		Content:     "healthcare disease",
	}

	got := Process([]domain.Article{a}, classify.Education)
	if len(got) != 1 {
		t.Fatal("article dropped unexpectedly")
	}
	if got[0].Category != classify.Education {
		t.Errorf("Category = %q, want forced %q", got[0].Category, classify.Education)
	}
}

func TestProcessInfersWhenNotForced(t *testing.T) {
	a := domain.Article{
		Title:       "Hospital patient treatment",
		Description: "medical doctor medicine",
		Content:     "healthcare disease",
	}
	got := Process([]domain.Article{a}, "")
	if got[0].Category != classify.Health {
		t.Errorf("Category = %q, want %q", got[0].Category, classify.Health)
	}
}

func TestReadTimeMinimumOneMinute(t *testing.T) {
	got := Process([]domain.Article{validArticle("short")}, "")
	if got[0].ReadTimeMinutes != 1 {
		t.Errorf("ReadTimeMinutes = %d, want 1", got[0].ReadTimeMinutes)
	}
}

func TestReadTimeScalesWithWordCount(t *testing.T) {
	a := validArticle("long")
	a.Content = strings.Repeat("word ", 450) // 450 words at 200 wpm -> 3 minutes
	got := Process([]domain.Article{a}, "")
	if got[0].ReadTimeMinutes != 3 {
		t.Errorf("ReadTimeMinutes = %d, want 3", got[0].ReadTimeMinutes)
	}
}

func TestReadTimeCountsTruncatedCharacters(t *testing.T) {
	a := validArticle("truncated")
	// 10 visible words plus 4000 truncated chars ~= 810 words -> 5 minutes.
	a.Content = strings.Repeat("word ", 9) + "word… [+4000 chars]"
	got := Process([]domain.Article{a}, "")
	if got[0].ReadTimeMinutes != 5 {
		t.Errorf("ReadTimeMinutes = %d, want 5", got[0].ReadTimeMinutes)
	}
}
