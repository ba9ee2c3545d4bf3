package classify

import (
	"testing"

	"github.com/civicwire/statehouse-news/internal/domain"
)

func TestInferPicksDominantCategory(t *testing.T) {
	a := domain.Article{
		Title:       "Hospital expands patient treatment wing",
		Description: "New medical facilities for doctors",
		Content:     "The healthcare system adds capacity.",
	}
	if got := Infer(a); got != Health {
		t.Errorf("Infer = %q, want %q", got, Health)
	}
}

func TestInferFallsBackToGeneral(t *testing.T) {
	a := domain.Article{
		Title:       "Local bakery wins pie contest",
		Description: "Crowds gathered downtown",
		Content:     "The jury praised the crust.",
	}
	if got := Infer(a); got != General {
		t.Errorf("Infer = %q, want %q", got, General)
	}
}

func TestInferTieBreaksByDeclarationOrder(t *testing.T) {
	// One politics keyword and one economy keyword: politics is declared
	// first and must win the tie.
	a := domain.Article{
		Title:   "Vote on trade",
		Content: "A short note.",
	}
	if got := Infer(a); got != Politics {
		t.Errorf("Infer = %q, want %q (first-declared wins ties)", got, Politics)
	}
}

func TestInferMatchesSubstringsInsideTokens(t *testing.T) {
	// "senate" inside a longer token still counts; the coarse matching is
	// deliberate and observable.
	a := domain.Article{Title: "senategate scandal widens", Content: "x"}
	if got := Infer(a); got != Politics {
		t.Errorf("Infer = %q, want %q", got, Politics)
	}
}

func TestParse(t *testing.T) {
	if c, ok := Parse(" Education "); !ok || c != Education {
		t.Errorf("Parse = %q, %v", c, ok)
	}
	if _, ok := Parse("sports"); ok {
		t.Error("unknown category must not parse")
	}
	if _, ok := Parse(""); ok {
		t.Error("empty string must not parse")
	}
}

func TestCategoriesOrderIsStable(t *testing.T) {
	want := []string{Politics, Economy, Health, Education, Technology, Environment, General}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
