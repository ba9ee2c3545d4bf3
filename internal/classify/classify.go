// Package classify infers an article's category from keyword frequency.
// The keyword table is plain data: adding a category is additive, not a
// rewrite.
package classify

import (
	"strings"

	"github.com/civicwire/statehouse-news/internal/domain"
)

// Category names. General is the fallback and carries no keywords.
const (
	Politics    = "politics"
	Economy     = "economy"
	Health      = "health"
	Education   = "education"
	Technology  = "technology"
	Environment = "environment"
	General     = "general"
)

// categories lists every category in declaration order. The order is
// observable: ties in keyword counts resolve to the first-declared category.
var categories = []string{Politics, Economy, Health, Education, Technology, Environment, General}

var categoryKeywords = map[string][]string{
	Politics:    {"election", "vote", "congress", "senate", "governor", "bill", "legislation", "democrat", "republican", "political"},
	Economy:     {"economy", "business", "market", "finance", "trade", "tax", "budget", "economic", "investment"},
	Health:      {"health", "medical", "hospital", "healthcare", "disease", "treatment", "patient", "doctor", "medicine"},
	Education:   {"education", "school", "student", "teacher", "university", "college", "academic", "learning"},
	Technology:  {"tech", "technology", "digital", "software", "internet", "cyber", "AI", "data", "innovation"},
	Environment: {"climate", "environment", "energy", "pollution", "renewable", "sustainability", "green"},
	General:     {},
}

// Categories returns the category names in declaration order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// Parse reports whether s names a known category, returning its canonical
// form.
func Parse(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range categories {
		if c == s {
			return c, true
		}
	}
	return "", false
}

// Infer classifies an article by counting keyword occurrences in its
// combined title, description and content. Keywords match as substrings, so
// a keyword inside an unrelated longer token counts; that imprecision is part
// of the observable behavior. The strictly highest count wins, first-declared
// category on ties; zero matches everywhere falls back to General.
func Infer(a domain.Article) string {
	text := strings.ToLower(a.Title + " " + a.Description + " " + a.Content)

	best := General
	bestMatches := 0
	for _, cat := range categories {
		matches := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(text, kw) {
				matches++
			}
		}
		if matches > bestMatches {
			best = cat
			bestMatches = matches
		}
	}
	return best
}
