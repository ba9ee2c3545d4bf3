// Package annotate filters invalid articles and attaches derived metadata:
// category and estimated reading time. Filtering always runs before
// annotation, so a dropped article is never classified and classification
// never decides a drop.
package annotate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/civicwire/statehouse-news/internal/classify"
	"github.com/civicwire/statehouse-news/internal/domain"
)

const (
	wordsPerMinute = 200
	charsPerWord   = 5

	removedPlaceholder = "[Removed]"
)

// truncationMarker matches the "[+N chars]" suffix some providers append
// when they cut content short.
var truncationMarker = regexp.MustCompile(`\[\+(\d+) chars\]`)

// Process drops invalid articles and annotates the survivors, preserving
// input order. When forced is non-empty it is used as the category for every
// survivor (an explicit topic filter already names the category); otherwise
// each article is classified individually. Pure: the input slice is not
// modified.
func Process(articles []domain.Article, forced string) []domain.AnnotatedArticle {
	out := make([]domain.AnnotatedArticle, 0, len(articles))
	for _, a := range articles {
		if isRemoved(a.Title) || isRemoved(a.Description) || isRemoved(a.Content) {
			continue
		}

		category := forced
		if category == "" {
			category = classify.Infer(a)
		}

		out = append(out, domain.AnnotatedArticle{
			Article:         a,
			Category:        category,
			ReadTimeMinutes: readTime(a.Content),
		})
	}
	return out
}

// isRemoved reports whether a field marks the article as withdrawn by the
// provider: empty, the literal placeholder, or any text mentioning
// "removed".
func isRemoved(text string) bool {
	if text == "" || text == removedPlaceholder {
		return true
	}
	return strings.Contains(strings.ToLower(text), "removed")
}

// readTime estimates whole minutes to read the content. Truncated content
// carries a "[+N chars]" marker; those characters are converted back to an
// approximate word count before applying the reading speed.
func readTime(content string) int {
	words := float64(len(strings.Fields(content)))

	if m := truncationMarker.FindStringSubmatch(content); m != nil {
		if chars, err := strconv.Atoi(m[1]); err == nil {
			words += float64(chars) / charsPerWord
		}
	}

	minutes := int(math.Ceil(words / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
