package sanitize

import "testing"

func TestSearchQueryRejectsDisallowedCharacters(t *testing.T) {
	cases := []string{
		"drop table; --",
		"hello<script>",
		"price=100%",
		"a&b",
		"c|d",
		"q?",
		`back\slash`,
		"tilde~",
	}
	for _, raw := range cases {
		if got, ok := SearchQuery(raw); ok {
			t.Errorf("SearchQuery(%q) = %q, ok; want rejection", raw, got)
		}
	}
}

func TestSearchQueryNormalizes(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"  Senate Bill  ", "senate bill"},
		{"climate (policy)", "climate policy"},
		{"school-board vote", "school board vote"},
		{"O'Neill, Jr.", "o'neill, jr."},
	}
	for _, c := range cases {
		got, ok := SearchQuery(c.raw)
		if !ok {
			t.Fatalf("SearchQuery(%q) rejected", c.raw)
		}
		if got != c.want {
			t.Errorf("SearchQuery(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestSearchQueryIdempotent(t *testing.T) {
	inputs := []string{"state (budget) - 2025", "()", "  spaced   out  ", "plain"}
	for _, raw := range inputs {
		once, ok := SearchQuery(raw)
		if !ok {
			t.Fatalf("SearchQuery(%q) rejected", raw)
		}
		twice, ok := SearchQuery(once)
		if !ok {
			t.Fatalf("SearchQuery(%q) rejected on second pass", once)
		}
		if once != twice {
			t.Errorf("SearchQuery not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
}

func TestSearchQueryOperatorOnlyBecomesAbsent(t *testing.T) {
	got, ok := SearchQuery("()-")
	if !ok {
		t.Fatal("operator-only input should not be rejected")
	}
	if got != "" {
		t.Errorf("operator-only input = %q, want empty (absent)", got)
	}
}

func TestRegion(t *testing.T) {
	if got, ok := Region(" New-York "); !ok || got != "new-york" {
		t.Errorf("Region = %q, %v", got, ok)
	}
	if _, ok := Region("ny2"); ok {
		t.Error("digits should be rejected in region")
	}
	if _, ok := Region("new.york"); ok {
		t.Error("dots should be rejected in region")
	}
	if got, ok := Region(""); !ok || got != "" {
		t.Errorf("empty region should be absent, got %q, %v", got, ok)
	}
}

func TestTopic(t *testing.T) {
	if got, ok := Topic(" Health "); !ok || got != "health" {
		t.Errorf("Topic = %q, %v", got, ok)
	}
	if _, ok := Topic("health-care"); ok {
		t.Error("hyphens should be rejected in topic")
	}
	if _, ok := Topic("the economy"); ok {
		t.Error("spaces should be rejected in topic")
	}
}

func TestPageIsTotal(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"-4", 1},
		{"0", 1},
		{"1", 1},
		{"37", 37},
		{"2.5", 1},
	}
	for _, c := range cases {
		if got := Page(c.raw); got != c.want {
			t.Errorf("Page(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestPageSizeIsTotalAndClamped(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", DefaultPageSize},
		{"nope", DefaultPageSize},
		{"0", DefaultPageSize},
		{"25", 25},
		{"5000", MaxPageSize},
	}
	for _, c := range cases {
		if got := PageSize(c.raw); got != c.want {
			t.Errorf("PageSize(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestPageSizeWithConfiguredDefault(t *testing.T) {
	cases := []struct {
		raw  string
		def  int
		want int
	}{
		{"", 25, 25},
		{"nope", 25, 25},
		{"40", 25, 40},
		{"5000", 25, MaxPageSize},
		{"", 0, DefaultPageSize},
		{"", -3, DefaultPageSize},
		{"", MaxPageSize + 1, DefaultPageSize},
	}
	for _, c := range cases {
		if got := PageSizeWith(c.raw, c.def); got != c.want {
			t.Errorf("PageSizeWith(%q, %d) = %d, want %d", c.raw, c.def, got, c.want)
		}
	}
}
