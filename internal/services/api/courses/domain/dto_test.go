package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEffectiveThreshold(t *testing.T) {
	t.Parallel()

	if got := (SearchInput{}).EffectiveThreshold(); got != DefaultThreshold {
		t.Fatalf("default threshold = %v", got)
	}

	zero := 0.0
	if got := (SearchInput{Threshold: &zero}).EffectiveThreshold(); got != 0 {
		t.Fatalf("explicit zero threshold = %v, want 0", got)
	}

	v := 0.7
	if got := (SearchInput{Threshold: &v}).EffectiveThreshold(); got != 0.7 {
		t.Fatalf("threshold = %v", got)
	}
}

func TestEffectiveLimit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{5, 5},
		{MaxLimit, MaxLimit},
		{MaxLimit + 100, MaxLimit},
	}
	for _, c := range cases {
		if got := (SearchInput{Limit: c.in}).EffectiveLimit(); got != c.want {
			t.Fatalf("EffectiveLimit(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFiltersCompileInFieldOrder(t *testing.T) {
	t.Parallel()

	price := 50.0
	in := SearchInput{
		Query:      "go",
		Provider:   "udemy",
		MaxPrice:   &price,
		Category:   "backend",
		Categories: []string{"go", "web"},
	}

	fs := in.Filters()
	if len(fs) != 4 {
		t.Fatalf("filters = %d, want 4", len(fs))
	}

	p, ok := fs[0].(ProviderFilter)
	if !ok || p.Provider != "udemy" {
		t.Fatalf("filter 0 = %#v", fs[0])
	}
	mp, ok := fs[1].(MaxPriceFilter)
	if !ok || !mp.Max.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("filter 1 = %#v", fs[1])
	}
	if _, ok := fs[2].(CategoryFilter); !ok {
		t.Fatalf("filter 2 = %#v", fs[2])
	}
	cl, ok := fs[3].(CategoryListFilter)
	if !ok || len(cl.Categories) != 2 {
		t.Fatalf("filter 3 = %#v", fs[3])
	}

	if got := (SearchInput{Query: "go"}).Filters(); got != nil {
		t.Fatalf("no filters expected, got %v", got)
	}
}
