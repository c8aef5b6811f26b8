package repo

import (
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/shopspring/decimal"

	"coursehub/internal/services/api/courses/domain"
)

func TestBuildSearchQueryNoFilters(t *testing.T) {
	t.Parallel()

	sql, args := buildSearchQuery(pgvector.NewVector([]float32{1, 2}), 0.3, 10, nil)

	if !strings.Contains(sql, "1 - (embedding <=> $1) as score") {
		t.Fatalf("missing score expression:\n%s", sql)
	}
	if !strings.Contains(sql, ">= $2") {
		t.Fatalf("missing threshold clause:\n%s", sql)
	}
	if !strings.Contains(sql, "order by score desc") {
		t.Fatalf("missing ordering:\n%s", sql)
	}
	if !strings.Contains(sql, "limit $3") {
		t.Fatalf("limit placeholder wrong:\n%s", sql)
	}
	if len(args) != 3 {
		t.Fatalf("args = %d, want 3", len(args))
	}
	if args[1] != 0.3 || args[2] != 10 {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildSearchQueryFilterOrder(t *testing.T) {
	t.Parallel()

	filters := []domain.Filter{
		domain.ProviderFilter{Provider: "udemy"},
		domain.MaxPriceFilter{Max: decimal.NewFromInt(100)},
		domain.CategoryFilter{Category: "backend"},
		domain.CategoryListFilter{Categories: []string{"go", "web"}},
	}
	sql, args := buildSearchQuery(pgvector.NewVector([]float32{1}), 0.5, 5, filters)

	// clauses appear in insertion order with sequential placeholders
	wantOrder := []string{
		"provider = $3",
		"price <= $4",
		"category = $5",
		"category = any($6)",
		"limit $7",
	}
	pos := 0
	for _, w := range wantOrder {
		idx := strings.Index(sql[pos:], w)
		if idx < 0 {
			t.Fatalf("missing or out of order %q in:\n%s", w, sql)
		}
		pos += idx
	}

	if len(args) != 7 {
		t.Fatalf("args = %d, want 7", len(args))
	}
	if args[2] != "udemy" || args[4] != "backend" {
		t.Fatalf("args = %v", args)
	}

	// no caller text is ever spliced into the SQL
	if strings.Contains(sql, "udemy") || strings.Contains(sql, "backend") {
		t.Fatalf("caller values leaked into sql:\n%s", sql)
	}
}

func TestBuildSearchQuerySubsetOfFilters(t *testing.T) {
	t.Parallel()

	sql, args := buildSearchQuery(pgvector.NewVector([]float32{1}), 0.3, 10, []domain.Filter{
		domain.CategoryFilter{Category: "ml"},
	})
	if !strings.Contains(sql, "category = $3") {
		t.Fatalf("category placeholder wrong:\n%s", sql)
	}
	if !strings.Contains(sql, "limit $4") {
		t.Fatalf("limit placeholder wrong:\n%s", sql)
	}
	if len(args) != 4 {
		t.Fatalf("args = %d, want 4", len(args))
	}
}
