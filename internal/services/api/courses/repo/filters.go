package repo

import (
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"coursehub/internal/services/api/courses/domain"
)

// buildSearchQuery assembles the ranked nearest neighbor query.
// Filters compile to parameterized fragments appended in insertion order;
// no caller text ever lands in the SQL string
func buildSearchQuery(
	vec pgvector.Vector,
	threshold float64,
	limit int,
	filters []domain.Filter,
) (string, []any) {
	var b strings.Builder
	args := []any{vec, threshold}

	b.WriteString(`select ` + courseCols + `, 1 - (embedding <=> $1) as score
from courses
where 1 - (embedding <=> $1) >= $2`)

	for _, f := range filters {
		switch f := f.(type) {
		case domain.ProviderFilter:
			args = append(args, f.Provider)
			fmt.Fprintf(&b, "\nand provider = $%d", len(args))
		case domain.MaxPriceFilter:
			args = append(args, f.Max)
			fmt.Fprintf(&b, "\nand price <= $%d", len(args))
		case domain.CategoryFilter:
			args = append(args, f.Category)
			fmt.Fprintf(&b, "\nand category = $%d", len(args))
		case domain.CategoryListFilter:
			args = append(args, f.Categories)
			fmt.Fprintf(&b, "\nand category = any($%d)", len(args))
		}
	}

	args = append(args, limit)
	fmt.Fprintf(&b, "\norder by score desc\nlimit $%d\n", len(args))
	return b.String(), args
}
