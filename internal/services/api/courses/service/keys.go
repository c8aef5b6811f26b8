package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"coursehub/internal/services/api/courses/domain"
)

// normalizeQuery lowercases and collapses whitespace so equivalent queries
// share one cache key and one embedding
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// searchKey hashes the normalized query plus every knob that changes the
// result set; filter serialization is deterministic by insertion order
func searchKey(norm string, threshold float64, limit int, filters []domain.Filter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "q=%s|t=%g|l=%d", norm, threshold, limit)
	for _, f := range filters {
		switch f := f.(type) {
		case domain.ProviderFilter:
			fmt.Fprintf(&b, "|provider=%s", f.Provider)
		case domain.MaxPriceFilter:
			fmt.Fprintf(&b, "|max_price=%s", f.Max.String())
		case domain.CategoryFilter:
			fmt.Fprintf(&b, "|category=%s", f.Category)
		case domain.CategoryListFilter:
			fmt.Fprintf(&b, "|categories=%s", strings.Join(f.Categories, ","))
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return "search:" + hex.EncodeToString(sum[:])
}

// detailKey identifies one rendered course variant
func detailKey(id string, mode domain.RenderMode, maxLen int) string {
	return fmt.Sprintf("course:%s:%s:%d", id, mode, maxLen)
}
