package domain

import (
	"coursehub/internal/platform/timing"
)

// Defaults applied when the caller leaves the knob unset
const (
	DefaultThreshold = 0.3
	DefaultLimit     = 10
	MaxLimit         = 50

	// MaxBatchIDs bounds one batch request, enforced before any I/O
	MaxBatchIDs = 100
)

// RenderMode selects how course descriptions come back
type RenderMode string

// Render modes accepted on the wire
const (
	RenderFull      RenderMode = "full"
	RenderTruncated RenderMode = "truncated"
)

// SearchInput is a free text similarity query with optional filters
type SearchInput struct {
	Query     string   `json:"query" validate:"required,min=1,max=500" example:"python backend development"`
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,min=0,max=1" example:"0.3"`
	Limit     int      `json:"limit,omitempty" validate:"omitempty,min=1,max=50" example:"10"`

	// optional filters, applied in field order
	Provider   string   `json:"provider,omitempty" validate:"omitempty,min=1,max=100" example:"coursera"`
	MaxPrice   *float64 `json:"max_price,omitempty" validate:"omitempty,min=0" example:"100"`
	Category   string   `json:"category,omitempty" validate:"omitempty,min=1,max=100" example:"data-science"`
	Categories []string `json:"categories,omitempty" validate:"omitempty,max=20,dive,min=1,max=100"`
}

// SearchOutput carries ranked results plus the query cache disposition
type SearchOutput struct {
	Results []SimilarityResult `json:"results"`
	Count   int                `json:"count" example:"3"`
	Cached  bool               `json:"cached" example:"false"`
}

// BatchInput resolves an ordered list of course IDs
type BatchInput struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,required" example:"crs_9f8a7b,crs_1c2d3e"`

	// MaxCourses caps how many of the IDs get processed; the rest count as skipped
	MaxCourses int `json:"max_courses,omitempty" validate:"omitempty,min=1" example:"3"`

	RenderMode RenderMode `json:"render_mode,omitempty" validate:"omitempty,oneof=full truncated" example:"full"`
	MaxLength  int        `json:"max_length,omitempty" validate:"omitempty,min=1" example:"200"`
	TrackTime  bool       `json:"track_time,omitempty" example:"true"`
}

// BatchOutput preserves the caller's ID order restricted to resolvable IDs.
// Missing IDs are reported, never errored
type BatchOutput struct {
	Courses        []Course `json:"courses"`
	TotalFound     int      `json:"total_found" example:"2"`
	RequestedCount int      `json:"requested_count" example:"3"`
	ProcessedCount int      `json:"processed_count" example:"3"`
	SkippedCount   int      `json:"skipped_count" example:"0"`
	NotFoundIDs    []string `json:"not_found_ids" example:"crs_gone"`
	AllNotFound    bool     `json:"all_not_found" example:"false"`
	CacheHitRate   float64  `json:"cache_hit_rate" example:"0.66"`

	// FallbackURL is set only when zero records resolved
	FallbackURL string `json:"fallback_url,omitempty" example:"https://coursehub.example.com/courses"`

	TimeTracking *timing.Report `json:"time_tracking,omitempty"`
}

// EffectiveThreshold returns the similarity floor with the default applied
func (in SearchInput) EffectiveThreshold() float64 {
	if in.Threshold == nil {
		return DefaultThreshold
	}
	return *in.Threshold
}

// EffectiveLimit returns the row limit with default and upper bound applied
func (in SearchInput) EffectiveLimit() int {
	if in.Limit <= 0 {
		return DefaultLimit
	}
	if in.Limit > MaxLimit {
		return MaxLimit
	}
	return in.Limit
}

// Filters compiles the optional filter fields into the closed filter set,
// in field order
func (in SearchInput) Filters() []Filter {
	var fs []Filter
	if in.Provider != "" {
		fs = append(fs, ProviderFilter{Provider: in.Provider})
	}
	if in.MaxPrice != nil {
		fs = append(fs, MaxPriceFilter{Max: decimalFromFloat(*in.MaxPrice)})
	}
	if in.Category != "" {
		fs = append(fs, CategoryFilter{Category: in.Category})
	}
	if len(in.Categories) > 0 {
		fs = append(fs, CategoryListFilter{Categories: in.Categories})
	}
	return fs
}
