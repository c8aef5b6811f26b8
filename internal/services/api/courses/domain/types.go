// Package domain holds course types and DTOs for http and service contracts
package domain

import (
	"github.com/shopspring/decimal"
)

// CourseType enumerates the kinds of learning content we index
type CourseType string

// Course type values as stored
const (
	TypeCourse         CourseType = "course"
	TypeCertification  CourseType = "certification"
	TypeSpecialization CourseType = "specialization"
	TypeDegree         CourseType = "degree"
	TypeProject        CourseType = "project"
)

// Course is one retrievable course record
// ID is immutable once stored; this subsystem never mutates the other fields
type Course struct {
	ID           string          `json:"id" example:"crs_9f8a7b"`
	Name         string          `json:"name" example:"Python for Backend Engineers"`
	Provider     string          `json:"provider" example:"coursera"`
	ProviderLogo string          `json:"provider_logo_url,omitempty" example:"https://cdn.example.com/coursera.png"`
	Price        decimal.Decimal `json:"price" example:"49.99"`
	Currency     string          `json:"currency" example:"USD"`
	ImageURL     string          `json:"image_url,omitempty" example:"https://cdn.example.com/crs_9f8a7b.jpg"`
	AffiliateURL string          `json:"affiliate_url,omitempty" example:"https://go.example.com/c/crs_9f8a7b"`
	CourseType   CourseType      `json:"course_type" example:"course"`
	Description  string          `json:"description,omitempty"`
}

// SimilarityResult is a course plus its [0,1] similarity score,
// recomputed per query and never persisted
type SimilarityResult struct {
	Course
	Score float64 `json:"score" example:"0.83"`
}

// Filter is a closed set of search filter clauses; each variant compiles to
// one query fragment, appended in insertion order
type Filter interface {
	isFilter()
}

// ProviderFilter keeps only courses from one provider
type ProviderFilter struct {
	Provider string
}

// MaxPriceFilter keeps only courses at or under a price ceiling
type MaxPriceFilter struct {
	Max decimal.Decimal
}

// CategoryFilter keeps only courses in one category
type CategoryFilter struct {
	Category string
}

// CategoryListFilter keeps courses in any of the given categories
type CategoryListFilter struct {
	Categories []string
}

func decimalFromFloat(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func (ProviderFilter) isFilter()     {}
func (MaxPriceFilter) isFilter()     {}
func (CategoryFilter) isFilter()     {}
func (CategoryListFilter) isFilter() {}
