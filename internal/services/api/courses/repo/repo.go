// Package repo provides postgres access for course retrieval
package repo

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"coursehub/internal/modkit/repokit"
	"coursehub/internal/services/api/courses/domain"
)

// Repo is the minimal persistence surface for course retrieval
type Repo interface {
	// SearchSimilar returns rows above the similarity floor, ordered by
	// descending score; ties fall back to store row order
	SearchSimilar(
		ctx context.Context,
		vec []float32,
		threshold float64,
		limit int,
		filters []domain.Filter,
	) ([]domain.SimilarityResult, error)

	// ByIDs resolves ids in one round trip; rows come back in the order
	// of ids so no client side re-sort is needed
	ByIDs(ctx context.Context, ids []string) ([]domain.Course, error)
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const courseCols = `id, name, provider, provider_logo_url, price, currency, image_url, affiliate_url, course_type, description`

func (r *queries) SearchSimilar(
	ctx context.Context,
	vec []float32,
	threshold float64,
	limit int,
	filters []domain.Filter,
) ([]domain.SimilarityResult, error) {
	sql, args := buildSearchQuery(pgvector.NewVector(vec), threshold, limit, filters)

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SimilarityResult
	for rows.Next() {
		var sr domain.SimilarityResult
		if err := rows.Scan(
			&sr.ID, &sr.Name, &sr.Provider, &sr.ProviderLogo,
			&sr.Price, &sr.Currency, &sr.ImageURL, &sr.AffiliateURL,
			&sr.CourseType, &sr.Description, &sr.Score,
		); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (r *queries) ByIDs(ctx context.Context, ids []string) ([]domain.Course, error) {
	// unnest with ordinality carries the caller position into the result so
	// rows re-arrive in input order straight from the store
	const sql = `
select ` + courseColsPrefixed + `
from unnest($1::text[]) with ordinality as input(id, ord)
join courses c on c.id = input.id
order by input.ord
`
	rows, err := r.q.Query(ctx, sql, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Provider, &c.ProviderLogo,
			&c.Price, &c.Currency, &c.ImageURL, &c.AffiliateURL,
			&c.CourseType, &c.Description,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const courseColsPrefixed = `c.id, c.name, c.provider, c.provider_logo_url, c.price, c.currency, c.image_url, c.affiliate_url, c.course_type, c.description`
