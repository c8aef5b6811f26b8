// Package service contains the course retrieval workflows
package service

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"coursehub/internal/adapters/embedding"
	"coursehub/internal/core/markup"
	"coursehub/internal/modkit/repokit"
	"coursehub/internal/platform/cache"
	perr "coursehub/internal/platform/errors"
	"coursehub/internal/platform/logger"
	"coursehub/internal/platform/monitor"
	pnet "coursehub/internal/platform/net"
	"coursehub/internal/platform/retry"
	"coursehub/internal/platform/timing"
	"coursehub/internal/services/api/courses/domain"
	"coursehub/internal/services/api/courses/repo"
)

// DefaultFallbackURL is returned when a batch resolves zero records so the
// caller always has a valid next action
const DefaultFallbackURL = "https://coursehub.example.com/courses"

const defaultMinPhase = time.Millisecond

// Service defines the course retrieval contract
type Service interface {
	domain.ServicePort
}

// Options carries the collaborators and knobs beyond the repo binding
type Options struct {
	Embedder embedding.Provider
	Events   monitor.Sink

	// QueryCache holds []domain.SimilarityResult per normalized query key;
	// DetailCache holds one rendered domain.Course per (id, mode, length) key
	QueryCache  *cache.Sharded[any]
	DetailCache *cache.Sharded[any]

	Retry       retry.Policy
	MinPhase    time.Duration
	FallbackURL string
}

// Svc implements the course retrieval service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner

	embedder embedding.Provider
	events   monitor.Sink

	queryCache  *cache.Sharded[any]
	detailCache *cache.Sharded[any]

	retry       retry.Policy
	minPhase    time.Duration
	fallbackURL string

	// collapses concurrent identical cache misses into one embed+query
	flight singleflight.Group

	log logger.Logger
}

// New constructs a course retrieval service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], o Options) *Svc {
	if db == nil {
		panic("courses.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("courses.Service requires a non nil Repo binder")
	}
	if o.Embedder == nil {
		panic("courses.Service requires an embedding provider")
	}
	if o.Events == nil {
		o.Events = monitor.Nop()
	}
	if o.Retry.Attempts == 0 {
		o.Retry = retry.DefaultPolicy()
	}
	if o.MinPhase <= 0 {
		o.MinPhase = defaultMinPhase
	}
	if o.FallbackURL == "" {
		o.FallbackURL = DefaultFallbackURL
	}

	return &Svc{
		Repo:        binder.Bind(db),
		binder:      binder,
		db:          db,
		embedder:    o.Embedder,
		events:      o.Events,
		queryCache:  o.QueryCache,
		detailCache: o.DetailCache,
		retry:       o.Retry,
		minPhase:    o.MinPhase,
		fallbackURL: o.FallbackURL,
		log:         *logger.Named("courses"),
	}
}

// Search runs an embedding backed similarity query with optional filters.
// Zero rows above the threshold is a success with an empty result set
func (s *Svc) Search(ctx context.Context, in domain.SearchInput) (domain.SearchOutput, error) {
	threshold := in.EffectiveThreshold()
	limit := in.EffectiveLimit()
	filters := in.Filters()

	norm := normalizeQuery(in.Query)
	if norm == "" {
		return domain.SearchOutput{}, perr.Validationf("query must not be blank")
	}
	key := searchKey(norm, threshold, limit, filters)

	rec := timing.New(s.minPhase)
	rec.StartPhase("cache_lookup")
	if v, ok := s.cacheGetQuery(key); ok {
		s.emit(ctx, "search_completed", map[string]any{
			"query": norm, "results": len(v), "cached": true,
		})
		return domain.SearchOutput{Results: cloneResults(v), Count: len(v), Cached: true}, nil
	}

	rec.StartPhase("search")
	results, err, _ := s.flight.Do(key, func() (any, error) {
		return s.searchStore(ctx, rec, norm, threshold, limit, filters, key)
	})
	if err != nil {
		s.emit(ctx, "search_error", map[string]any{
			"query": norm, "error": err.Error(),
		})
		return domain.SearchOutput{}, err
	}
	rep := rec.Finish()

	rs := results.([]domain.SimilarityResult)
	s.emit(ctx, "search_completed", map[string]any{
		"query": norm, "results": len(rs), "cached": false, "total_ms": rep.TotalMs,
	})
	return domain.SearchOutput{Results: cloneResults(rs), Count: len(rs)}, nil
}

// searchStore is the miss path: embed with bounded retries, then one ranked
// store query, then populate the cache
func (s *Svc) searchStore(
	ctx context.Context,
	rec *timing.Recorder,
	norm string,
	threshold float64,
	limit int,
	filters []domain.Filter,
	key string,
) ([]domain.SimilarityResult, error) {
	rec.StartPhase("embedding")
	vec, err := retry.DoValue(ctx, s.retry, func(ctx context.Context) ([]float32, error) {
		return s.embedder.Embed(ctx, norm)
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeEmbedding, "embed query")
	}

	rec.StartPhase("db_query")
	rows, err := s.Repo.SearchSimilar(ctx, vec, threshold, limit, filters)
	if err != nil {
		return nil, perr.FromPostgres(err, "similarity search")
	}

	rec.StartPhase("cache_store")
	if rows == nil {
		rows = []domain.SimilarityResult{}
	}
	s.cacheSetQuery(key, rows)
	return rows, nil
}

// ResolveByIDs resolves an ordered ID list, preserving caller order and
// reporting misses; missing IDs never fail the batch
func (s *Svc) ResolveByIDs(ctx context.Context, in domain.BatchInput) (domain.BatchOutput, error) {
	rec := timing.New(s.minPhase)

	requested := len(in.IDs)
	ids := in.IDs
	if in.MaxCourses > 0 && in.MaxCourses < requested {
		ids = ids[:in.MaxCourses]
	}
	processed := len(ids)
	skipped := requested - processed

	mode := in.RenderMode
	if mode == "" {
		mode = domain.RenderFull
	}

	// request-scoped hit accounting; the cache's own counters span the process
	var hits, misses int

	rec.StartPhase("cache_lookup")
	found := make(map[string]domain.Course, processed)
	var missIDs []string
	for _, id := range ids {
		key := detailKey(id, mode, in.MaxLength)
		if c, ok := s.cacheGetDetail(key); ok {
			hits++
			found[id] = c
			continue
		}
		misses++
		missIDs = append(missIDs, id)
	}

	if len(missIDs) > 0 {
		rec.StartPhase("db_fetch")
		fetched, err := s.Repo.ByIDs(ctx, missIDs)
		if err != nil {
			return domain.BatchOutput{}, perr.FromPostgres(err, "resolve courses by id")
		}

		rec.StartPhase("render")
		for _, c := range fetched {
			c.Description = renderDescription(c.Description, mode, in.MaxLength)
			found[c.ID] = c
			s.cacheSetDetail(detailKey(c.ID, mode, in.MaxLength), c)
		}
	}

	rec.StartPhase("assemble")
	out := domain.BatchOutput{
		Courses:        make([]domain.Course, 0, processed),
		RequestedCount: requested,
		ProcessedCount: processed,
		SkippedCount:   skipped,
		NotFoundIDs:    []string{},
		CacheHitRate:   hitRate(hits, misses),
	}
	for _, id := range ids {
		c, ok := found[id]
		if !ok {
			out.NotFoundIDs = append(out.NotFoundIDs, id)
			continue
		}
		out.Courses = append(out.Courses, c)
	}
	out.TotalFound = len(out.Courses)
	if out.TotalFound == 0 {
		out.AllNotFound = true
		out.FallbackURL = s.fallbackURL
	}

	rep := rec.Finish()
	if in.TrackTime {
		out.TimeTracking = &rep
	}
	s.emit(ctx, "batch_completed", map[string]any{
		"requested":      requested,
		"processed":      processed,
		"found":          out.TotalFound,
		"not_found":      len(out.NotFoundIDs),
		"cache_hit_rate": out.CacheHitRate,
		"total_ms":       rep.TotalMs,
	})
	return out, nil
}

func (s *Svc) emit(ctx context.Context, name string, attrs map[string]any) {
	s.events.Emit(ctx, monitor.Event{
		Name:      name,
		RequestID: pnet.RequestID(ctx),
		Attrs:     attrs,
	})
}

func (s *Svc) cacheGetQuery(key string) ([]domain.SimilarityResult, bool) {
	if s.queryCache == nil {
		return nil, false
	}
	v, ok := s.queryCache.Get(key)
	if !ok {
		return nil, false
	}
	rs, ok := v.([]domain.SimilarityResult)
	return rs, ok
}

func (s *Svc) cacheSetQuery(key string, rs []domain.SimilarityResult) {
	if s.queryCache != nil {
		s.queryCache.Set(key, rs)
	}
}

func (s *Svc) cacheGetDetail(key string) (domain.Course, bool) {
	if s.detailCache == nil {
		return domain.Course{}, false
	}
	v, ok := s.detailCache.Get(key)
	if !ok {
		return domain.Course{}, false
	}
	c, ok := v.(domain.Course)
	return c, ok
}

func (s *Svc) cacheSetDetail(key string, c domain.Course) {
	if s.detailCache != nil {
		s.detailCache.Set(key, c)
	}
}

func renderDescription(raw string, mode domain.RenderMode, maxLen int) string {
	switch mode {
	case domain.RenderTruncated:
		return markup.Render(raw, markup.Options{Mode: markup.ModePlain, MaxLength: maxLen})
	default:
		return markup.Render(raw, markup.Options{Mode: markup.ModeHTML})
	}
}

func hitRate(hits, misses int) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// cloneResults keeps cache entries copy-on-read so callers never alias the
// cached slice
func cloneResults(in []domain.SimilarityResult) []domain.SimilarityResult {
	out := make([]domain.SimilarityResult, len(in))
	copy(out, in)
	return out
}
