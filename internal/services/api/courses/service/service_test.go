package service

import (
	"context"
	stderrs "errors"
	"testing"
	"time"

	"coursehub/internal/modkit/repokit"
	"coursehub/internal/platform/cache"
	perr "coursehub/internal/platform/errors"
	"coursehub/internal/platform/retry"
	"coursehub/internal/platform/testkit"
	"coursehub/internal/services/api/courses/domain"
	"coursehub/internal/services/api/courses/repo"
)

// fastRetry keeps tests quick while preserving the attempt budget
var fastRetry = retry.Policy{Attempts: 3, Schedule: []time.Duration{time.Millisecond}}

//
// fakes
//

type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (fakeDB) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (fakeDB) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (fakeDB) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error   { return fn(fakeDB{}) }

type fakeRepo struct {
	// courses the fake store knows, keyed by ID
	byID map[string]domain.Course

	// canned similarity rows, already sorted by descending score
	similar []domain.SimilarityResult

	searchCalls int
	byIDsCalls  int
	lastIDs     []string

	searchErr error
	byIDsErr  error
}

func (f *fakeRepo) SearchSimilar(
	_ context.Context, _ []float32, threshold float64, limit int, _ []domain.Filter,
) ([]domain.SimilarityResult, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []domain.SimilarityResult
	for _, r := range f.similar {
		if r.Score >= threshold && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ByIDs(_ context.Context, ids []string) ([]domain.Course, error) {
	f.byIDsCalls++
	f.lastIDs = append([]string(nil), ids...)
	if f.byIDsErr != nil {
		return nil, f.byIDsErr
	}
	var out []domain.Course
	for _, id := range ids {
		if c, ok := f.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) Model() string  { return "fake" }
func (f *fakeEmbedder) Dimension() int { return len(f.vec) }

func course(id string) domain.Course {
	return domain.Course{ID: id, Name: "course " + id, Provider: "prov", CourseType: domain.TypeCourse}
}

func newTestService(r *fakeRepo, e *fakeEmbedder) *Svc {
	return New(fakeDB{}, repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return r }), Options{
		Embedder:    e,
		QueryCache:  cache.New[any](128, time.Minute),
		DetailCache: cache.New[any](128, time.Minute),
		Retry:       fastRetry,
	})
}

//
// constructor guards
//

func TestNewPanicsWithoutCollaborators(t *testing.T) {
	t.Parallel()

	binder := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return &fakeRepo{} })
	testkit.MustPanic(t, func() { New(nil, binder, Options{Embedder: &fakeEmbedder{}}) })
	testkit.MustPanic(t, func() { New(fakeDB{}, nil, Options{Embedder: &fakeEmbedder{}}) })
	testkit.MustPanic(t, func() { New(fakeDB{}, binder, Options{}) })
}

//
// search
//

func TestSearchReturnsRankedResults(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{similar: []domain.SimilarityResult{
		{Course: course("a"), Score: 0.9},
		{Course: course("b"), Score: 0.6},
		{Course: course("c"), Score: 0.4},
		{Course: course("d"), Score: 0.2}, // below threshold
		{Course: course("e"), Score: 0.1}, // below threshold
	}}
	e := &fakeEmbedder{vec: []float32{0.1, 0.2}}
	s := newTestService(r, e)

	out, err := s.Search(context.Background(), domain.SearchInput{Query: "python backend", Limit: 5})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if out.Count != 3 {
		t.Fatalf("count = %d, want 3", out.Count)
	}
	for i := 1; i < len(out.Results); i++ {
		if out.Results[i].Score > out.Results[i-1].Score {
			t.Fatalf("results not sorted descending: %v", out.Results)
		}
	}
	if out.Cached {
		t.Fatal("first call reported cached")
	}
}

func TestSearchSecondCallHitsCache(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{similar: []domain.SimilarityResult{{Course: course("a"), Score: 0.9}}}
	e := &fakeEmbedder{vec: []float32{1}}
	s := newTestService(r, e)

	in := domain.SearchInput{Query: "Go  Microservices"}
	if _, err := s.Search(context.Background(), in); err != nil {
		t.Fatalf("err = %v", err)
	}

	// equivalent query differing only in case and spacing shares the key
	out, err := s.Search(context.Background(), domain.SearchInput{Query: "go microservices"})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !out.Cached {
		t.Fatal("second call missed cache")
	}
	if e.calls != 1 {
		t.Fatalf("embedder calls = %d, want 1", e.calls)
	}
	if r.searchCalls != 1 {
		t.Fatalf("store calls = %d, want 1", r.searchCalls)
	}
}

func TestSearchFilterChangesCacheKey(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{similar: []domain.SimilarityResult{{Course: course("a"), Score: 0.9}}}
	e := &fakeEmbedder{vec: []float32{1}}
	s := newTestService(r, e)

	if _, err := s.Search(context.Background(), domain.SearchInput{Query: "go"}); err != nil {
		t.Fatalf("err = %v", err)
	}
	out, err := s.Search(context.Background(), domain.SearchInput{Query: "go", Provider: "udemy"})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if out.Cached {
		t.Fatal("filtered query reused unfiltered cache entry")
	}
	if r.searchCalls != 2 {
		t.Fatalf("store calls = %d, want 2", r.searchCalls)
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{} // nothing above threshold
	e := &fakeEmbedder{vec: []float32{1}}
	s := newTestService(r, e)

	out, err := s.Search(context.Background(), domain.SearchInput{Query: "obscure topic"})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if out.Count != 0 || len(out.Results) != 0 {
		t.Fatalf("out = %+v", out)
	}
}

func TestSearchBlankQueryRejectedBeforeIO(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{}
	e := &fakeEmbedder{vec: []float32{1}}
	s := newTestService(r, e)

	_, err := s.Search(context.Background(), domain.SearchInput{Query: "   "})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if e.calls != 0 || r.searchCalls != 0 {
		t.Fatal("blank query reached I/O")
	}
}

func TestSearchRetryExhaustionSurfacesEmbeddingError(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{}
	e := &fakeEmbedder{err: stderrs.New("provider down")}
	s := newTestService(r, e)

	_, err := s.Search(context.Background(), domain.SearchInput{Query: "go"})
	if !perr.IsCode(err, perr.ErrorCodeEmbedding) {
		t.Fatalf("err = %v, want embedding error", err)
	}

	// the provider is called exactly once per configured attempt
	if e.calls != fastRetry.Attempts {
		t.Fatalf("embedder calls = %d, want %d", e.calls, fastRetry.Attempts)
	}

	var ex *retry.ExhaustedError
	if !stderrs.As(err, &ex) || ex.Attempts != fastRetry.Attempts {
		t.Fatalf("exhausted detail missing from %v", err)
	}
	if r.searchCalls != 0 {
		t.Fatal("store reached despite embedding failure")
	}
}

func TestSearchStoreFaultSurfacesQueryError(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{searchErr: stderrs.New("connection refused")}
	e := &fakeEmbedder{vec: []float32{1}}
	s := newTestService(r, e)

	_, err := s.Search(context.Background(), domain.SearchInput{Query: "go"})
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("err = %v, want db error", err)
	}
}

func TestSearchResultsAreCopies(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{similar: []domain.SimilarityResult{{Course: course("a"), Score: 0.9}}}
	e := &fakeEmbedder{vec: []float32{1}}
	s := newTestService(r, e)

	first, err := s.Search(context.Background(), domain.SearchInput{Query: "go"})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	first.Results[0].Name = "mutated"

	second, _ := s.Search(context.Background(), domain.SearchInput{Query: "go"})
	if second.Results[0].Name == "mutated" {
		t.Fatal("cached entry aliased by caller mutation")
	}
}

//
// batch resolution
//

func TestResolvePreservesInputOrder(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{byID: map[string]domain.Course{
		"b": course("b"),
		"c": course("c"),
	}}
	s := newTestService(r, &fakeEmbedder{vec: []float32{1}})

	out, err := s.ResolveByIDs(context.Background(), domain.BatchInput{IDs: []string{"b", "a", "c"}})
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	if len(out.Courses) != 2 || out.Courses[0].ID != "b" || out.Courses[1].ID != "c" {
		t.Fatalf("courses = %+v", out.Courses)
	}
	if len(out.NotFoundIDs) != 1 || out.NotFoundIDs[0] != "a" {
		t.Fatalf("not_found_ids = %v", out.NotFoundIDs)
	}
	if out.AllNotFound {
		t.Fatal("all_not_found set despite two resolved")
	}
	if out.FallbackURL != "" {
		t.Fatalf("fallback_url = %q, want empty", out.FallbackURL)
	}
	if out.TotalFound != 2 || out.RequestedCount != 3 || out.ProcessedCount != 3 || out.SkippedCount != 0 {
		t.Fatalf("counts = %+v", out)
	}
}

func TestResolveAllNotFoundGetsFallback(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{}
	s := newTestService(r, &fakeEmbedder{vec: []float32{1}})

	out, err := s.ResolveByIDs(context.Background(), domain.BatchInput{IDs: []string{"x", "y"}})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(out.Courses) != 0 {
		t.Fatalf("courses = %+v", out.Courses)
	}
	if !out.AllNotFound {
		t.Fatal("all_not_found not set")
	}
	if out.FallbackURL == "" {
		t.Fatal("fallback_url empty")
	}
	if len(out.NotFoundIDs) != 2 {
		t.Fatalf("not_found_ids = %v", out.NotFoundIDs)
	}
}

func TestResolveCapSkipsTail(t *testing.T) {
	t.Parallel()

	byID := map[string]domain.Course{}
	var ids []string
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		byID[id] = course(id)
		ids = append(ids, id)
	}
	r := &fakeRepo{byID: byID}
	s := newTestService(r, &fakeEmbedder{vec: []float32{1}})

	out, err := s.ResolveByIDs(context.Background(), domain.BatchInput{IDs: ids, MaxCourses: 3})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if out.ProcessedCount != 3 || out.SkippedCount != 7 {
		t.Fatalf("processed %d skipped %d", out.ProcessedCount, out.SkippedCount)
	}
	if out.RequestedCount != out.ProcessedCount+out.SkippedCount {
		t.Fatalf("count invariant broken: %+v", out)
	}
	if len(out.Courses) != 3 {
		t.Fatalf("courses = %d, want 3", len(out.Courses))
	}
	// only the capped head reaches the store
	if len(r.lastIDs) != 3 {
		t.Fatalf("store saw %d ids, want 3", len(r.lastIDs))
	}
}

func TestResolveHitRateRisesOnSecondCall(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{byID: map[string]domain.Course{
		"a": course("a"),
		"b": course("b"),
	}}
	s := newTestService(r, &fakeEmbedder{vec: []float32{1}})

	in := domain.BatchInput{IDs: []string{"a", "b"}}
	first, err := s.ResolveByIDs(context.Background(), in)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if first.CacheHitRate != 0 {
		t.Fatalf("first hit rate = %v, want 0", first.CacheHitRate)
	}

	second, err := s.ResolveByIDs(context.Background(), in)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if second.CacheHitRate <= first.CacheHitRate {
		t.Fatalf("hit rate did not rise: %v -> %v", first.CacheHitRate, second.CacheHitRate)
	}
	if second.CacheHitRate != 1 {
		t.Fatalf("second hit rate = %v, want 1", second.CacheHitRate)
	}
	if r.byIDsCalls != 1 {
		t.Fatalf("store calls = %d, want 1", r.byIDsCalls)
	}
}

func TestResolveRenderModesCacheSeparately(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{byID: map[string]domain.Course{
		"a": {ID: "a", Name: "A", Description: "alpha beta gamma delta epsilon"},
	}}
	s := newTestService(r, &fakeEmbedder{vec: []float32{1}})

	full, err := s.ResolveByIDs(context.Background(), domain.BatchInput{IDs: []string{"a"}})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	trunc, err := s.ResolveByIDs(context.Background(), domain.BatchInput{
		IDs: []string{"a"}, RenderMode: domain.RenderTruncated, MaxLength: 12,
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	if full.Courses[0].Description != "alpha beta gamma delta epsilon" {
		t.Fatalf("full description = %q", full.Courses[0].Description)
	}
	if trunc.Courses[0].Description != "alpha beta..." {
		t.Fatalf("truncated description = %q", trunc.Courses[0].Description)
	}
	// different render variants must not share a cache slot
	if r.byIDsCalls != 2 {
		t.Fatalf("store calls = %d, want 2", r.byIDsCalls)
	}
}

func TestResolveStoreFaultFailsBatch(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{byIDsErr: stderrs.New("connection reset")}
	s := newTestService(r, &fakeEmbedder{vec: []float32{1}})

	_, err := s.ResolveByIDs(context.Background(), domain.BatchInput{IDs: []string{"a"}})
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("err = %v, want db error", err)
	}
}

func TestResolveTimeTrackingToggle(t *testing.T) {
	t.Parallel()

	r := &fakeRepo{byID: map[string]domain.Course{"a": course("a")}}
	s := newTestService(r, &fakeEmbedder{vec: []float32{1}})

	off, err := s.ResolveByIDs(context.Background(), domain.BatchInput{IDs: []string{"a"}})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if off.TimeTracking != nil {
		t.Fatal("time tracking present without toggle")
	}

	on, err := s.ResolveByIDs(context.Background(), domain.BatchInput{IDs: []string{"a"}, TrackTime: true})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if on.TimeTracking == nil || len(on.TimeTracking.Phases) == 0 {
		t.Fatalf("time tracking = %+v", on.TimeTracking)
	}
}
