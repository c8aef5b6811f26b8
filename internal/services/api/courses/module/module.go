// Package module wires course retrieval into the API using modkit
package module

import (
	"net/http"
	"time"

	"coursehub/internal/adapters/embedding"
	modkit "coursehub/internal/modkit"
	"coursehub/internal/modkit/httpkit"
	"coursehub/internal/platform/retry"
	str "coursehub/internal/platform/strings"
	courseshttp "coursehub/internal/services/api/courses/http"
	coursesrepo "coursehub/internal/services/api/courses/repo"
	coursessvc "coursehub/internal/services/api/courses/service"
)

// Module implements the courses module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws []func(http.Handler) http.Handler

	svc coursessvc.Service
}

// New constructs the courses module
// config lives under the COURSES_ prefix of the module's Conf view
func New(deps modkit.Deps, emb embedding.Provider, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("courses"), modkit.WithPrefix("/courses")}, opts...)...)

	cfg := deps.Cfg.Prefix("COURSES_")
	pol := retry.Policy{
		Attempts: cfg.MayInt("RETRY_ATTEMPTS", 3),
		Schedule: cfg.MayDurationList("RETRY_SCHEDULE", retry.DefaultPolicy().Schedule),
	}

	repo := coursesrepo.NewPG()
	svc := coursessvc.New(deps.PG, repo, coursessvc.Options{
		Embedder:    emb,
		Events:      deps.Events,
		QueryCache:  deps.QueryCache,
		DetailCache: deps.DetailCache,
		Retry:       pol,
		MinPhase:    time.Duration(cfg.MayInt("MIN_PHASE_MS", 1)) * time.Millisecond,
		FallbackURL: cfg.MayString("FALLBACK_URL", coursessvc.DefaultFallbackURL),
	})

	return &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		courseshttp.Register(rr, m.svc)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }
