// Package http provides http transport for course retrieval
package http

import (
	stdhttp "net/http"

	"coursehub/internal/modkit/httpkit"
	"coursehub/internal/services/api/courses/domain"
	svc "coursehub/internal/services/api/courses/service"
)

// Register mounts course endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// ranked similarity search
	httpkit.PostJSON[domain.SearchInput](r, "/search", h.search)

	// order preserving batch resolution
	httpkit.PostJSON[domain.BatchInput](r, "/batch", h.batch)
}

type handlers struct{ svc svc.Service }

// @Summary Similarity search over courses
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body domain.SearchInput true "Query"
// @Success 200 {object} domain.SearchOutput "ok"
// @Router /courses/search [post]
func (h *handlers) search(r *stdhttp.Request, in domain.SearchInput) (any, error) {
	return h.svc.Search(r.Context(), in)
}

// @Summary Resolve courses by ID preserving order
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body domain.BatchInput true "IDs"
// @Success 200 {object} domain.BatchOutput "ok"
// @Router /courses/batch [post]
func (h *handlers) batch(r *stdhttp.Request, in domain.BatchInput) (any, error) {
	return h.svc.ResolveByIDs(r.Context(), in)
}
