// Package api provides the HTTP API for the application
package api

import (
	"coursehub/internal/adapters/embedding"
	"coursehub/internal/platform/cache"
	"coursehub/internal/platform/config"
	"coursehub/internal/platform/logger"
	"coursehub/internal/platform/monitor"
	phttp "coursehub/internal/platform/net/http"
	"coursehub/internal/platform/store"

	"coursehub/internal/modkit"
	"coursehub/internal/modkit/httpkit"

	coursesmod "coursehub/internal/services/api/courses/module"
	metamod "coursehub/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Config   config.Conf
	Store    *store.Store
	Logger   *logger.Logger
	Embedder embedding.Provider
	Events   monitor.Sink

	// Caches are built once in main and shared by every module
	QueryCache  *cache.Sharded[any]
	DetailCache *cache.Sharded[any]

	EnableSwagger bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg:         opt.Config,
		PG:          opt.Store.PG,
		Events:      opt.Events,
		QueryCache:  opt.QueryCache,
		DetailCache: opt.DetailCache,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if deps.Events == nil {
		deps.Events = monitor.Nop()
	}

	mods := []modkit.Module{
		metamod.New(deps, opt.Store.CH),
		coursesmod.New(deps, opt.Embedder),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		phttp.MountSwagger(r, opt.EnableSwagger)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
