// Package modkit provides module wiring and core deps
package modkit

import (
	"net/http"

	"coursehub/internal/modkit/httpkit"
	"coursehub/internal/modkit/repokit"
	"coursehub/internal/platform/cache"
	"coursehub/internal/platform/config"
	"coursehub/internal/platform/logger"
	"coursehub/internal/platform/monitor"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner

	// Events is the monitoring sink; never nil (use monitor.Nop in tests)
	Events monitor.Sink

	// Caches are constructed once in main and shared across modules
	QueryCache  *cache.Sharded[any]
	DetailCache *cache.Sharded[any]
}

// Router re-exports the httpkit router seam for module signatures
type Router = httpkit.Router

// Module is the contract every mounted module satisfies
type Module interface {
	Name() string
	Prefix() string
	MountRoutes(r Router)
}

// Built is a plain struct with the fields modules care about
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
}

// Option mutates build configuration for a module
type Option func(*Built)

// WithName sets a module name used in logs
func WithName(name string) Option {
	return func(b *Built) { b.Name = name }
}

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option {
	return func(b *Built) { b.Prefix = prefix }
}

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// Build applies Option funcs and returns the resolved module config
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}
