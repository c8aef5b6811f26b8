// @title         Coursehub API
// @version       0.1.0
// @description   Course similarity search and batch resolution endpoints

package main

import (
	"context"
	"time"

	"coursehub/internal/platform/cache"
	"coursehub/internal/platform/config"
	"coursehub/internal/platform/logger"
	"coursehub/internal/platform/monitor"
	phttp "coursehub/internal/platform/net/http"
	"coursehub/internal/platform/store"

	"coursehub/internal/adapters/embedding"
	"coursehub/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*
	aiCfg := root.Prefix("SERVICE_OPENAI_")     // embedding provider credentials

	// bring up logging early
	l := logger.Get()

	chEnabled := chCfg.MayBool("ENABLED", false)

	// open the platform store (postgres + optional clickhouse)
	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "coursehub-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MinConns:    int32(pgCfg.MayInt("MIN_CONNS", 1)),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 10)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
			CH: store.CHConfig{
				Enabled:   chEnabled,
				Addr:      chCfg.MayString("ADDR", "localhost:9000"),
				Database:  chCfg.MayString("DATABASE", "default"),
				Username:  chCfg.MayString("USERNAME", "default"),
				Password:  chCfg.MayString("PASSWORD", ""),
				ClientTag: "api",
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// monitoring sink; degrades to log-only when clickhouse is off
	var events monitor.Sink
	if chEnabled && st.CH != nil {
		events = monitor.NewCH(st.CH, *logger.Named("monitor"))
	} else {
		events = monitor.NewLog(*logger.Named("monitor"))
	}

	// embedding provider
	emb, err := embedding.NewOpenAI(embedding.Options{
		APIKey:    aiCfg.MustString("API_KEY"),
		BaseURL:   aiCfg.MayString("BASE_URL", ""),
		Model:     aiCfg.MayString("EMBED_MODEL", ""),
		Dimension: aiCfg.MayInt("EMBED_DIM", 0),
	})
	if err != nil {
		l.Panic().Err(err).Msg("embedding provider init failed")
	}

	// the two cache tiers, sized and aged from config
	crsCfg := root.Prefix("COURSES_")
	queryCache := cache.New[any](
		crsCfg.MayInt("QUERY_CACHE_MAX", 1024),
		crsCfg.MayDuration("QUERY_CACHE_TTL", 5*time.Minute),
	)
	detailCache := cache.New[any](
		crsCfg.MayInt("DETAIL_CACHE_MAX", 8192),
		crsCfg.MayDuration("DETAIL_CACHE_TTL", 30*time.Minute),
	)

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:        root,
			Store:         st,
			Logger:        l,
			Embedder:      emb,
			Events:        events,
			QueryCache:    queryCache,
			DetailCache:   detailCache,
			EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
