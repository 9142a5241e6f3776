package main

import (
	"context"
	"net/http"
	"time"

	"grindbook/internal/config"
	"grindbook/internal/identity"
	"grindbook/internal/logging"
	"grindbook/internal/store"
	"grindbook/internal/tracker"
	httptransport "grindbook/internal/transport/http"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	var resolver identity.Resolver
	if cfg.IdentityBaseURL != "" {
		resolver = identity.NewHTTPResolver(cfg.IdentityBaseURL, time.Duration(cfg.IdentityTimeoutMS)*time.Millisecond)
	}

	var catalog *config.Catalog
	if cfg.CatalogPath != "" {
		catalog, err = config.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("load catalog failed")
		}
		log.Info().Int("games", len(catalog.Games)).Msg("catalog loaded")
	} else if cfg.CatalogEnforced {
		log.Fatal().Msg("CATALOG_ENFORCED requires CATALOG_PATH")
	}

	coord := tracker.New(st, resolver)
	if cfg.AutoPauseAfterMins > 0 {
		coord.StartJanitor(context.Background(),
			time.Duration(cfg.JanitorIntervalSecs)*time.Second,
			time.Duration(cfg.AutoPauseAfterMins)*time.Minute)
	}

	r := httptransport.NewRouter(st, cfg, coord, catalog)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
