package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"grindbook/internal/app/history"
	"grindbook/internal/config"
	"grindbook/internal/store"
	"grindbook/internal/tracker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(st *store.Store, cfg config.ServerConfig, coord *tracker.Coordinator, catalog *config.Catalog) *chi.Mux {
	histSvc := history.NewService(st)

	sessionHandlers := NewSessionHandlers(coord, catalog, cfg.CatalogEnforced)
	stakeHandlers := NewStakeHandlers(coord)
	historyHandlers := NewHistoryHandlers(histSvc)
	systemHandlers := NewSystemHandlers(st, catalog)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", systemHandlers.Health())
	r.With(APILogMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/catalog", systemHandlers.Catalog())

		r.Group(func(r chi.Router) {
			r.Use(PlayerAuthMiddleware())

			r.Post("/sessions", sessionHandlers.Create())
			r.Get("/sessions", historyHandlers.ListSessions())
			r.Get("/sessions/{session_id}", sessionHandlers.Get())
			r.Post("/sessions/{session_id}/start", sessionHandlers.Start())
			r.Post("/sessions/{session_id}/pause", sessionHandlers.Pause())
			r.Post("/sessions/{session_id}/resume", sessionHandlers.Resume())
			r.Post("/sessions/{session_id}/end", sessionHandlers.BeginEnd())
			r.Post("/sessions/{session_id}/finalize", sessionHandlers.Finalize())
			r.Get("/sessions/{session_id}/chip-updates", sessionHandlers.ListChipUpdates())
			r.Post("/sessions/{session_id}/chip-updates", sessionHandlers.AppendChipUpdate())
			r.Post("/sessions/{session_id}/chip-updates/adjust", sessionHandlers.AdjustChipStack())
			r.Post("/sessions/{session_id}/rebuys", sessionHandlers.AppendRebuy())
			r.Patch("/sessions/{session_id}/buy-in", sessionHandlers.EditBuyIn())
			r.Patch("/sessions/{session_id}/cashout", sessionHandlers.EditCashout())
			r.Get("/sessions/{session_id}/stakes", stakeHandlers.ListForSession())

			r.Post("/stakes", stakeHandlers.Add())
			r.Get("/stakes/incoming", historyHandlers.IncomingStakes())
			r.Post("/stakes/{stake_id}/accept", stakeHandlers.Accept())
			r.Patch("/stakes/{stake_id}", stakeHandlers.UpdateTerms())
			r.Post("/stakes/{stake_id}/settle", stakeHandlers.Settle())
			r.Post("/stakes/{stake_id}/reopen", stakeHandlers.Reopen())

			r.Post("/manual-stakers", stakeHandlers.CreateManualStaker())
			r.Get("/manual-stakers", stakeHandlers.ListManualStakers())

			r.Get("/players/me/stats", historyHandlers.PlayerStats())
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
