package httptransport

import (
	"encoding/json"
	"net/http"

	"grindbook/internal/config"
	"grindbook/internal/store"
)

type SystemHandlers struct {
	store   *store.Store
	catalog *config.Catalog
}

func NewSystemHandlers(st *store.Store, catalog *config.Catalog) *SystemHandlers {
	return &SystemHandlers{store: st, catalog: catalog}
}

func (h *SystemHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store != nil {
			if err := h.store.Ping(r.Context()); err != nil {
				WriteHTTPError(w, http.StatusServiceUnavailable, "db_unavailable")
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func (h *SystemHandlers) Catalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.catalog == nil {
			_ = json.NewEncoder(w).Encode(config.Catalog{Games: []config.CatalogGame{}})
			return
		}
		_ = json.NewEncoder(w).Encode(h.catalog)
	}
}
