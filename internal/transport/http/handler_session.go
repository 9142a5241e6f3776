package httptransport

import (
	"encoding/json"
	"net/http"

	"grindbook/internal/config"
	"grindbook/internal/session"
	"grindbook/internal/tracker"

	"github.com/go-chi/chi/v5"
)

type SessionHandlers struct {
	coord           *tracker.Coordinator
	catalog         *config.Catalog
	catalogEnforced bool
}

func NewSessionHandlers(coord *tracker.Coordinator, catalog *config.Catalog, enforced bool) *SessionHandlers {
	return &SessionHandlers{coord: coord, catalog: catalog, catalogEnforced: enforced}
}

type createSessionRequest struct {
	GameType   string `json:"game_type"`
	GameName   string `json:"game_name"`
	Stakes     string `json:"stakes"`
	BuyInCents int64  `json:"buy_in_cents"`
}

func (h *SessionHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req createSessionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if h.catalogEnforced && !h.catalog.HasGame(req.GameType, req.GameName) {
			WriteHTTPError(w, http.StatusBadRequest, "unknown_game")
			return
		}
		metricSessionCreateTotal.Add(1)
		view, err := h.coord.CreateSession(r.Context(), playerID, tracker.CreateSessionParams{
			GameType:   session.GameType(req.GameType),
			GameName:   req.GameName,
			Stakes:     req.Stakes,
			BuyInCents: req.BuyInCents,
		})
		if err != nil {
			metricSessionCreateErrors.Add(1)
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(view)
	}
}

func (h *SessionHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		view, err := h.coord.Get(r.Context(), playerID, chi.URLParam(r, "session_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

// transition serves the bodyless lifecycle posts: start, pause, resume, end.
func (h *SessionHandlers) transition(op func(*http.Request, string, string) (*tracker.SessionView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		view, err := op(r, playerID, chi.URLParam(r, "session_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

func (h *SessionHandlers) Start() http.HandlerFunc {
	return h.transition(func(r *http.Request, playerID, id string) (*tracker.SessionView, error) {
		return h.coord.Start(r.Context(), playerID, id)
	})
}

func (h *SessionHandlers) Pause() http.HandlerFunc {
	return h.transition(func(r *http.Request, playerID, id string) (*tracker.SessionView, error) {
		return h.coord.Pause(r.Context(), playerID, id)
	})
}

func (h *SessionHandlers) Resume() http.HandlerFunc {
	return h.transition(func(r *http.Request, playerID, id string) (*tracker.SessionView, error) {
		return h.coord.Resume(r.Context(), playerID, id)
	})
}

func (h *SessionHandlers) BeginEnd() http.HandlerFunc {
	return h.transition(func(r *http.Request, playerID, id string) (*tracker.SessionView, error) {
		return h.coord.BeginEnd(r.Context(), playerID, id)
	})
}

type amountRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Note        string `json:"note,omitempty"`
}

func (h *SessionHandlers) Finalize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req amountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		metricFinalizeTotal.Add(1)
		view, err := h.coord.Finalize(r.Context(), playerID, chi.URLParam(r, "session_id"), req.AmountCents)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

func (h *SessionHandlers) ListChipUpdates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		updates, err := h.coord.ListChipUpdates(r.Context(), playerID, chi.URLParam(r, "session_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": updates})
	}
}

func (h *SessionHandlers) AppendChipUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req amountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		metricChipUpdateTotal.Add(1)
		view, err := h.coord.AppendChipUpdate(r.Context(), playerID, chi.URLParam(r, "session_id"), req.AmountCents, req.Note)
		if err != nil {
			metricChipUpdateErrors.Add(1)
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

type adjustRequest struct {
	DeltaCents int64  `json:"delta_cents"`
	Note       string `json:"note,omitempty"`
}

func (h *SessionHandlers) AdjustChipStack() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req adjustRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		metricChipUpdateTotal.Add(1)
		view, err := h.coord.AdjustChipStack(r.Context(), playerID, chi.URLParam(r, "session_id"), req.DeltaCents, req.Note)
		if err != nil {
			metricChipUpdateErrors.Add(1)
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

func (h *SessionHandlers) AppendRebuy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req amountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		view, err := h.coord.AppendRebuy(r.Context(), playerID, chi.URLParam(r, "session_id"), req.AmountCents)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

func (h *SessionHandlers) EditBuyIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req amountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		view, err := h.coord.EditBuyIn(r.Context(), playerID, chi.URLParam(r, "session_id"), req.AmountCents)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

func (h *SessionHandlers) EditCashout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req amountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		view, err := h.coord.EditCashout(r.Context(), playerID, chi.URLParam(r, "session_id"), req.AmountCents)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}
