package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"grindbook/internal/app/history"
)

type HistoryHandlers struct {
	svc *history.Service
}

func NewHistoryHandlers(svc *history.Service) *HistoryHandlers {
	return &HistoryHandlers{svc: svc}
}

func (h *HistoryHandlers) ListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		limit, offset := ParsePagination(r)
		q := history.Query{
			GameType: r.URL.Query().Get("game_type"),
			Status:   r.URL.Query().Get("status"),
		}
		var ok bool
		if q.From, ok = parseTimeParam(w, r, "from"); !ok {
			return
		}
		if q.To, ok = parseTimeParam(w, r, "to"); !ok {
			return
		}
		resp, err := h.svc.ListSessions(r.Context(), playerID, q, limit, offset)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *HistoryHandlers) PlayerStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		resp, err := h.svc.PlayerStats(r.Context(), playerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *HistoryHandlers) IncomingStakes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		limit, offset := ParsePagination(r)
		resp, err := h.svc.ListIncomingStakes(r.Context(), playerID, limit, offset)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func parseTimeParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_"+name)
		return nil, false
	}
	return &ts, true
}
