package httptransport

import (
	"encoding/json"
	"net/http"

	"grindbook/internal/tracker"

	"github.com/go-chi/chi/v5"
)

type StakeHandlers struct {
	coord *tracker.Coordinator
}

func NewStakeHandlers(coord *tracker.Coordinator) *StakeHandlers {
	return &StakeHandlers{coord: coord}
}

type addStakeRequest struct {
	SessionID      string  `json:"session_id"`
	StakerUserID   string  `json:"staker_user_id,omitempty"`
	ManualStakerID string  `json:"manual_staker_id,omitempty"`
	Percentage     float64 `json:"percentage"`
	Markup         float64 `json:"markup"`
}

func (h *StakeHandlers) Add() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req addStakeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		metricStakeCreateTotal.Add(1)
		view, err := h.coord.AddStake(r.Context(), playerID, tracker.AddStakeParams{
			SessionID:      req.SessionID,
			StakerUserID:   req.StakerUserID,
			ManualStakerID: req.ManualStakerID,
			Percentage:     req.Percentage,
			Markup:         req.Markup,
		})
		if err != nil {
			metricStakeCreateErrors.Add(1)
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(view)
	}
}

func (h *StakeHandlers) ListForSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		views, err := h.coord.ListSessionStakes(r.Context(), playerID, chi.URLParam(r, "session_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": views})
	}
}

func (h *StakeHandlers) Accept() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		view, err := h.coord.AcceptStake(r.Context(), playerID, chi.URLParam(r, "stake_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

type updateTermsRequest struct {
	Percentage float64 `json:"percentage"`
	Markup     float64 `json:"markup"`
}

func (h *StakeHandlers) UpdateTerms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req updateTermsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		view, err := h.coord.UpdateStakeTerms(r.Context(), playerID, chi.URLParam(r, "stake_id"), req.Percentage, req.Markup)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

func (h *StakeHandlers) Settle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		metricStakeSettleTotal.Add(1)
		view, err := h.coord.MarkStakeSettled(r.Context(), playerID, chi.URLParam(r, "stake_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

func (h *StakeHandlers) Reopen() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		metricStakeReopenTotal.Add(1)
		view, err := h.coord.ReopenStake(r.Context(), playerID, chi.URLParam(r, "stake_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

type createManualStakerRequest struct {
	DisplayName string `json:"display_name"`
	Contact     string `json:"contact,omitempty"`
}

func (h *StakeHandlers) CreateManualStaker() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		var req createManualStakerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		m, err := h.coord.CreateManualStaker(r.Context(), playerID, req.DisplayName, req.Contact)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(m)
	}
}

func (h *StakeHandlers) ListManualStakers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := PlayerIDFromContext(r.Context())
		items, err := h.coord.ListManualStakers(r.Context(), playerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}
}
