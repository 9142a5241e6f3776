package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"grindbook/internal/app/history"
	"grindbook/internal/logging"
	"grindbook/internal/session"
	"grindbook/internal/staking"
	"grindbook/internal/store"
	"grindbook/internal/tracker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/google/uuid"
)

type playerContextKey struct{}

// PlayerIDFromContext returns the authenticated player set by
// PlayerAuthMiddleware.
func PlayerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(playerContextKey{}).(string)
	return id, ok
}

func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

// PlayerAuthMiddleware trusts the X-Player-ID header set by the auth gateway
// in front of this service. The value must be a UUID; anything else is a 401.
func PlayerAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-Player-ID")
			if raw == "" {
				WriteHTTPError(w, http.StatusUnauthorized, "missing_player")
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				WriteHTTPError(w, http.StatusUnauthorized, "invalid_player")
				return
			}
			ctx := context.WithValue(r.Context(), playerContextKey{}, id.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

// writeDomainError maps domain sentinels onto HTTP statuses: 400 for
// validation, 403/404 for access, 409 for state conflicts, 500 otherwise.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, tracker.ErrForbidden):
		WriteHTTPError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, tracker.ErrDuplicateStake):
		WriteHTTPError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, staking.ErrInvalidTransition),
		errors.Is(err, staking.ErrAlreadySettled):
		WriteHTTPError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidAmount),
		errors.Is(err, session.ErrUninitialized),
		errors.Is(err, session.ErrDuplicateEvent),
		errors.Is(err, staking.ErrInvalidPercentage),
		errors.Is(err, staking.ErrInvalidMarkup),
		errors.Is(err, staking.ErrMissingStaker),
		errors.Is(err, tracker.ErrInvalidRequest),
		errors.Is(err, history.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, err.Error())
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func ParsePagination(r *http.Request) (int, int) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
