// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/golazo/internal/domain/dedupe"
	"github.com/okian/golazo/internal/domain/types"
)

// IdempotencyHeader carries the client-chosen key for create requests.
const IdempotencyHeader = "Idempotency-Key"

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper
	PlayerDependencies
	MatchDependencies
	RankingDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	playersHandler  *PlayersHandler
	matchesHandler  *MatchesHandler
	rankingsHandler *RankingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		playersHandler:  NewPlayersHandler(deps, deps),
		matchesHandler:  NewMatchesHandler(deps, deps),
		rankingsHandler: NewRankingsHandler(deps),
	}
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(router *mux.Router) {
	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	router.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	router.HandleFunc("/players", MetricsMiddleware(s.playersHandler.HandleList, "players")).Methods(http.MethodGet)
	router.HandleFunc("/players", MetricsMiddleware(s.playersHandler.HandleCreate, "players")).Methods(http.MethodPost)

	router.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandleList, "matches")).Methods(http.MethodGet)
	router.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandleCreate, "matches")).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}", MetricsMiddleware(s.matchesHandler.HandleUpdate, "match")).Methods(http.MethodPut)
	router.HandleFunc("/matches/{id}", MetricsMiddleware(s.matchesHandler.HandleDelete, "match")).Methods(http.MethodDelete)

	router.HandleFunc("/rankings/changes", MetricsMiddleware(s.rankingsHandler.HandleChanges, "ranking_changes")).Methods(http.MethodGet)
	router.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleList, "rankings")).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, types.ErrorResponse{Code: types.CodeNotFound, Message: "route not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Code: types.CodeBadRequest, Message: "method not allowed"})
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	s.Register(router)
	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// claimIdempotencyKey records the request's Idempotency-Key under scope.
// It returns a release func that forgets the key when the write failed.
func claimIdempotencyKey(r *http.Request, deduper dedupe.Deduper, scope string) (release func(), err error) {
	key := r.Header.Get(IdempotencyHeader)
	if key == "" {
		return func() {}, nil
	}
	scoped := scope + ":" + key
	if deduper.SeenAndRecord(r.Context(), scoped) {
		return nil, fmt.Errorf("%w: %s %q", ErrDuplicate, IdempotencyHeader, key)
	}
	return func() { deduper.Unrecord(r.Context(), scoped) }, nil
}
