package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/golazo/internal/domain/dedupe"
	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/types"
)

// MatchDependencies defines the history operations used by MatchesHandler.
type MatchDependencies interface {
	Matches(ctx context.Context) ([]model.Match, error)
	CreateMatch(ctx context.Context, params model.MatchParameters) (model.Match, error)
	UpdateMatch(ctx context.Context, id string, params model.MatchParameters) (model.Match, error)
	DeleteMatch(ctx context.Context, id string) error
}

// MatchesHandler handles match history requests.
type MatchesHandler struct {
	deps    MatchDependencies
	deduper dedupe.Deduper
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies, deduper dedupe.Deduper) *MatchesHandler {
	return &MatchesHandler{deps: deps, deduper: deduper}
}

// HandleList handles GET /matches.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	matches, err := h.deps.Matches(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromMatches(matches))
}

// HandleCreate handles POST /matches.
func (h *MatchesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	release, err := claimIdempotencyKey(r, h.deduper, "matches")
	if err != nil {
		writeError(w, err)
		return
	}
	match, err := h.deps.CreateMatch(r.Context(), req.Params())
	if err != nil {
		release()
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.FromMatch(match))
}

// HandleUpdate handles PUT /matches/{id}.
func (h *MatchesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	match, err := h.deps.UpdateMatch(r.Context(), mux.Vars(r)["id"], req.Params())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromMatch(match))
}

// HandleDelete handles DELETE /matches/{id}.
func (h *MatchesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteMatch(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.StatusResponse{Status: "deleted"})
}
