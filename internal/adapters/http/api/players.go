package api

import (
	"context"
	"net/http"

	"github.com/okian/golazo/internal/domain/dedupe"
	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/types"
)

// PlayerDependencies defines the roster operations used by PlayersHandler.
type PlayerDependencies interface {
	Players(ctx context.Context) ([]model.Player, error)
	CreatePlayer(ctx context.Context, name string) (model.Player, error)
}

// PlayersHandler handles roster requests.
type PlayersHandler struct {
	deps    PlayerDependencies
	deduper dedupe.Deduper
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies, deduper dedupe.Deduper) *PlayersHandler {
	return &PlayersHandler{deps: deps, deduper: deduper}
}

// HandleList handles GET /players.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	players, err := h.deps.Players(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromPlayers(players))
}

// HandleCreate handles POST /players.
func (h *PlayersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req types.CreatePlayerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	release, err := claimIdempotencyKey(r, h.deduper, "players")
	if err != nil {
		writeError(w, err)
		return
	}
	player, err := h.deps.CreatePlayer(r.Context(), req.Name)
	if err != nil {
		release()
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.FromPlayer(player))
}
