package api

import (
	"context"
	"net/http"

	"github.com/okian/golazo/internal/domain/feed"
	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/types"
)

// RankingDependencies defines the read operations used by RankingsHandler.
type RankingDependencies interface {
	Rankings(ctx context.Context) ([]model.Ranking, error)
	RankingChanges(ctx context.Context) (feed.Update[model.Ranking], error)
}

// RankingsHandler serves the computed rankings.
type RankingsHandler struct {
	deps RankingDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleList handles GET /rankings.
func (h *RankingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.deps.Rankings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromRankings(rankings))
}

// HandleChanges handles GET /rankings/changes.
func (h *RankingsHandler) HandleChanges(w http.ResponseWriter, r *http.Request) {
	update, err := h.deps.RankingChanges(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RankingChanges{
		Version:   update.Version,
		Items:     types.FromRankings(update.Items),
		Changeset: update.Changeset,
	})
}
