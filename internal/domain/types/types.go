// Package types contains the JSON shapes shared by the HTTP API and its client.
package types

import (
	"math"

	"github.com/okian/golazo/internal/domain/changeset"
	"github.com/okian/golazo/internal/domain/model"
)

// Player is the wire form of a roster entry.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Match is the wire form of a recorded result.
type Match struct {
	ID          string   `json:"id"`
	HomePlayers []Player `json:"home_players"`
	AwayPlayers []Player `json:"away_players"`
	HomeGoals   int      `json:"home_goals"`
	AwayGoals   int      `json:"away_goals"`
}

// Ranking is the wire form of a computed rating. Rating is null when the
// engine produced NaN; RatingDisplay always carries the rendered value.
type Ranking struct {
	Player        Player   `json:"player"`
	Rating        *float64 `json:"rating"`
	RatingDisplay string   `json:"rating_display"`
}

// RankingChanges is the body of GET /rankings/changes. Items is the ranking
// list the changeset produced, so both belong to the same version.
type RankingChanges struct {
	Version uint64    `json:"version"`
	Items   []Ranking `json:"items"`
	changeset.Changeset
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes carried by ErrorResponse.
const (
	CodeBadRequest    = "bad_request"
	CodeInvalidName   = "invalid_name"
	CodeUnknownPlayer = "unknown_player"
	CodeInvalidGoals  = "invalid_goals"
	CodeNotFound      = "not_found"
	CodeDuplicate     = "duplicate"
	CodeBackpressure  = "backpressure"
	CodeInternal      = "internal_error"
)

// StatusResponse acknowledges a mutation without a resource body.
type StatusResponse struct {
	Status string `json:"status"`
}

// CreatePlayerRequest is the body of POST /players.
type CreatePlayerRequest struct {
	Name string `json:"name"`
}

// MatchRequest is the body of POST /matches and PUT /matches/{id}.
type MatchRequest struct {
	HomePlayerIDs []string `json:"home_player_ids"`
	AwayPlayerIDs []string `json:"away_player_ids"`
	HomeGoals     int      `json:"home_goals"`
	AwayGoals     int      `json:"away_goals"`
}

// FromPlayer converts a domain player.
func FromPlayer(p model.Player) Player {
	return Player{ID: p.ID, Name: p.Name}
}

// FromPlayers converts a list of domain players.
func FromPlayers(ps []model.Player) []Player {
	out := make([]Player, len(ps))
	for i, p := range ps {
		out[i] = FromPlayer(p)
	}
	return out
}

// ToModel converts back to a domain player.
func (p Player) ToModel() model.Player {
	return model.Player{ID: p.ID, Name: p.Name}
}

// ToPlayers converts a list of wire players.
func ToPlayers(ps []Player) []model.Player {
	out := make([]model.Player, len(ps))
	for i, p := range ps {
		out[i] = p.ToModel()
	}
	return out
}

// FromMatch converts a domain match.
func FromMatch(m model.Match) Match {
	return Match{
		ID:          m.ID,
		HomePlayers: FromPlayers(m.HomePlayers),
		AwayPlayers: FromPlayers(m.AwayPlayers),
		HomeGoals:   m.HomeGoals,
		AwayGoals:   m.AwayGoals,
	}
}

// FromMatches converts a list of domain matches.
func FromMatches(ms []model.Match) []Match {
	out := make([]Match, len(ms))
	for i, m := range ms {
		out[i] = FromMatch(m)
	}
	return out
}

// ToModel converts back to a domain match.
func (m Match) ToModel() model.Match {
	return model.Match{
		ID:          m.ID,
		HomePlayers: ToPlayers(m.HomePlayers),
		AwayPlayers: ToPlayers(m.AwayPlayers),
		HomeGoals:   m.HomeGoals,
		AwayGoals:   m.AwayGoals,
	}
}

// FromRanking converts a domain ranking.
func FromRanking(r model.Ranking) Ranking {
	out := Ranking{
		Player:        FromPlayer(r.Player),
		RatingDisplay: model.FormatRating(r.Rating),
	}
	if !math.IsNaN(r.Rating) {
		rating := r.Rating
		out.Rating = &rating
	}
	return out
}

// FromRankings converts a list of domain rankings.
func FromRankings(rs []model.Ranking) []Ranking {
	out := make([]Ranking, len(rs))
	for i, r := range rs {
		out[i] = FromRanking(r)
	}
	return out
}

// ToModel converts back to a domain ranking; a null rating becomes NaN.
func (r Ranking) ToModel() model.Ranking {
	rating := math.NaN()
	if r.Rating != nil {
		rating = *r.Rating
	}
	return model.Ranking{Player: r.Player.ToModel(), Rating: rating}
}

// Params converts the request to domain match parameters.
func (r MatchRequest) Params() model.MatchParameters {
	return model.MatchParameters{
		HomePlayerIDs: r.HomePlayerIDs,
		AwayPlayerIDs: r.AwayPlayerIDs,
		HomeGoals:     r.HomeGoals,
		AwayGoals:     r.AwayGoals,
	}
}

// FromParams builds a request body from domain match parameters.
func FromParams(p model.MatchParameters) MatchRequest {
	return MatchRequest{
		HomePlayerIDs: p.HomePlayerIDs,
		AwayPlayerIDs: p.AwayPlayerIDs,
		HomeGoals:     p.HomeGoals,
		AwayGoals:     p.AwayGoals,
	}
}
