package types_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRankingWireForm(t *testing.T) {
	Convey("Given a ranking with a finite rating", t, func() {
		r := model.Ranking{Player: model.Player{ID: "p1", Name: "Ann"}, Rating: 10.0 / 3.0}
		wire := types.FromRanking(r)

		Convey("Then both raw and display ratings are set", func() {
			So(*wire.Rating, ShouldAlmostEqual, 10.0/3.0, 1e-12)
			So(wire.RatingDisplay, ShouldEqual, "3.33")
		})

		Convey("And the JSON uses snake case keys", func() {
			data, err := json.Marshal(wire)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"rating_display":"3.33"`)
			So(string(data), ShouldContainSubstring, `"player":{"id":"p1","name":"Ann"}`)
		})
	})

	Convey("Given a ranking with a NaN rating", t, func() {
		r := model.Ranking{Player: model.Player{ID: "p1"}, Rating: math.NaN()}
		wire := types.FromRanking(r)

		Convey("Then the rating is null on the wire and NaN again in the model", func() {
			So(wire.Rating, ShouldBeNil)
			data, err := json.Marshal(wire)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"rating":null`)
			So(math.IsNaN(wire.ToModel().Rating), ShouldBeTrue)
		})
	})
}

func TestMatchWireForm(t *testing.T) {
	Convey("Given a match", t, func() {
		m := model.Match{
			ID:          "m1",
			HomePlayers: []model.Player{{ID: "p1", Name: "Ann"}},
			AwayPlayers: []model.Player{},
			HomeGoals:   1,
		}

		Convey("Then converting to the wire form and back keeps its content", func() {
			So(model.MatchContentEqual(types.FromMatch(m).ToModel(), m), ShouldBeTrue)
		})

		Convey("And the JSON keys match the public API", func() {
			data, err := json.Marshal(types.FromMatch(m))
			So(err, ShouldBeNil)
			for _, key := range []string{`"home_players"`, `"away_players"`, `"home_goals"`, `"away_goals"`} {
				So(string(data), ShouldContainSubstring, key)
			}
		})
	})
}
