package model_test

import (
	"testing"

	"github.com/okian/golazo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlayerEquality(t *testing.T) {
	Convey("Given two players sharing an ID with different names", t, func() {
		a := model.Player{ID: "p1", Name: "Ann"}
		b := model.Player{ID: "p1", Name: "Anna"}

		Convey("Then they are the same player but not content equal", func() {
			So(model.SamePlayer(a, b), ShouldBeTrue)
			So(model.PlayerContentEqual(a, b), ShouldBeFalse)
			So(model.PlayerKey(a), ShouldEqual, "p1")
		})

		Convey("And list comparison is order sensitive", func() {
			c := model.Player{ID: "p2", Name: "Carl"}
			So(model.PlayersContentEqual([]model.Player{a, c}, []model.Player{a, c}), ShouldBeTrue)
			So(model.PlayersContentEqual([]model.Player{a, c}, []model.Player{c, a}), ShouldBeFalse)
			So(model.PlayersContentEqual([]model.Player{a}, []model.Player{a, c}), ShouldBeFalse)
			So(model.ContainsPlayer([]model.Player{c, b}, a), ShouldBeTrue)
		})
	})
}

func TestMatch(t *testing.T) {
	Convey("Given a match", t, func() {
		ann := model.Player{ID: "p1", Name: "Ann"}
		bo := model.Player{ID: "p2", Name: "Bo"}
		m := model.Match{ID: "m1", HomePlayers: []model.Player{ann}, AwayPlayers: []model.Player{bo}, HomeGoals: 2, AwayGoals: 1}

		Convey("Then outcomes depend on the side", func() {
			So(m.OutcomeFor(model.SideHome), ShouldEqual, model.OutcomeWin)
			So(m.OutcomeFor(model.SideAway), ShouldEqual, model.OutcomeLoss)

			m.AwayGoals = 4
			So(m.OutcomeFor(model.SideHome), ShouldEqual, model.OutcomeLoss)
			So(m.OutcomeFor(model.SideAway), ShouldEqual, model.OutcomeWin)

			m.AwayGoals = 2
			So(m.OutcomeFor(model.SideHome), ShouldEqual, model.OutcomeDraw)
			So(m.OutcomeFor(model.SideAway), ShouldEqual, model.OutcomeDraw)
		})

		Convey("Then content equality covers rosters and score", func() {
			same := m
			So(model.MatchContentEqual(m, same), ShouldBeTrue)

			renamed := m
			renamed.AwayPlayers = []model.Player{{ID: "p2", Name: "Bob"}}
			So(model.SameMatch(m, renamed), ShouldBeTrue)
			So(model.MatchContentEqual(m, renamed), ShouldBeFalse)

			rescored := m
			rescored.HomeGoals = 5
			So(model.MatchContentEqual(m, rescored), ShouldBeFalse)
		})

		Convey("Then sides render as names", func() {
			So(model.SideHome.String(), ShouldEqual, "home")
			So(model.SideAway.String(), ShouldEqual, "away")
		})
	})
}

func TestRankingEquality(t *testing.T) {
	Convey("Given rankings that differ below display precision", t, func() {
		p := model.Player{ID: "p1", Name: "Ann"}
		a := model.Ranking{Player: p, Rating: 3.3333333}
		b := model.Ranking{Player: p, Rating: 3.3300001}

		Convey("Then they are content equal", func() {
			So(model.FormatRating(a.Rating), ShouldEqual, "3.33")
			So(model.RankingContentEqual(a, b), ShouldBeTrue)
			So(model.RankingKey(a), ShouldEqual, "p1")
		})

		Convey("Then a visible difference breaks equality", func() {
			b.Rating = 3.34
			So(model.RankingContentEqual(a, b), ShouldBeFalse)
		})
	})
}
