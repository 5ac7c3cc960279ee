package ranking_test

import (
	"math"
	"testing"

	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	alice = model.Player{ID: "a", Name: "Alice"}
	bob   = model.Player{ID: "b", Name: "Bob"}
	carol = model.Player{ID: "c", Name: "Carol"}
	dave  = model.Player{ID: "d", Name: "Dave"}
)

func match(id string, home, away []model.Player, homeGoals, awayGoals int) model.Match {
	return model.Match{ID: id, HomePlayers: home, AwayPlayers: away, HomeGoals: homeGoals, AwayGoals: awayGoals}
}

func ratingsByID(rankings []model.Ranking) map[string]float64 {
	out := make(map[string]float64, len(rankings))
	for _, r := range rankings {
		out[r.Player.ID] = r.Rating
	}
	return out
}

func idsOf(rankings []model.Ranking) []string {
	ids := make([]string, len(rankings))
	for i, r := range rankings {
		ids[i] = r.Player.ID
	}
	return ids
}

func TestEngine_Compute(t *testing.T) {
	Convey("Given a default engine", t, func() {
		engine := ranking.NewEngine()
		roster := []model.Player{alice, bob, carol, dave}

		Convey("When the roster is empty", func() {
			rankings := engine.Compute(nil, []model.Match{match("m1", []model.Player{alice}, []model.Player{bob}, 1, 0)})

			Convey("Then the result is empty", func() {
				So(rankings, ShouldNotBeNil)
				So(rankings, ShouldBeEmpty)
			})
		})

		Convey("When there are no matches", func() {
			rankings := engine.Compute(roster, nil)

			Convey("Then every player is rated 0 in roster order", func() {
				So(rankings, ShouldHaveLength, 4)
				So(idsOf(rankings), ShouldResemble, []string{"a", "b", "c", "d"})
				for _, r := range rankings {
					So(r.Rating, ShouldEqual, 0)
				}
			})
		})

		Convey("When A and B beat C and D 2:1", func() {
			rankings := engine.Compute(roster, []model.Match{
				match("m1", []model.Player{alice, bob}, []model.Player{carol, dave}, 2, 1),
			})

			Convey("Then the winners are rated 10 and the losers 0", func() {
				ratings := ratingsByID(rankings)
				So(ratings["a"], ShouldEqual, 10)
				So(ratings["b"], ShouldEqual, 10)
				So(ratings["c"], ShouldEqual, 0)
				So(ratings["d"], ShouldEqual, 0)
				So(idsOf(rankings), ShouldResemble, []string{"a", "b", "c", "d"})
			})
		})

		Convey("When the away side wins", func() {
			rankings := engine.Compute(roster, []model.Match{
				match("m1", []model.Player{alice, bob}, []model.Player{carol, dave}, 0, 3),
			})

			Convey("Then the away players lead the table", func() {
				So(idsOf(rankings), ShouldResemble, []string{"c", "d", "a", "b"})
				So(rankings[0].Rating, ShouldEqual, 10)
				So(rankings[3].Rating, ShouldEqual, 0)
			})
		})

		Convey("When the only match is a draw", func() {
			rankings := engine.Compute(roster, []model.Match{
				match("m1", []model.Player{alice, bob}, []model.Player{carol, dave}, 1, 1),
			})

			Convey("Then all four participants are rated 10/3", func() {
				for _, r := range rankings {
					So(r.Rating, ShouldAlmostEqual, 10.0/3.0, 1e-9)
					So(model.FormatRating(r.Rating), ShouldEqual, "3.33")
				}
			})
		})

		Convey("When players have mixed records", func() {
			rankings := engine.Compute(roster, []model.Match{
				match("m1", []model.Player{alice}, []model.Player{bob}, 3, 0),
				match("m2", []model.Player{bob}, []model.Player{alice}, 2, 2),
				match("m3", []model.Player{carol}, []model.Player{alice}, 1, 0),
			})

			Convey("Then ratings reflect earned over attainable points", func() {
				ratings := ratingsByID(rankings)
				So(ratings["a"], ShouldAlmostEqual, 10.0*4.0/9.0, 1e-9)
				So(ratings["b"], ShouldAlmostEqual, 10.0*1.0/6.0, 1e-9)
				So(ratings["c"], ShouldEqual, 10)
				So(ratings["d"], ShouldEqual, 0)
				So(idsOf(rankings), ShouldResemble, []string{"c", "a", "b", "d"})
			})
		})

		Convey("When a match references players outside the roster", func() {
			stranger := model.Player{ID: "x", Name: "Stranger"}
			rankings := engine.Compute([]model.Player{alice}, []model.Match{
				match("m1", []model.Player{stranger}, []model.Player{alice}, 1, 0),
			})

			Convey("Then only roster players are ranked", func() {
				So(rankings, ShouldHaveLength, 1)
				So(rankings[0].Player, ShouldResemble, alice)
				So(rankings[0].Rating, ShouldEqual, 0)
			})
		})

		Convey("When a match has empty sides", func() {
			rankings := engine.Compute(roster, []model.Match{match("m1", nil, nil, 0, 0)})

			Convey("Then it does not panic and nobody played", func() {
				So(rankings, ShouldHaveLength, 4)
				for _, r := range rankings {
					So(r.Rating, ShouldEqual, 0)
				}
			})
		})

		Convey("When a player appears on both sides of one match", func() {
			rankings := engine.Compute([]model.Player{alice}, []model.Match{
				match("m1", []model.Player{alice}, []model.Player{alice}, 2, 1),
			})

			Convey("Then the match counts once per side", func() {
				So(rankings[0].Rating, ShouldEqual, 5)
			})
		})

		Convey("When ratings tie", func() {
			rankings := engine.Compute([]model.Player{dave, carol, bob, alice}, []model.Match{
				match("m1", []model.Player{alice}, []model.Player{bob}, 1, 1),
				match("m2", []model.Player{carol}, []model.Player{dave}, 0, 0),
			})

			Convey("Then roster order is preserved", func() {
				So(idsOf(rankings), ShouldResemble, []string{"d", "c", "b", "a"})
			})
		})
	})
}

func TestEngine_ZeroPlayedPolicy(t *testing.T) {
	Convey("Given a roster where one player never played", t, func() {
		roster := []model.Player{dave, alice, bob}
		matches := []model.Match{match("m1", []model.Player{alice}, []model.Player{bob}, 0, 1)}

		Convey("When the default policy is used", func() {
			rankings := ranking.NewEngine().Compute(roster, matches)

			Convey("Then the idle player is rated 0", func() {
				So(ratingsByID(rankings)["d"], ShouldEqual, 0)
				So(idsOf(rankings), ShouldResemble, []string{"b", "d", "a"})
			})
		})

		Convey("When the NaN policy is used", func() {
			engine := ranking.NewEngine(ranking.WithZeroPlayedPolicy(ranking.ZeroPlayedNaN))
			rankings := engine.Compute(roster, matches)

			Convey("Then the idle player is NaN and sorted last", func() {
				So(idsOf(rankings), ShouldResemble, []string{"b", "a", "d"})
				So(math.IsNaN(rankings[2].Rating), ShouldBeTrue)
			})
		})

		Convey("When parsing policy strings", func() {
			p, err := ranking.ParseZeroPlayedPolicy("NaN")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, ranking.ZeroPlayedNaN)

			p, err = ranking.ParseZeroPlayedPolicy("")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, ranking.ZeroPlayedZero)

			_, err = ranking.ParseZeroPlayedPolicy("infinity")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestEngine_Options(t *testing.T) {
	Convey("Given a custom points table", t, func() {
		engine := ranking.NewEngine(ranking.WithPoints(2, 1, 0), ranking.WithScale(100))
		rankings := engine.Compute([]model.Player{alice, bob}, []model.Match{
			match("m1", []model.Player{alice}, []model.Player{bob}, 1, 1),
		})

		Convey("Then ratings use the configured table and scale", func() {
			So(rankings[0].Rating, ShouldEqual, 50)
			So(rankings[1].Rating, ShouldEqual, 50)
		})
	})

	Convey("Given invalid options", t, func() {
		engine := ranking.NewEngine(ranking.WithPoints(0, 1, 0), ranking.WithScale(-1), ranking.WithZeroPlayedPolicy("bogus"))
		rankings := engine.Compute([]model.Player{alice, bob}, []model.Match{
			match("m1", []model.Player{alice}, []model.Player{bob}, 1, 1),
		})

		Convey("Then defaults are kept", func() {
			So(rankings[0].Rating, ShouldAlmostEqual, 10.0/3.0, 1e-9)
		})
	})
}

func TestEngine_Bounds(t *testing.T) {
	Convey("Given many random-ish matches", t, func() {
		roster := []model.Player{alice, bob, carol, dave}
		var matches []model.Match
		for i := 0; i < 40; i++ {
			home := []model.Player{roster[i%4], roster[(i+1)%4]}
			away := []model.Player{roster[(i+2)%4]}
			matches = append(matches, match("m", home, away, i%5, (i*7)%4))
		}
		rankings := ranking.NewEngine().Compute(roster, matches)

		Convey("Then every rating stays within 0..10 and output is sorted", func() {
			So(rankings, ShouldHaveLength, len(roster))
			for i, r := range rankings {
				So(r.Rating, ShouldBeBetweenOrEqual, 0, 10)
				if i > 0 {
					So(rankings[i-1].Rating, ShouldBeGreaterThanOrEqualTo, r.Rating)
				}
			}
		})
	})
}
