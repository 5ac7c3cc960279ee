package changeset_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/okian/golazo/internal/domain/changeset"
	"github.com/okian/golazo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type item struct {
	id    string
	value string
}

func itemKey(i item) string    { return i.id }
func sameValue(a, b item) bool { return a.value == b.value }
func positions(rows ...int) []changeset.Position {
	out := make([]changeset.Position, len(rows))
	for i, r := range rows {
		out[i] = changeset.At(r)
	}
	return out
}

func keys(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

var animals = []item{
	{"cat", "Cat"},
	{"dog", "Dog"},
	{"fox", "Fox"},
	{"rat", "Rat"},
	{"yak", "Yak"},
}

func TestCompute(t *testing.T) {
	Convey("Given a list of animals", t, func() {
		Convey("When some are removed, some inserted and some changed", func() {
			newItems := []item{
				{"bat", "Bat"},
				{"cow", "Cow"},
				{"dog", "A different dog"},
				{"fox", "Fox"},
				{"pig", "Pig"},
				{"yak", "A different yak"},
			}
			cs := changeset.Compute(animals, newItems, itemKey, sameValue)

			Convey("Then deletions, modifications and insertions are reported in scan order", func() {
				So(cs.Deletions, ShouldResemble, positions(0, 3))
				So(cs.Modifications, ShouldResemble, positions(1, 4))
				So(cs.Insertions, ShouldResemble, positions(0, 1, 4))
				So(cs.Len(), ShouldEqual, 7)
				So(changeset.Rows(cs.Insertions), ShouldResemble, []int{0, 1, 4})
			})

			Convey("And applying the changeset reproduces the new list", func() {
				got := changeset.Apply(animals, newItems, cs, itemKey)
				So(got, ShouldResemble, newItems)
			})
		})

		Convey("When diffed against itself", func() {
			cs := changeset.Compute(animals, animals, itemKey, sameValue)

			Convey("Then the changeset is empty", func() {
				So(cs.IsEmpty(), ShouldBeTrue)
				So(cs.Deletions, ShouldBeEmpty)
				So(cs.Modifications, ShouldBeEmpty)
				So(cs.Insertions, ShouldBeEmpty)
			})
		})

		Convey("When the old list is empty", func() {
			cs := changeset.Compute(nil, animals, itemKey, sameValue)

			Convey("Then every new row is an insertion", func() {
				So(cs.Deletions, ShouldBeEmpty)
				So(cs.Modifications, ShouldBeEmpty)
				So(cs.Insertions, ShouldResemble, positions(0, 1, 2, 3, 4))
			})
		})

		Convey("When the new list is empty", func() {
			cs := changeset.Compute(animals, []item{}, itemKey, sameValue)

			Convey("Then every old row is a deletion", func() {
				So(cs.Deletions, ShouldResemble, positions(0, 1, 2, 3, 4))
				So(cs.Modifications, ShouldBeEmpty)
				So(cs.Insertions, ShouldBeEmpty)
			})
		})

		Convey("When both lists are empty", func() {
			cs := changeset.Compute[item, string](nil, nil, itemKey, sameValue)

			Convey("Then nothing changes", func() {
				So(cs.IsEmpty(), ShouldBeTrue)
			})
		})

		Convey("When items only move", func() {
			reversed := []item{animals[4], animals[3], animals[2], animals[1], animals[0]}
			cs := changeset.Compute(animals, reversed, itemKey, sameValue)

			Convey("Then no row operation is reported", func() {
				So(cs.IsEmpty(), ShouldBeTrue)
			})
		})
	})
}

func TestCompute_Rankings(t *testing.T) {
	Convey("Given two ranking tables", t, func() {
		a := model.Player{ID: "a", Name: "Alice"}
		b := model.Player{ID: "b", Name: "Bob"}
		oldRankings := []model.Ranking{{Player: a, Rating: 3.331}, {Player: b, Rating: 1}}
		newRankings := []model.Ranking{{Player: a, Rating: 3.334}, {Player: b, Rating: 2}}

		cs := changeset.Compute(oldRankings, newRankings, model.RankingKey, model.RankingContentEqual)

		Convey("Then only ratings that render differently are reloaded", func() {
			So(cs.Modifications, ShouldResemble, positions(1))
			So(cs.Deletions, ShouldBeEmpty)
			So(cs.Insertions, ShouldBeEmpty)
		})
	})
}

func randomList(rng *rand.Rand, universe int) []item {
	perm := rng.Perm(universe)
	n := rng.Intn(universe + 1)
	out := make([]item, 0, n)
	for _, v := range perm[:n] {
		out = append(out, item{id: "k" + strconv.Itoa(v), value: strconv.Itoa(rng.Intn(3))})
	}
	return out
}

func TestApply_RoundTrip(t *testing.T) {
	Convey("Given random lists with unique keys", t, func() {
		rng := rand.New(rand.NewSource(7))

		Convey("Then applying the computed changeset always yields the new list", func() {
			for i := 0; i < 200; i++ {
				oldItems := randomList(rng, 12)
				newItems := randomList(rng, 12)
				cs := changeset.Compute(oldItems, newItems, itemKey, sameValue)
				got := changeset.Apply(oldItems, newItems, cs, itemKey)
				So(keys(got), ShouldResemble, keys(newItems))
			}
		})
	})
}
