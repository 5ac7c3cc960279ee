package repository_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/golazo/internal/adapters/repository"
	"github.com/okian/golazo/internal/domain/model"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestMemoryStore(t *testing.T) {
	convey.Convey("Given a memory store with sequential IDs", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore(repository.WithIDGenerator(sequentialIDs()))

		convey.Convey("When players with equal names are added", func() {
			first, _ := s.CreatePlayer(ctx, "Sam")
			second, _ := s.CreatePlayer(ctx, "Sam")
			players, err := s.FetchPlayers(ctx)

			convey.Convey("Then they keep insertion order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(players, convey.ShouldResemble, []model.Player{first, second})
				convey.So(first.ID, convey.ShouldEqual, "id-1")
				convey.So(second.ID, convey.ShouldEqual, "id-2")
			})
		})

		convey.Convey("When a fetched match is mutated by the caller", func() {
			p, _ := s.CreatePlayer(ctx, "Ana")
			_, err := s.CreateMatch(ctx, model.MatchParameters{HomePlayerIDs: []string{p.ID}})
			convey.So(err, convey.ShouldBeNil)

			matches, _ := s.FetchMatches(ctx)
			matches[0].HomePlayers[0].Name = "Changed"
			again, _ := s.FetchMatches(ctx)

			convey.Convey("Then the stored match is unaffected", func() {
				convey.So(again[0].HomePlayers[0].Name, convey.ShouldEqual, "Ana")
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := s.CreatePlayer(cancelled, "Ana")

			convey.Convey("Then the call fails without touching the store", func() {
				convey.So(err, convey.ShouldEqual, context.Canceled)
				players, matches := s.Len()
				convey.So(players, convey.ShouldEqual, 0)
				convey.So(matches, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When archiving without a path", func() {
			err := s.Archive(ctx)

			convey.Convey("Then it reports the missing path", func() {
				convey.So(err, convey.ShouldEqual, repository.ErrNoArchivePath)
				convey.So(s.Unarchive(ctx), convey.ShouldEqual, repository.ErrNoArchivePath)
			})
		})
	})
}

func TestMemoryStoreArchive(t *testing.T) {
	convey.Convey("Given a memory store with an archive path", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "golazo.msgpack")
		s := repository.NewMemoryStore(repository.WithArchivePath(path))

		convey.Convey("When unarchiving before any archive exists", func() {
			err := s.Unarchive(ctx)

			convey.Convey("Then it is not an error and the store stays empty", func() {
				convey.So(err, convey.ShouldBeNil)
				players, matches := s.Len()
				convey.So(players+matches, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the store is archived and restored into a new store", func() {
			ana, _ := s.CreatePlayer(ctx, "Ana")
			ben, _ := s.CreatePlayer(ctx, "Ben")
			m, err := s.CreateMatch(ctx, model.MatchParameters{
				HomePlayerIDs: []string{ana.ID},
				AwayPlayerIDs: []string{ben.ID},
				HomeGoals:     3,
				AwayGoals:     2,
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.Archive(ctx), convey.ShouldBeNil)

			restored := repository.NewMemoryStore(repository.WithArchivePath(path))
			convey.So(restored.Unarchive(ctx), convey.ShouldBeNil)

			convey.Convey("Then roster and history survive", func() {
				players, _ := restored.FetchPlayers(ctx)
				convey.So(model.PlayersContentEqual(players, []model.Player{ana, ben}), convey.ShouldBeTrue)

				matches, _ := restored.FetchMatches(ctx)
				convey.So(matches, convey.ShouldHaveLength, 1)
				convey.So(model.MatchContentEqual(matches[0], m), convey.ShouldBeTrue)
			})

			convey.Convey("Then no temporary files are left behind", func() {
				entries, err := os.ReadDir(filepath.Dir(path))
				convey.So(err, convey.ShouldBeNil)
				convey.So(entries, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When the archive is corrupt", func() {
			convey.So(os.WriteFile(path, []byte("not msgpack"), 0o600), convey.ShouldBeNil)
			err := s.Unarchive(ctx)

			convey.Convey("Then unarchive fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
