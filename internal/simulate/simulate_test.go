package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/golazo/internal/adapters/http/api"
	"github.com/okian/golazo/internal/adapters/http/client"
	"github.com/okian/golazo/internal/adapters/repository"
	service "github.com/okian/golazo/internal/app"
	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/internal/domain/ranking"
	"github.com/okian/golazo/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// storeTarget serves rankings computed from a store, optionally lagging.
type storeTarget struct {
	*repository.MemoryStore
	engine *ranking.Engine
	stale  bool

	mu              sync.Mutex
	failEveryPlayer int
	calls           int
}

func (t *storeTarget) CreatePlayer(ctx context.Context, name string) (model.Player, error) {
	t.mu.Lock()
	t.calls++
	fail := t.failEveryPlayer > 0 && t.calls%t.failEveryPlayer == 0
	t.mu.Unlock()
	if fail {
		return model.Player{}, errors.New("injected failure")
	}
	return t.MemoryStore.CreatePlayer(ctx, name)
}

func (t *storeTarget) FetchRankings(ctx context.Context) ([]model.Ranking, error) {
	if t.stale {
		return nil, nil
	}
	players, err := t.FetchPlayers(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := t.FetchMatches(ctx)
	if err != nil {
		return nil, err
	}
	return t.engine.Compute(players, matches), nil
}

func newStoreTarget() *storeTarget {
	return &storeTarget{MemoryStore: repository.NewMemoryStore(), engine: ranking.NewEngine()}
}

func TestGenerateMatch(t *testing.T) {
	Convey("Given a roster of six players", t, func() {
		roster := make([]model.Player, 6)
		for i := range roster {
			roster[i] = model.Player{ID: string(rune('a' + i)), Name: string(rune('A' + i))}
		}

		Convey("Generated matches have disjoint sides within bounds", func() {
			for i := 0; i < 200; i++ {
				p := generateMatch(roster, 2, 4)
				So(len(p.HomePlayerIDs), ShouldBeBetweenOrEqual, 1, 2)
				So(len(p.AwayPlayerIDs), ShouldBeBetweenOrEqual, 1, 2)
				So(p.HomeGoals, ShouldBeBetweenOrEqual, 0, 4)
				So(p.AwayGoals, ShouldBeBetweenOrEqual, 0, 4)
				for _, id := range p.HomePlayerIDs {
					So(p.AwayPlayerIDs, ShouldNotContain, id)
				}
			}
		})

		Convey("A single player yields a one-sided match", func() {
			p := generateMatch(roster[:1], 3, 2)
			So(p.HomePlayerIDs, ShouldResemble, []string{"a"})
			So(p.AwayPlayerIDs, ShouldBeEmpty)
		})
	})

	Convey("Generated names are distinct", t, func() {
		names := generateNames(50)
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			So(seen[n], ShouldBeFalse)
			seen[n] = true
		}
	})
}

func TestRunAgainstStore(t *testing.T) {
	Convey("Given a target serving up to date rankings", t, func() {
		target := newStoreTarget()
		ctx := context.Background()

		Convey("When the simulation runs", func() {
			out := filepath.Join(t.TempDir(), "reports", "run.json")
			stats, err := Run(ctx, target, &Config{
				Players:    8,
				Matches:    30,
				Workers:    4,
				MaxGoals:   3,
				OutputFile: out,
			})

			Convey("Then the rankings verify and a report is written", func() {
				So(err, ShouldBeNil)
				So(stats.Verified, ShouldBeTrue)
				So(stats.PlayersCreated, ShouldEqual, 8)
				So(stats.MatchesCreated, ShouldEqual, 30)
				So(stats.RankedPlayers, ShouldEqual, 8)
				So(stats.TopPlayers, ShouldHaveLength, topPlayersShown)
				So(stats.TopPlayers[0].Rank, ShouldEqual, 1)

				players, matches := target.Len()
				So(players, ShouldEqual, 8)
				So(matches, ShouldEqual, 30)

				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var report Stats
				So(json.Unmarshal(data, &report), ShouldBeNil)
				So(report.Verified, ShouldBeTrue)
				So(report.MatchesCreated, ShouldEqual, 30)
			})
		})

		Convey("When some player creations fail", func() {
			target.failEveryPlayer = 3
			stats, err := Run(ctx, target, &Config{Players: 9, Matches: 5, Workers: 2})

			Convey("Then failures are counted and the run still verifies", func() {
				So(err, ShouldBeNil)
				So(stats.PlayersFailed, ShouldEqual, 3)
				So(stats.PlayersCreated, ShouldEqual, 6)
				So(stats.Verified, ShouldBeTrue)
			})
		})
	})

	Convey("Given a target whose rankings never update", t, func() {
		target := newStoreTarget()
		target.stale = true

		stats, err := Run(context.Background(), target, &Config{
			Players:       4,
			Matches:       3,
			SettleTimeout: 250 * time.Millisecond,
		})

		Convey("Then the run reports a mismatch", func() {
			So(errors.Is(err, ErrRankingMismatch), ShouldBeTrue)
			So(stats.Verified, ShouldBeFalse)
			So(stats.RankingPolls, ShouldBeGreaterThan, 1)
		})
	})
}

func TestRunAgainstServer(t *testing.T) {
	Convey("Given a running golazo API", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		srv := httptest.NewServer(api.NewServer(svc, svc).Handler())
		defer srv.Close()

		remote := client.New(srv.URL)
		defer remote.Close()

		Convey("When the simulation drives it over HTTP", func() {
			stats, err := Run(ctx, remote, &Config{Players: 10, Matches: 40, Workers: 4})

			Convey("Then the served rankings converge to the local computation", func() {
				So(err, ShouldBeNil)
				So(stats.Verified, ShouldBeTrue)
				So(stats.RankedPlayers, ShouldEqual, 10)
				So(stats.MatchesFailed, ShouldEqual, 0)
			})
		})
	})
}
