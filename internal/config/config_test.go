package config_test

import (
	"runtime"
	"testing"

	"github.com/okian/golazo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, config.BackendMemory)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, max(1, runtime.NumCPU()/2))
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.PointsWin, convey.ShouldEqual, 3)
			convey.So(cfg.PointsDraw, convey.ShouldEqual, 1)
			convey.So(cfg.PointsLoss, convey.ShouldEqual, 0)
			convey.So(cfg.RatingScale, convey.ShouldEqual, 10)
			convey.So(cfg.ZeroPlayedPolicy, convey.ShouldEqual, "zero")
		})

		convey.Convey("Then the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then it should produce one engine option per scoring knob", func() {
			convey.So(cfg.RankingOptions(), convey.ShouldHaveLength, 3)
		})
	})
}
