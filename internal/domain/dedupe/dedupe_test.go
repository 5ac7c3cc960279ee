package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/golazo/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a key is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "key-1")

			Convey("Then it is reported as new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports a duplicate", func() {
				So(d.SeenAndRecord(ctx, "key-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And unrecording it allows a retry", func() {
				d.Unrecord(ctx, "key-1")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "key-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown key", func() {
			d.Unrecord(ctx, "missing")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded deduper of size 3", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 4; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i))
		}

		Convey("Then the oldest key was evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "key-4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "key-2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "key-1"), ShouldBeFalse)
		})

		Convey("When a key is unrecorded before its slot is reused", func() {
			d.Unrecord(ctx, "key-3")
			So(d.Size(), ShouldEqual, 2)

			Convey("Then reusing the slot does not double-count", func() {
				d.SeenAndRecord(ctx, "key-5")
				d.SeenAndRecord(ctx, "key-6")
				So(d.Size(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 100; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i))
		}

		Convey("Then nothing is evicted", func() {
			So(d.Size(), ShouldEqual, 100)
			So(d.SeenAndRecord(ctx, "key-0"), ShouldBeTrue)
		})
	})

	Convey("Given concurrent callers racing on one key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, "shared") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one caller wins", func() {
			So(fresh, ShouldEqual, 1)
		})
	})
}
