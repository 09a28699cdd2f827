package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hooplab/shotform/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("A new id should not be seen, then seen", func() {
			So(d.SeenAndRecord(ctx, "run-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "run-1"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("Unrecord should allow resubmission", func() {
			So(d.SeenAndRecord(ctx, "run-2"), ShouldBeFalse)
			d.Unrecord(ctx, "run-2")
			So(d.SeenAndRecord(ctx, "run-2"), ShouldBeFalse)
		})

		Convey("Unrecord of an unknown id should be a no-op", func() {
			So(func() { d.Unrecord(ctx, "missing") }, ShouldNotPanic)
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("The oldest id should be evicted at capacity", func() {
			for i := 0; i < 4; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("run-%d", i)), ShouldBeFalse)
			}
			So(d.Size(), ShouldEqual, 3)
			// run-0 was evicted and can be recorded again.
			So(d.SeenAndRecord(ctx, "run-0"), ShouldBeFalse)
		})
	})
}
