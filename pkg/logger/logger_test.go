package logger_test

import (
	"context"
	"testing"

	"github.com/hooplab/shotform/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		err := logger.Init()
		So(err, ShouldBeNil)

		Convey("Get should return a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "hello", logger.String("k", "v"))
			}, ShouldNotPanic)
		})

		Convey("Named should return a child logger", func() {
			l := logger.Named("segmenter")
			So(l, ShouldNotBeNil)
			So(func() {
				l.Debug(context.Background(), "child", logger.Int("frames", 42))
			}, ShouldNotPanic)
		})

		Convey("SetLevelString should accept known levels", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("SetLevelString should reject unknown levels", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
