package logger_test

import (
	"context"
	"testing"

	"github.com/mpcw/walletd/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		err := logger.Init()
		So(err, ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)

			// Should not panic.
			ctx := context.Background()
			l.Info(ctx, "info message", logger.String("k", "v"))
			l.Debug(ctx, "debug message", logger.Int("n", 1))
			l.Warn(ctx, "warn message", logger.Any("v", struct{}{}))
			l.Error(ctx, "error message", logger.Error(nil))
		})

		Convey("Then Named returns a derived logger", func() {
			l := logger.Named("sub")
			So(l, ShouldNotBeNil)
			l.Info(context.Background(), "named message")
		})

		Convey("Then Sync never fails", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Known levels parse", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", "", "  INFO "} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("Unknown levels fail", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
