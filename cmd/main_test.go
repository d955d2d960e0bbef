package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/mpcw/walletd/internal/adapters/http/docs"
	app "github.com/mpcw/walletd/internal/app"
	"github.com/mpcw/walletd/internal/config"
	"github.com/mpcw/walletd/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			t.Setenv("MPCW_API_KEY_NAME", "organizations/test/apiKeys/test")
			t.Setenv("MPCW_API_KEY_PRIVATE", "test-private-key")
			t.Setenv("MPCW_ADDR", ":8000")
			t.Setenv("MPCW_QUEUE_SIZE", "1000")
			t.Setenv("MPCW_WORKER_COUNT", "4")

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.TransferQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWalletsHome(t.TempDir()),
					app.WithPassphrase("pass"),
					app.WithQueueSize(2000),
					app.WithWorkerCount(8),
					app.WithWebhookTimeout(time.Second),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When registering the docs routes on a mux", func() {
			ctx := context.Background()
			mux := http.NewServeMux()
			docs.Register(ctx, mux)

			convey.Convey("Then the OpenAPI document is served", func() {
				req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, req)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}
