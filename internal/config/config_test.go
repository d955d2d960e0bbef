package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func setKeyPair(t *testing.T) {
	t.Helper()
	t.Setenv("MPCW_API_KEY_NAME", "organizations/test/apiKeys/test")
	t.Setenv("MPCW_API_KEY_PRIVATE", "test-private-key")
}

func TestDefaults(t *testing.T) {
	Convey("Given default configuration", t, func() {
		cfg := New(context.Background())

		So(cfg.Addr, ShouldEqual, ":8000")
		So(cfg.LogLevel, ShouldEqual, "info")
		So(cfg.DefaultNetworkID, ShouldEqual, "base-sepolia")
		So(cfg.DefaultAsset, ShouldEqual, "USDC")
		So(cfg.TransferQueueSize, ShouldBeGreaterThan, 0)
		So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
		So(cfg.ReplayGuardSize, ShouldBeGreaterThan, 0)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given the loader", t, func() {
		ctx := context.Background()

		// Each leaf below runs in the same test process, so env vars set in
		// one branch survive into the next. Clear the file pointer up front
		// so only branches that want a config file see one.
		t.Setenv("MPCW_CONFIG", "")

		Convey("Loading without the API key pair fails", func() {
			t.Setenv("MPCW_API_KEY_NAME", "")
			t.Setenv("MPCW_API_KEY_PRIVATE", "")
			_, err := Load(ctx)
			So(err, ShouldWrap, ErrInvalidConfig)
		})

		Convey("Loading with the key pair set succeeds with defaults", func() {
			setKeyPair(t)
			cfg, err := Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8000")
			So(cfg.APIKeyPrivate, ShouldEqual, "test-private-key")
		})

		Convey("Environment variables override defaults", func() {
			setKeyPair(t)
			t.Setenv("MPCW_ADDR", ":9000")
			t.Setenv("MPCW_QUEUE_SIZE", "123")
			t.Setenv("MPCW_DEFAULT_ASSET", "EURC")

			cfg, err := Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9000")
			So(cfg.TransferQueueSize, ShouldEqual, 123)
			So(cfg.DefaultAsset, ShouldEqual, "EURC")
		})

		Convey("A config file overrides defaults and env overrides the file", func() {
			setKeyPair(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			So(os.WriteFile(path, []byte("addr: \":7000\"\nworker_count: 3\n"), 0o600), ShouldBeNil)
			t.Setenv("MPCW_CONFIG", path)
			t.Setenv("MPCW_ADDR", ":7001")

			cfg, err := Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7001")
			So(cfg.WorkerCount, ShouldEqual, 3)
		})

		Convey("A missing config file fails loading", func() {
			setKeyPair(t)
			t.Setenv("MPCW_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
			_, err := Load(ctx)
			So(err, ShouldWrap, ErrLoadConfig)
		})

		Convey("A non-positive queue size is rejected", func() {
			setKeyPair(t)
			t.Setenv("MPCW_QUEUE_SIZE", "0")
			_, err := Load(ctx)
			So(err, ShouldWrap, ErrInvalidConfig)
		})
	})
}
