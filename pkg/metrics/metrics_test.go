package metrics_test

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/mpcw/walletd/pkg/metrics"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metric manager options", t, func() {
		Convey("When creating a manager on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			m := metrics.NewManager(
				metrics.WithPrometheusRegistry(registry),
				metrics.WithNamespace("test"),
				metrics.WithSubsystem("walletd"),
				metrics.WithHistogramBuckets([]float64{1, 10, 100}),
			)

			Convey("Then it registers without panicking", func() {
				So(m, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeNil)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording through package helpers", func() {
			// None of these should panic.
			metrics.RecordWalletCreated()
			metrics.RecordWalletImported()
			metrics.RecordWalletExported()
			metrics.RecordAddressDerived()
			metrics.UpdateTotalWallets(3)
			metrics.RecordTransferSubmitted()
			metrics.RecordTransferDuplicate()
			metrics.RecordTransferSettled()
			metrics.RecordTransferFailed()
			metrics.RecordSettlementLatency(12.5)
			metrics.RecordWebhookRegistered()
			metrics.RecordWebhookDelivery()
			metrics.RecordWebhookFailure()
			metrics.RecordWebhookLatency(40)
			metrics.RecordHTTPRequest("wallet_create", "POST", "200")
			metrics.RecordHTTPRequestDuration("wallet_create", "POST", "200", 3.2)
			metrics.UpdateQueueSize(1)
			metrics.UpdateQueueCapacity(100)
			metrics.UpdateQueueUtilization(0.01)
			metrics.RecordQueueEnqueue()
			metrics.RecordQueueDequeue()
			metrics.RecordQueueEnqueueError()
			metrics.UpdateWorkerCount(4)
			metrics.RecordWorkerProcessingLatency(7)
			metrics.RecordWorkerError()
			metrics.UpdateSystemMemoryUsage(1 << 20)
			metrics.UpdateSystemGoroutineCount(42)
			metrics.RecordErrorByComponent("queue", "closed")

			Convey("Then the registry gathers the recorded families", func() {
				families, err := metrics.GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					metrics.RecordTransferSubmitted()
					metrics.UpdateQueueSize(j)
				}
			}()
		}
		wg.Wait()

		Convey("Then gathering still succeeds", func() {
			_, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
