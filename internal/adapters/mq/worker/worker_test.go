package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mpcw/walletd/internal/adapters/mq/queue"
	"github.com/mpcw/walletd/internal/adapters/mq/worker"
	"github.com/mpcw/walletd/internal/domain/model"
	"github.com/mpcw/walletd/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingSettler struct {
	mu      sync.Mutex
	settled []model.Transfer
	err     error
}

func (s *recordingSettler) Settle(_ context.Context, t model.Transfer) (model.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		t.Status = model.TransferStatusFailed
		return t, s.err
	}
	t.Status = model.TransferStatusComplete
	s.settled = append(s.settled, t)
	return t, nil
}

func (s *recordingSettler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.settled)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.Transfer
}

func (n *recordingNotifier) TransferSettled(_ context.Context, t model.Transfer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, t)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func pending(id string) model.Transfer {
	return model.Transfer{
		ID:        id,
		WalletID:  "w-1",
		ToAddress: "0x1111111111111111111111111111111111111111",
		Amount:    "10",
		Asset:     "USDC",
		Status:    model.TransferStatusPending,
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestRelayerProcessing(t *testing.T) {
	Convey("Given a relayer over a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		settler := &recordingSettler{}
		notifier := &recordingNotifier{}
		w := worker.NewRelayer(q, settler, notifier, worker.WithName("relayer-test"))
		go w.Run(ctx)

		Convey("When a transfer is enqueued", func() {
			So(q.Enqueue(ctx, pending("t1")), ShouldBeTrue)

			Convey("Then it settles and the notifier fires", func() {
				So(waitFor(func() bool { return settler.count() == 1 }), ShouldBeTrue)
				So(waitFor(func() bool { return notifier.count() == 1 }), ShouldBeTrue)
				So(notifier.events[0].Status, ShouldEqual, model.TransferStatusComplete)
			})
		})

		Convey("When settlement fails", func() {
			settler.err = errors.New("insufficient funds")
			So(q.Enqueue(ctx, pending("t2")), ShouldBeTrue)

			Convey("Then no notification is sent", func() {
				time.Sleep(50 * time.Millisecond)
				So(notifier.count(), ShouldEqual, 0)
			})
		})

		Convey("When shut down", func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Second)
			defer cancelShutdown()
			So(w.Shutdown(shutdownCtx), ShouldBeNil)
		})
	})
}

func TestPoolProcessing(t *testing.T) {
	Convey("Given a pool of relayers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		settler := &recordingSettler{}
		notifier := &recordingNotifier{}
		pool := worker.NewPool(4, q, settler, notifier)
		pool.Start(ctx)

		Convey("When many transfers are enqueued", func() {
			const n = 20
			for i := 0; i < n; i++ {
				So(q.Enqueue(ctx, pending("t"+string(rune('a'+i)))), ShouldBeTrue)
			}

			Convey("Then all of them settle", func() {
				So(waitFor(func() bool { return settler.count() == n }), ShouldBeTrue)
				So(waitFor(func() bool { return notifier.count() == n }), ShouldBeTrue)
			})
		})
	})
}
