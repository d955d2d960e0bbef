package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mpcw/walletd/internal/domain/model"
)

func pendingTransfer(id string) model.Transfer {
	return model.Transfer{
		ID:           id,
		WalletID:     "w-1",
		ToAddress:    "0x1111111111111111111111111111111111111111",
		Amount:       "100",
		Asset:        "USDC",
		TransferType: model.TransferTypeGasless,
		Status:       model.TransferStatusPending,
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, pendingTransfer("t1")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "t1" {
		t.Errorf("expected t1, got %v", got.ID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, pendingTransfer("t1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, pendingTransfer("t2")) {
		t.Error("expected enqueue to succeed")
	}

	if q.Enqueue(ctx, pendingTransfer("t3")) {
		t.Error("expected enqueue to fail at capacity")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if !q.Enqueue(ctx, pendingTransfer("t1")) {
		t.Error("expected enqueue to succeed")
	}

	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("double close should report ErrClosed, got %v", err)
	}

	if q.Enqueue(ctx, pendingTransfer("t2")) {
		t.Error("expected enqueue to fail after close")
	}

	// Remaining transfers drain, then the channel closes.
	ch := q.Dequeue(ctx)
	if got := <-ch; got.ID != "t1" {
		t.Errorf("expected t1, got %v", got.ID)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected dequeue channel to be closed")
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for dequeue channel to close")
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000), WithBufferSize(1000))
	ctx := context.Background()

	const producers = 10
	const perProducer = 50

	done := make(chan struct{})
	for p := 0; p < producers; p++ {
		go func(p int) {
			for i := 0; i < perProducer; i++ {
				q.Enqueue(ctx, pendingTransfer(fmt.Sprintf("t-%d-%d", p, i)))
			}
			done <- struct{}{}
		}(p)
	}
	for p := 0; p < producers; p++ {
		<-done
	}

	if l := q.Len(ctx); l != producers*perProducer {
		t.Errorf("expected %d queued transfers, got %d", producers*perProducer, l)
	}
}
