package watch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"sokoni/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitPushPathWinsOverPoll(t *testing.T) {
	push := make(chan string, 4)
	// duplicate delivery: webhook retries push COMPLETED twice
	push <- domain.TxCompleted
	push <- domain.TxCompleted

	var activations int32
	w := &Watcher{
		// poll would also observe COMPLETED if it ever fired
		Fetch:    func(ctx context.Context) (string, error) { return domain.TxCompleted, nil },
		Push:     push,
		Interval: 50 * time.Millisecond,
		Window:   time.Second,
	}
	out := w.Wait(context.Background(), func() { atomic.AddInt32(&activations, 1) })
	assert.Equal(t, domain.TxCompleted, out.Status)
	assert.False(t, out.TimedOut)
	assert.Equal(t, int32(1), atomic.LoadInt32(&activations))
}

func TestWaitPollPathAlone(t *testing.T) {
	statuses := []string{domain.TxPending, domain.TxPending, domain.TxCompleted}
	var calls int32
	w := &Watcher{
		Fetch: func(ctx context.Context) (string, error) {
			i := atomic.AddInt32(&calls, 1) - 1
			if int(i) >= len(statuses) {
				return domain.TxCompleted, nil
			}
			return statuses[i], nil
		},
		Push:     make(chan string),
		Interval: 5 * time.Millisecond,
		Window:   time.Second,
	}
	var activations int32
	out := w.Wait(context.Background(), func() { atomic.AddInt32(&activations, 1) })
	assert.Equal(t, domain.TxCompleted, out.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&activations))
}

func TestWaitFailedDoesNotActivate(t *testing.T) {
	push := make(chan string, 1)
	push <- domain.TxFailed
	w := &Watcher{Push: push, Interval: time.Second, Window: time.Second}
	var activations int32
	out := w.Wait(context.Background(), func() { atomic.AddInt32(&activations, 1) })
	assert.Equal(t, domain.TxFailed, out.Status)
	assert.Equal(t, int32(0), atomic.LoadInt32(&activations))
}

func TestWaitTimeout(t *testing.T) {
	w := &Watcher{
		Fetch:    func(ctx context.Context) (string, error) { return domain.TxPending, nil },
		Push:     make(chan string),
		Interval: 5 * time.Millisecond,
		Window:   30 * time.Millisecond,
	}
	out := w.Wait(context.Background(), nil)
	assert.True(t, out.TimedOut)
	assert.Equal(t, domain.TxPending, out.Status)
}

func TestWaitContextCancelStopsObservation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		Fetch:    func(ctx context.Context) (string, error) { return domain.TxPending, nil },
		Push:     make(chan string),
		Interval: 5 * time.Millisecond,
		Window:   time.Minute,
	}
	done := make(chan Outcome, 1)
	go func() { done <- w.Wait(ctx, nil) }()
	cancel()
	select {
	case out := <-done:
		assert.True(t, out.TimedOut)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}

func TestBrokerFanOutAndCancel(t *testing.T) {
	b := NewBroker()
	ch1, cancel1 := b.Subscribe("soko_1_1_aaaa")
	ch2, cancel2 := b.Subscribe("soko_1_1_aaaa")
	defer cancel2()

	b.Publish("soko_1_1_aaaa", domain.TxCompleted)
	require.Equal(t, domain.TxCompleted, <-ch1)
	require.Equal(t, domain.TxCompleted, <-ch2)

	// other references are not delivered
	b.Publish("soko_9_9_zzzz", domain.TxFailed)
	select {
	case s := <-ch1:
		t.Fatalf("unexpected delivery %q", s)
	default:
	}

	cancel1()
	b.Publish("soko_1_1_aaaa", domain.TxFailed)
	select {
	case s := <-ch1:
		t.Fatalf("delivery after cancel %q", s)
	default:
	}
	assert.Equal(t, domain.TxFailed, <-ch2)
}
