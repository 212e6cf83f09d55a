// Package watch confirms pending transactions by combining two independent
// observation paths: a push subscription fed by the gateway webhook and a
// fixed-interval poll of the ledger row. Neither path is trusted alone; the
// terminal transition is applied idempotently no matter which one wins.
package watch

import (
	"context"
	"log"
	"time"

	"sokoni/internal/domain"
)

// Outcome is the result of one bounded confirmation wait.
type Outcome struct {
	Status   string // COMPLETED, FAILED, CANCELLED, or PENDING when timed out
	TimedOut bool
}

// Watcher waits for one transaction to reach a terminal status.
type Watcher struct {
	// Fetch is the pull path: it re-reads the ledger row's status.
	Fetch func(ctx context.Context) (string, error)
	// Push is the push path, usually a Broker subscription.
	Push <-chan string
	// Interval is the poll period; Window bounds the whole wait.
	Interval time.Duration
	Window   time.Duration
}

func terminal(status string) bool {
	switch status {
	case domain.TxCompleted, domain.TxFailed, domain.TxCancelled:
		return true
	}
	return false
}

// Wait blocks until a terminal status is observed, the window elapses, or ctx
// is cancelled. onCompleted runs exactly once if and when COMPLETED is
// observed, guarded locally so duplicate deliveries (push then poll, or a
// repeated webhook) never double-trigger the side effect. Cancelling ctx stops
// observation only; it does not touch the underlying gateway transaction.
func (w *Watcher) Wait(ctx context.Context, onCompleted func()) Outcome {
	interval := w.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	window := w.Window
	if window <= 0 {
		window = 90 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(window)
	defer deadline.Stop()

	activated := false
	apply := func(status string) Outcome {
		if status == domain.TxCompleted && !activated {
			activated = true
			if onCompleted != nil {
				onCompleted()
			}
		}
		return Outcome{Status: status}
	}

	for {
		select {
		case <-ctx.Done():
			return Outcome{Status: domain.TxPending, TimedOut: true}
		case <-deadline.C:
			return Outcome{Status: domain.TxPending, TimedOut: true}
		case status, ok := <-w.Push:
			if !ok {
				w.Push = nil // poll path continues alone
				continue
			}
			if terminal(status) {
				return apply(status)
			}
		case <-ticker.C:
			if w.Fetch == nil {
				continue
			}
			status, err := w.Fetch(ctx)
			if err != nil {
				log.Printf("[WATCH] poll: %v", err)
				continue
			}
			if terminal(status) {
				return apply(status)
			}
		}
	}
}
