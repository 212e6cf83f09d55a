package watch

import "sync"

// Broker is the in-process push channel for transaction status changes. The
// webhook handler publishes to it; watchers and the websocket feed subscribe
// by ledger reference.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan string]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan string]struct{})}
}

// Subscribe registers for status updates on one reference. The returned cancel
// func must be called to release the subscription.
func (b *Broker) Subscribe(reference string) (<-chan string, func()) {
	ch := make(chan string, 4)
	b.mu.Lock()
	if b.subs[reference] == nil {
		b.subs[reference] = make(map[chan string]struct{})
	}
	b.subs[reference][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if m := b.subs[reference]; m != nil {
			delete(m, ch)
			if len(m) == 0 {
				delete(b.subs, reference)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans a status out to all subscribers of the reference. Slow
// subscribers are skipped rather than blocked on; the pull path covers any
// dropped delivery.
func (b *Broker) Publish(reference, status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[reference] {
		select {
		case ch <- status:
		default:
		}
	}
}
