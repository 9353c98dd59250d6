package dispatch

import (
	"context"
	"sync"
)

// Handler processes one normalized inbound event.
type Handler func(ctx context.Context, userID, token string)

// Dispatcher guarantees that events for one user are handled strictly in
// arrival order by a single worker, while different users proceed
// concurrently. Workers are started lazily and exit once their queue
// drains, so an idle bot holds no goroutines.
type Dispatcher struct {
	mu      sync.Mutex
	pending map[string][]string
	handler Handler
	wg      sync.WaitGroup
	closed  bool
}

func New(handler Handler) *Dispatcher {
	return &Dispatcher{
		pending: make(map[string][]string),
		handler: handler,
	}
}

// Dispatch enqueues one event. It never blocks on the handler. Events
// arriving after Shutdown are dropped.
func (d *Dispatcher) Dispatch(userID, token string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	queue, running := d.pending[userID]
	d.pending[userID] = append(queue, token)
	if !running {
		d.wg.Add(1)
		go d.drain(userID)
	}
}

// drain is the single worker for one user. Presence of the user's key in
// pending means a worker is running; the key is removed only once the queue
// is observed empty under the lock, so no event can slip in unprocessed.
func (d *Dispatcher) drain(userID string) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		queue := d.pending[userID]
		if len(queue) == 0 {
			delete(d.pending, userID)
			d.mu.Unlock()
			return
		}
		token := queue[0]
		d.pending[userID] = queue[1:]
		d.mu.Unlock()

		d.handler(context.Background(), userID, token)
	}
}

// Shutdown stops accepting events and waits for in-flight work to finish
// or the context to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
