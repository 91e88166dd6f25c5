// Package live turns one-shot store queries into subscriptions that re-run
// whenever one of the tables they read from changes.
package live

import (
	"context"
	"sync"
)

// Hub fans table change notifications out to the subscriptions watching them.
type Hub struct {
	mu       sync.Mutex
	watchers map[string]map[*watcher]struct{}
}

type watcher struct {
	signal chan struct{}
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[*watcher]struct{})}
}

// Notify marks tables as changed. It never blocks: a subscription that has
// not yet consumed an earlier signal simply reloads once.
func (h *Hub) Notify(tables ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, t := range tables {
		for w := range h.watchers[t] {
			select {
			case w.signal <- struct{}{}:
			default:
			}
		}
	}
}

func (h *Hub) register(tables []string) *watcher {
	w := &watcher{signal: make(chan struct{}, 1)}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range tables {
		set, ok := h.watchers[t]
		if !ok {
			set = make(map[*watcher]struct{})
			h.watchers[t] = set
		}
		set[w] = struct{}{}
	}
	return w
}

func (h *Hub) unregister(w *watcher, tables []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range tables {
		delete(h.watchers[t], w)
		if len(h.watchers[t]) == 0 {
			delete(h.watchers, t)
		}
	}
}

func (h *Hub) watching(table string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[table])
}

// Loader produces the current value of a query.
type Loader[V any] func(ctx context.Context) (V, error)

// Subscription delivers the current value of a query and every later value
// after a change. Values produced while the subscriber is busy are conflated.
type Subscription[V any] struct {
	ch     chan V
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Watch registers for changes on tables, loads the current value and returns.
// The loaded value is the first one received from C, so it always reflects the
// state before anything the caller does afterwards.
func Watch[V any](ctx context.Context, hub *Hub, tables []string, load Loader[V]) (*Subscription[V], error) {
	// Register before loading so a write racing the first load still
	// triggers a reload.
	w := hub.register(tables)

	first, err := load(ctx)
	if err != nil {
		hub.unregister(w, tables)
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &Subscription[V]{
		ch:     make(chan V, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.ch <- first

	go s.run(runCtx, hub, w, tables, load)
	return s, nil
}

func (s *Subscription[V]) run(ctx context.Context, hub *Hub, w *watcher, tables []string, load Loader[V]) {
	defer close(s.done)
	defer close(s.ch)
	defer hub.unregister(w, tables)

	var (
		pending V
		has     bool
	)
	for {
		var out chan V
		if has {
			out = s.ch
		}

		select {
		case <-ctx.Done():
			return
		case <-w.signal:
			v, err := load(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.setErr(err)
				}
				return
			}
			pending, has = v, true
		case out <- pending:
			has = false
		}
	}
}

// C yields values until the subscription is closed or a reload fails.
func (s *Subscription[V]) C() <-chan V {
	return s.ch
}

// Err reports the reload failure that ended the subscription, if any.
func (s *Subscription[V]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close detaches the subscriber and waits for the delivery goroutine to exit.
// Work started on behalf of the subscription elsewhere is not affected.
func (s *Subscription[V]) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription[V]) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
