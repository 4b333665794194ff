// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import "sync"

// Hub is the subscription registry backends use to fan out Watch
// deliveries. Each watcher gets its own goroutine and a one-slot mailbox,
// so slow callbacks never block writers and each watcher always converges
// on the latest snapshot for its path (intermediate values coalesce).
type Hub struct {
	mu       sync.Mutex
	nextID   int
	watchers map[int]*watcher
	closed   bool
}

type watcher struct {
	path string
	fn   func(Snapshot)

	mu      sync.Mutex
	pending *Snapshot
	wake    chan struct{}
	done    chan struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[int]*watcher)}
}

// Watch registers fn for path and immediately queues the initial
// snapshot. The returned unsubscribe is idempotent: releasing twice is
// safe and removes the watcher exactly once.
func (h *Hub) Watch(path string, fn func(Snapshot), initial Snapshot) UnsubscribeFunc {
	w := &watcher{
		path: path,
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return func() {}
	}
	id := h.nextID
	h.nextID++
	h.watchers[id] = w
	h.mu.Unlock()

	go w.run()
	w.deliver(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			_, present := h.watchers[id]
			delete(h.watchers, id)
			h.mu.Unlock()
			// Close already stopped watchers it removed; only stop ours.
			if present {
				close(w.done)
			}
		})
	}
}

// Notify queues a fresh snapshot for every watcher whose path is related
// to the changed path. materialize is called once per affected watcher
// path to build the snapshot that watcher sees.
func (h *Hub) Notify(changed string, materialize func(path string) Snapshot) {
	h.mu.Lock()
	var affected []*watcher
	for _, w := range h.watchers {
		if Related(w.path, changed) {
			affected = append(affected, w)
		}
	}
	h.mu.Unlock()

	for _, w := range affected {
		w.deliver(materialize(w.path))
	}
}

// Close drops all watchers and stops their goroutines. Subsequent Watch
// calls return a no-op unsubscribe.
func (h *Hub) Close() {
	h.mu.Lock()
	ws := h.watchers
	h.watchers = make(map[int]*watcher)
	h.closed = true
	h.mu.Unlock()

	for _, w := range ws {
		close(w.done)
	}
}

func (w *watcher) deliver(s Snapshot) {
	w.mu.Lock()
	w.pending = &s
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case <-w.wake:
			w.mu.Lock()
			s := w.pending
			w.pending = nil
			w.mu.Unlock()
			if s != nil {
				w.fn(*s)
			}
		}
	}
}

// BoolFeed carries the connectivity signal: subscribers get the current
// value on subscribe and every change after, in order.
type BoolFeed struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]func(bool)
	current bool
}

// NewBoolFeed returns a feed holding the given starting value.
func NewBoolFeed(initial bool) *BoolFeed {
	return &BoolFeed{subs: make(map[int]func(bool)), current: initial}
}

// Subscribe registers fn and invokes it with the current value.
func (f *BoolFeed) Subscribe(fn func(bool)) UnsubscribeFunc {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	current := f.current
	f.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Set publishes a new value to all subscribers if it changed.
func (f *BoolFeed) Set(v bool) {
	f.mu.Lock()
	if f.current == v {
		f.mu.Unlock()
		return
	}
	f.current = v
	subs := make([]func(bool), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}
