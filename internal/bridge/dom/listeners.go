package dom

import "sync"

// IdentityAttribute marks elements that take part in picking
const IdentityAttribute = "data-ve-id"

type listener struct {
	id      uint64
	capture bool
	handler Handler
}

// Listeners is a registered-handler table keyed by event kind, for
// implementations of EventTarget.
type Listeners struct {
	mu     sync.Mutex
	nextID uint64
	byKind map[EventKind][]listener
}

// NewListeners creates an empty table
func NewListeners() *Listeners {
	return &Listeners{byKind: make(map[EventKind][]listener)}
}

// Add registers h and returns its cancel capability
func (l *Listeners) Add(kind EventKind, opts ListenOptions, h Handler) Unsubscribe {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.byKind[kind] = append(l.byKind[kind], listener{id: id, capture: opts.Capture, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(kind, id) })
	}
}

func (l *Listeners) remove(kind EventKind, id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.byKind[kind]
	for i, e := range entries {
		if e.id == id {
			l.byKind[kind] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(l.byKind[kind]) == 0 {
		delete(l.byKind, kind)
	}
}

// Snapshot returns the capture and bubble handlers for kind in registration
// order. The result is a copy, so handlers may unsubscribe while it is walked.
func (l *Listeners) Snapshot(kind EventKind) (capture, bubble []Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.byKind[kind] {
		if e.capture {
			capture = append(capture, e.handler)
		} else {
			bubble = append(bubble, e.handler)
		}
	}
	return capture, bubble
}

// Count returns the number of registered listeners across all kinds
func (l *Listeners) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, entries := range l.byKind {
		n += len(entries)
	}
	return n
}

// CountKind returns the number of listeners for kind
func (l *Listeners) CountKind(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKind[kind])
}
