package headless

import (
	"errors"
	"sync"
)

// ErrInvalidTargetOrigin mirrors the SyntaxError postMessage raises
var ErrInvalidTargetOrigin = errors.New("invalid target origin")

// Frame is the parent browsing context of a headless page. It keeps every
// message delivered to it and fans them out to subscribers.
type Frame struct {
	mu       sync.Mutex
	origin   string
	messages [][]byte
	dropped  int
	subs     map[int]chan []byte
	nextSub  int
}

// NewFrame creates a parent frame living at origin
func NewFrame(origin string) *Frame {
	return &Frame{
		origin: origin,
		subs:   make(map[int]chan []byte),
	}
}

// Origin returns the frame's origin
func (f *Frame) Origin() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.origin
}

// SetOrigin moves the frame to origin, as when the parent navigates
func (f *Frame) SetOrigin(origin string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.origin = origin
}

// PostMessage delivers data if targetOrigin matches this frame. A mismatch is
// dropped silently, as a browser would.
func (f *Frame) PostMessage(data []byte, targetOrigin string) error {
	if targetOrigin == "" {
		return ErrInvalidTargetOrigin
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if targetOrigin != "*" && targetOrigin != f.origin {
		f.dropped++
		return nil
	}

	msg := append([]byte(nil), data...)
	f.messages = append(f.messages, msg)
	for _, ch := range f.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Messages returns a copy of every delivered message, oldest first
func (f *Frame) Messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.messages...)
}

// Dropped returns how many messages were discarded for a target mismatch
func (f *Frame) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// Reset forgets delivered messages
func (f *Frame) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = nil
	f.dropped = 0
}

// Subscribe returns a channel receiving messages delivered from now on. The
// channel is buffered; a slow subscriber misses messages rather than blocking
// the page. The cancel func closes the channel.
func (f *Frame) Subscribe(buffer int) (<-chan []byte, func()) {
	if buffer <= 0 {
		buffer = 64
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSub
	f.nextSub++
	ch := make(chan []byte, buffer)
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(ch)
		})
	}
}
