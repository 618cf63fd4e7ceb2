package ws

import "sync"

// Outbox is a bounded per-connection send queue. Producers never block:
// when the queue is full the message is dropped. A writer goroutine owned by
// the connection drains C.
type Outbox struct {
	ch     chan Message
	mu     sync.RWMutex
	closed bool
}

func NewOutbox(size int) *Outbox {
	if size < 1 {
		size = 1
	}
	return &Outbox{ch: make(chan Message, size)}
}

// Send enqueues msg and reports whether it was accepted.
func (o *Outbox) Send(msg Message) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return false
	}
	select {
	case o.ch <- msg:
		return true
	default:
		return false
	}
}

func (o *Outbox) C() <-chan Message {
	return o.ch
}

// Close stops further sends and closes C once. Queued messages can still be
// drained.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.ch)
}
