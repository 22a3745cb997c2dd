package kernel

import (
	"runtime"
	"sync/atomic"
)

// System routes messages between the storage engine, the flash controller
// task, and the logging sink, and carries the process timebase.
type System struct {
	mbox   [numEndpoints]Mailbox
	shared SharedBuffer
	ticks  atomic.Uint64
}

// NewSystem creates a kernel instance.
func NewSystem() *System {
	return &System{}
}

// CountTicks consumes a HAL tick stream and advances the kernel tick counter.
func (s *System) CountTicks(ch <-chan uint64) {
	go func() {
		for range ch {
			s.ticks.Add(1)
		}
	}()
}

// Ticks returns the current tick count.
func (s *System) Ticks() uint64 {
	return s.ticks.Load()
}

// Shared returns the bulk transfer buffer.
//
// Payloads larger than MaxMessageBytes (read responses in particular) go
// through it rather than through mailbox copies.
func (s *System) Shared() *SharedBuffer {
	return &s.shared
}

// Send copies the payload into a fixed-size message and enqueues it.
func (s *System) Send(from, to Endpoint, kind uint16, payload []byte) {
	var msg Message
	msg.From = from
	msg.To = to
	msg.Kind = kind
	if len(payload) > 0 {
		if len(payload) > MaxMessageBytes {
			payload = payload[:MaxMessageBytes]
		}
		msg.Len = uint16(len(payload))
		copy(msg.Data[:], payload)
	}
	s.mbox[to].Send(msg)
}

// TrySend is Send without blocking: it reports false when the destination
// mailbox is full. Delivery contexts that must not block use it and accept
// the drop.
func (s *System) TrySend(from, to Endpoint, kind uint16, payload []byte) bool {
	var msg Message
	msg.From = from
	msg.To = to
	msg.Kind = kind
	if len(payload) > 0 {
		if len(payload) > MaxMessageBytes {
			payload = payload[:MaxMessageBytes]
		}
		msg.Len = uint16(len(payload))
		copy(msg.Data[:], payload)
	}
	return s.mbox[to].TrySend(msg)
}

// Recv blocks until a message is available for the endpoint.
func (s *System) Recv(to Endpoint) Message {
	return s.mbox[to].Recv()
}

// TryRecv dequeues one message for the endpoint without blocking.
func (s *System) TryRecv(to Endpoint) (Message, bool) {
	return s.mbox[to].TryRecv()
}

// Yield yields execution to let other tasks run.
func (s *System) Yield() {
	runtime.Gosched()
}
