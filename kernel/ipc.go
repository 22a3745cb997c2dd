package kernel

import (
	"runtime"
	"sync/atomic"
)

// MaxMessageBytes is the maximum payload size for IPC messages.
const MaxMessageBytes = 1024

// Message is a fixed-size message envelope.
type Message struct {
	From Endpoint
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
}

const mailboxSlots = 8

// mailboxSlot pairs a message with its commit sequence. A slot holding
// ticket t is published by storing t+1 into seq after the message copy, so
// the consumer never observes a half-written message.
type mailboxSlot struct {
	seq atomic.Uint32
	msg Message
}

// Mailbox is a fixed-size multi-producer, single-consumer queue.
// It is designed for bare-metal use: no allocations, busy-wait with Gosched().
// The flash completion path posts into it from its delivery context, so no
// slot operation may block.
type Mailbox struct {
	_     [0]func() // prevent accidental copying.
	head  atomic.Uint32
	tail  atomic.Uint32
	slots [mailboxSlots]mailboxSlot
}

// TrySend attempts to enqueue a message, returning false if the mailbox is full.
func (mb *Mailbox) TrySend(msg Message) bool {
	head := mb.head.Load()
	tail := mb.tail.Load()
	if head-tail >= mailboxSlots {
		return false
	}

	// Reserve a ticket.
	if !mb.head.CompareAndSwap(head, head+1) {
		return false
	}

	// Copy first, then publish. TryRecv waits on seq, not on head, so the
	// message is visible only once the copy is complete.
	s := &mb.slots[head%mailboxSlots]
	s.msg = msg
	s.seq.Store(head + 1)
	return true
}

// Send enqueues a message, blocking until it succeeds.
func (mb *Mailbox) Send(msg Message) {
	for !mb.TrySend(msg) {
		runtime.Gosched()
	}
}

// TryRecv attempts to dequeue one message, returning false if none is
// committed. A reserved but not yet published slot reads as empty, which
// keeps delivery in ticket order.
func (mb *Mailbox) TryRecv() (Message, bool) {
	tail := mb.tail.Load()
	s := &mb.slots[tail%mailboxSlots]
	if s.seq.Load() != tail+1 {
		return Message{}, false
	}

	msg := s.msg
	mb.tail.Store(tail + 1)
	return msg, true
}

// Recv blocks until one message is available.
func (mb *Mailbox) Recv() Message {
	for {
		msg, ok := mb.TryRecv()
		if ok {
			return msg
		}
		runtime.Gosched()
	}
}
