package kernel

import "sync/atomic"

// SharedBufferBytes is one erase page: the largest single transfer the
// storage protocol needs.
const SharedBufferBytes = 4096

// SharedBuffer is a shared-memory region for bulk transfers that do not fit
// in a mailbox message.
//
// There is no memory protection: correctness relies on the protocol keeping
// at most one transfer in flight, which the engine's operation serialization
// guarantees.
type SharedBuffer struct {
	seq atomic.Uint32
	buf [SharedBufferBytes]byte
	n   atomic.Uint32
}

// Write copies data into the buffer and bumps the sequence counter.
func (b *SharedBuffer) Write(data []byte) uint32 {
	count := uint32(len(data))
	if count > SharedBufferBytes {
		count = SharedBufferBytes
	}

	copy(b.buf[:count], data[:count])
	b.n.Store(count)
	return b.seq.Add(1)
}

// Read returns the last written data and the current sequence number.
func (b *SharedBuffer) Read(dst []byte) (seq uint32, count int) {
	seq = b.seq.Load()
	n := b.n.Load()
	if n > uint32(len(dst)) {
		n = uint32(len(dst))
	}
	copy(dst[:n], b.buf[:n])
	return seq, int(n)
}
