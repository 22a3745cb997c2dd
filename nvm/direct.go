package nvm

import (
	"fmt"

	"fstore/hal"
)

type directOp struct {
	kind  Kind
	addr  uint32
	data  []byte
	pages uint32
}

// DirectBackend issues operations straight to the memory controller. It must
// only be bound when no co-resident controller task owns the peripheral; the
// wiring code enforces that by constructing exactly one owner.
//
// Program and erase run on the backend's own goroutine, which is the
// asynchronous delivery context for completion events.
type DirectBackend struct {
	ctl     hal.FlashController
	handler func(Completion)
	ops     chan directOp
}

// NewDirect returns a backend over the given controller and starts its
// execution context.
func NewDirect(ctl hal.FlashController) *DirectBackend {
	b := &DirectBackend{ctl: ctl, ops: make(chan directOp, 1)}
	go b.run()
	return b
}

// Close stops the execution context. No operation may be outstanding.
func (b *DirectBackend) Close() {
	close(b.ops)
}

func (b *DirectBackend) Geometry() Geometry {
	return Geometry{
		EraseUnit:   b.ctl.EraseBlockBytes(),
		ProgramUnit: b.ctl.ProgramUnitBytes(),
	}
}

// SetHandler registers the completion handler. Must be called before the
// first submission.
func (b *DirectBackend) SetHandler(fn func(Completion)) {
	b.handler = fn
}

func (b *DirectBackend) Program(addr uint32, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	b.ops <- directOp{kind: KindWrite, addr: addr, data: cp}
	return nil
}

func (b *DirectBackend) EraseBlocks(addr, pages uint32) error {
	b.ops <- directOp{kind: KindErase, addr: addr, pages: pages}
	return nil
}

func (b *DirectBackend) ReadAt(p []byte, addr uint32) (int, error) {
	return b.ctl.ReadAt(p, addr)
}

func (b *DirectBackend) run() {
	for op := range b.ops {
		c := Completion{Kind: op.kind, Addr: op.addr}
		switch op.kind {
		case KindWrite:
			c.Len = uint32(len(op.data))
			if _, err := b.ctl.WriteAt(op.data, op.addr); err != nil {
				c.Err = fmt.Errorf("%w: %v", ErrOperationFailed, err)
			}
		case KindErase:
			c.Len = op.pages
			if err := b.ctl.Erase(op.addr, op.pages*b.ctl.EraseBlockBytes()); err != nil {
				c.Err = fmt.Errorf("%w: %v", ErrOperationFailed, err)
			}
		}
		if fn := b.handler; fn != nil {
			fn(c)
		}
	}
}
