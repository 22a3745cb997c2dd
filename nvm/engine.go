package nvm

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"fstore/hal"
)

const (
	stateIdle uint32 = iota
	stateBusyWrite
	stateBusyErase
)

// Engine dispatches validated write/read/erase operations to its backend and
// tracks the single outstanding operation.
//
// Operations must be issued from one goroutine (the cooperative caller); the
// only concurrent path into the engine is the backend's completion delivery,
// which touches the state cell and the completion slot and nothing else.
type Engine struct {
	backend Backend
	geo     Geometry
	region  Region
	log     hal.Logger

	state atomic.Uint32

	// Outstanding operation span, written by the submitter before the
	// backend call; Read consults it for overlap rejection.
	pendingAddr uint32
	pendingLen  uint32

	// Most recent completion. Written by the delivery context before the
	// state swings back to idle, read by waiters after observing idle.
	last Completion
}

// Config carries the construction-time inputs: region bounds, the bound
// backend, the writable flash limit, and the logging sink.
type Config struct {
	Backend Backend
	Start   uint32
	End     uint32
	// Limit is the first byte past writable flash; see WritableLimit.
	Limit uint32
	// Log receives a line per completion event. Optional.
	Log hal.Logger
}

// New validates the configuration, binds the backend, and registers the
// completion handler. The engine starts idle.
func New(cfg Config) (*Engine, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("%w: no backend", ErrNotInitialized)
	}
	geo := cfg.Backend.Geometry()
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	region, err := NewRegion(cfg.Start, cfg.End, geo, cfg.Limit)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		backend: cfg.Backend,
		geo:     geo,
		region:  region,
		log:     cfg.Log,
	}
	cfg.Backend.SetHandler(e.complete)
	return e, nil
}

// Geometry returns the physical flash constants.
func (e *Engine) Geometry() Geometry { return e.geo }

// Region returns the address range this engine owns.
func (e *Engine) Region() Region { return e.region }

// IsBusy reports whether a write or erase is outstanding.
func (e *Engine) IsBusy() bool {
	return e != nil && e.state.Load() != stateIdle
}

// Write submits an asynchronous program operation. addr must be aligned to
// the program unit, len(data) a positive multiple of it, and the span must
// lie within the region. The caller awaits the result via WaitReady.
func (e *Engine) Write(addr uint32, data []byte) error {
	if e == nil || e.backend == nil {
		return ErrNotInitialized
	}
	n := uint32(len(data))
	if n == 0 {
		return ErrZeroLength
	}
	if addr%e.geo.ProgramUnit != 0 || n%e.geo.ProgramUnit != 0 {
		return fmt.Errorf("%w: addr %#x len %d vs program unit %d", ErrMisaligned, addr, n, e.geo.ProgramUnit)
	}
	if !e.region.Contains(addr, n) {
		return fmt.Errorf("%w: write [%#x, %#x) outside [%#x, %#x)", ErrOutOfRange, addr, addr+n, e.region.Start, e.region.End)
	}

	if !e.state.CompareAndSwap(stateIdle, stateBusyWrite) {
		return ErrNotReady
	}
	e.pendingAddr = addr
	e.pendingLen = n

	if err := e.backend.Program(addr, data); err != nil {
		e.state.Store(stateIdle)
		return fmt.Errorf("%w: %v", ErrBackendRejected, err)
	}
	return nil
}

// Erase submits an asynchronous erase of pages whole erase units starting at
// addr, which must sit on an erase-unit boundary.
func (e *Engine) Erase(addr, pages uint32) error {
	if e == nil || e.backend == nil {
		return ErrNotInitialized
	}
	if pages == 0 {
		return ErrZeroLength
	}
	if addr%e.geo.EraseUnit != 0 {
		return fmt.Errorf("%w: addr %#x vs erase unit %d", ErrMisaligned, addr, e.geo.EraseUnit)
	}
	span := uint64(pages) * uint64(e.geo.EraseUnit)
	if span > uint64(^uint32(0)) || !e.region.Contains(addr, uint32(span)) {
		return fmt.Errorf("%w: erase of %d pages at %#x outside [%#x, %#x)", ErrOutOfRange, pages, addr, e.region.Start, e.region.End)
	}

	if !e.state.CompareAndSwap(stateIdle, stateBusyErase) {
		return ErrNotReady
	}
	e.pendingAddr = addr
	e.pendingLen = uint32(span)

	if err := e.backend.EraseBlocks(addr, pages); err != nil {
		e.state.Store(stateIdle)
		return fmt.Errorf("%w: %v", ErrBackendRejected, err)
	}
	return nil
}

// Read copies up to min(n, len(out)) bytes starting at addr into out and
// returns the count actually read. It is synchronous and permitted while an
// operation is outstanding, unless that operation's range overlaps the
// requested span.
func (e *Engine) Read(addr, n uint32, out []byte) (uint32, error) {
	if e == nil || e.backend == nil {
		return 0, ErrNotInitialized
	}
	if n > uint32(len(out)) {
		n = uint32(len(out))
	}
	if n == 0 {
		return 0, nil
	}
	if !e.region.Contains(addr, n) {
		return 0, fmt.Errorf("%w: read [%#x, %#x) outside [%#x, %#x)", ErrOutOfRange, addr, addr+n, e.region.Start, e.region.End)
	}
	if e.state.Load() != stateIdle && spansOverlap(addr, n, e.pendingAddr, e.pendingLen) {
		return 0, ErrNotReady
	}

	nr, err := e.backend.ReadAt(out[:n], addr)
	if err != nil {
		return uint32(nr), fmt.Errorf("%w: %v", ErrBackendRejected, err)
	}
	return uint32(nr), nil
}

// WaitReady blocks, yielding the processor each iteration, until the
// outstanding operation completes, and returns its completion event. It
// returns immediately when the engine is idle. A stuck backend blocks
// forever; use WaitReadyContext for a bounded wait.
func (e *Engine) WaitReady() Completion {
	for e.state.Load() != stateIdle {
		runtime.Gosched()
	}
	return e.last
}

// WaitReadyContext is WaitReady with a caller-supplied deadline or cancel.
func (e *Engine) WaitReadyContext(ctx context.Context) (Completion, error) {
	for e.state.Load() != stateIdle {
		if err := ctx.Err(); err != nil {
			return Completion{}, err
		}
		runtime.Gosched()
	}
	return e.last, nil
}

// complete runs in the backend's delivery context. It records the outcome,
// reports it, and returns the engine to idle. A failed operation does not
// block further operations; the failure travels only in the event.
func (e *Engine) complete(c Completion) {
	e.last = c
	if e.log != nil {
		if c.Err != nil {
			e.log.WriteLineString(fmt.Sprintf("flash: %s at %#x failed: %v", c.Kind, c.Addr, c.Err))
		} else if c.Kind == KindErase {
			e.log.WriteLineString(fmt.Sprintf("flash: erased %d pages from %#x", c.Len, c.Addr))
		} else {
			e.log.WriteLineString(fmt.Sprintf("flash: wrote %d bytes at %#x", c.Len, c.Addr))
		}
	}
	e.state.Store(stateIdle)
}

func spansOverlap(aAddr, aLen, bAddr, bLen uint32) bool {
	aEnd := uint64(aAddr) + uint64(aLen)
	bEnd := uint64(bAddr) + uint64(bLen)
	return uint64(aAddr) < bEnd && uint64(bAddr) < aEnd
}
