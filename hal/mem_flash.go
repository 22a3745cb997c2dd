package hal

import (
	"fmt"
	"sync"
)

// MemFlash is an in-memory flash controller with NOR semantics. It backs the
// host HAL when no image file is available and serves as the simulated medium
// in tests.
type MemFlash struct {
	mu        sync.Mutex
	mem       []byte
	eraseSize uint32
	progSize  uint32

	failWrites bool
	failErases bool
}

// NewMemFlash returns a controller of the given size with every byte erased.
func NewMemFlash(size, eraseSize, progSize uint32) *MemFlash {
	f := &MemFlash{
		mem:       make([]byte, size),
		eraseSize: eraseSize,
		progSize:  progSize,
	}
	for i := range f.mem {
		f.mem[i] = 0xFF
	}
	return f
}

// FailNextWrites makes subsequent program operations report a medium fault.
// Test hook.
func (f *MemFlash) FailNextWrites(fail bool) {
	f.mu.Lock()
	f.failWrites = fail
	f.mu.Unlock()
}

// FailNextErases makes subsequent erase operations report a medium fault.
// Test hook.
func (f *MemFlash) FailNextErases(fail bool) {
	f.mu.Lock()
	f.failErases = fail
	f.mu.Unlock()
}

func (f *MemFlash) SizeBytes() uint32        { return uint32(len(f.mem)) }
func (f *MemFlash) EraseBlockBytes() uint32  { return f.eraseSize }
func (f *MemFlash) ProgramUnitBytes() uint32 { return f.progSize }

func (f *MemFlash) ReadAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if off >= uint32(len(f.mem)) {
		return 0, fmt.Errorf("flash read at %d: out of range", off)
	}
	n := copy(p, f.mem[off:])
	return n, nil
}

func (f *MemFlash) WriteAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return 0, fmt.Errorf("flash write at %d: medium fault", off)
	}
	if off >= uint32(len(f.mem)) {
		return 0, fmt.Errorf("flash write at %d: out of range", off)
	}
	if max := len(f.mem) - int(off); len(p) > max {
		p = p[:max]
	}
	for i := range p {
		if f.mem[off+uint32(i)]&p[i] != p[i] {
			return 0, ErrWriteRequiresErase
		}
	}
	return copy(f.mem[off:], p), nil
}

func (f *MemFlash) Erase(off, size uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErases {
		return fmt.Errorf("flash erase at %d: medium fault", off)
	}
	if size == 0 {
		return nil
	}
	if off%f.eraseSize != 0 || size%f.eraseSize != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: unaligned", off, size)
	}
	if off >= uint32(len(f.mem)) || off+size > uint32(len(f.mem)) {
		return fmt.Errorf("flash erase off=%d size=%d: out of range", off, size)
	}
	for i := off; i < off+size; i++ {
		f.mem[i] = 0xFF
	}
	return nil
}
