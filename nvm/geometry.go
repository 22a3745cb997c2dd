package nvm

import (
	"fmt"

	"fstore/hal"
)

// Geometry holds the physical flash constants every validation step reads.
// Values are fixed for the lifetime of the process.
type Geometry struct {
	EraseUnit   uint32
	ProgramUnit uint32
}

// Validate checks the geometry invariants: both units are powers of two and
// the program unit does not exceed the erase unit.
func (g Geometry) Validate() error {
	if !isPowerOfTwo(g.EraseUnit) || !isPowerOfTwo(g.ProgramUnit) {
		return fmt.Errorf("%w: erase=%d program=%d", ErrInvalidGeometry, g.EraseUnit, g.ProgramUnit)
	}
	if g.ProgramUnit > g.EraseUnit {
		return fmt.Errorf("%w: program unit %d exceeds erase unit %d", ErrInvalidGeometry, g.ProgramUnit, g.EraseUnit)
	}
	return nil
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// WritableLimit computes the first byte past writable flash: the bootloader
// boundary when one is installed, otherwise the end of code flash derived
// from the identification registers.
func WritableLimit(info hal.DeviceInfo) uint32 {
	if b := info.BootloaderAddr(); b != hal.NoBootloader {
		return b
	}
	return info.CodePageSize() * info.CodePages()
}
