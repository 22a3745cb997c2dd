package nvm

import "fmt"

// Region is the half-open address range [Start, End) one engine instance is
// permitted to operate on. It is fixed at engine construction.
type Region struct {
	Start uint32
	End   uint32
}

// NewRegion validates the bounds against the geometry and the writable flash
// limit. Start must sit on an erase-unit boundary; End is only bounds-checked,
// so a region may end mid-page (the last partial page is then writable but
// never erasable through this engine instance).
func NewRegion(start, end uint32, geo Geometry, limit uint32) (Region, error) {
	if start >= end {
		return Region{}, fmt.Errorf("%w: start %#x >= end %#x", ErrInvalidRegion, start, end)
	}
	if geo.EraseUnit == 0 || start%geo.EraseUnit != 0 {
		return Region{}, fmt.Errorf("%w: start %#x not aligned to erase unit %d", ErrInvalidRegion, start, geo.EraseUnit)
	}
	if end > limit {
		return Region{}, fmt.Errorf("%w: end %#x exceeds writable flash limit %#x", ErrInvalidRegion, end, limit)
	}
	return Region{Start: start, End: end}, nil
}

// Len returns the region size in bytes.
func (r Region) Len() uint32 {
	return r.End - r.Start
}

// Contains reports whether [addr, addr+n) lies entirely within the region.
func (r Region) Contains(addr, n uint32) bool {
	if addr < r.Start {
		return false
	}
	return uint64(addr)+uint64(n) <= uint64(r.End)
}
