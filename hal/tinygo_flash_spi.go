//go:build tinygo && baremetal

package hal

import (
	"fmt"

	"tinygo.org/x/drivers/flash"
)

// spiFlash issues operations to an external SPI NOR flash chip.
//
// Boards wire the device themselves (pins and bus differ per board) and pass
// it to NewSPIFlash; see tinygo.org/x/drivers/flash for constructors.
type spiFlash struct {
	dev *flash.Device
}

// NewSPIFlash configures the device and returns a controller for it.
func NewSPIFlash(dev *flash.Device) (FlashController, error) {
	if err := dev.Configure(&flash.DeviceConfig{Identifier: flash.DefaultDeviceIdentifier}); err != nil {
		return nil, fmt.Errorf("spi flash configure: %w", err)
	}
	return &spiFlash{dev: dev}, nil
}

func (f *spiFlash) SizeBytes() uint32 {
	sz := f.dev.Size()
	if sz <= 0 {
		return 0
	}
	if sz > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(sz)
}

func (f *spiFlash) EraseBlockBytes() uint32 {
	bs := f.dev.EraseBlockSize()
	if bs <= 0 {
		return 0
	}
	return uint32(bs)
}

func (f *spiFlash) ProgramUnitBytes() uint32 {
	ws := f.dev.WriteBlockSize()
	if ws <= 0 {
		return 0
	}
	return uint32(ws)
}

func (f *spiFlash) ReadAt(p []byte, off uint32) (int, error) {
	n, err := f.dev.ReadAt(p, int64(off))
	if err != nil {
		return n, fmt.Errorf("spi flash read at %d: %w", off, err)
	}
	return n, nil
}

func (f *spiFlash) WriteAt(p []byte, off uint32) (int, error) {
	n, err := f.dev.WriteAt(p, int64(off))
	if err != nil {
		return n, fmt.Errorf("spi flash write at %d: %w", off, err)
	}
	return n, nil
}

func (f *spiFlash) Erase(off, size uint32) error {
	if size == 0 {
		return nil
	}
	bs := f.EraseBlockBytes()
	if bs == 0 {
		return ErrNotImplemented
	}
	if off%bs != 0 || size%bs != 0 {
		return fmt.Errorf("spi flash erase off=%d size=%d: %w", off, size, ErrNotImplemented)
	}
	return f.dev.EraseBlocks(int64(off/bs), int64(size/bs))
}
