//go:build tinygo && baremetal && !(rp2040 || rp2350)

package hal

import "machine"

// New returns a HAL for boards without on-chip flash support. The flash
// controller is an in-memory device; boards with external SPI NOR flash
// should swap it via NewSPIFlash.
func New() HAL {
	uart := machine.UART0
	flash := NewMemFlash(256*1024, 4096, 4)
	return &stubHAL{
		logger: &uartLogger{uart: uart},
		flash:  flash,
		dev:    flashDeviceInfo{flash: flash},
		clk:    newTinyGoClock(),
		serial: &uartSerial{uart: uart},
	}
}

type stubHAL struct {
	logger *uartLogger
	flash  FlashController
	dev    DeviceInfo
	clk    *tinyGoClock
	serial *uartSerial
}

func (h *stubHAL) Logger() Logger         { return h.logger }
func (h *stubHAL) Flash() FlashController { return h.flash }
func (h *stubHAL) Device() DeviceInfo     { return h.dev }
func (h *stubHAL) Clock() Clock           { return h.clk }
func (h *stubHAL) Serial() Serial         { return h.serial }
