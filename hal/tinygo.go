//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"machine"
)

type tinyGoHAL struct {
	logger *uartLogger
	flash  FlashController
	dev    DeviceInfo
	clk    *tinyGoClock
	serial *uartSerial
}

// New returns an RP2040/RP2350 HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	flash := newRP2Flash()
	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		flash:  flash,
		dev:    flashDeviceInfo{flash: flash},
		clk:    newTinyGoClock(),
		serial: &uartSerial{uart: uart},
	}
}

func (h *tinyGoHAL) Logger() Logger         { return h.logger }
func (h *tinyGoHAL) Flash() FlashController { return h.flash }
func (h *tinyGoHAL) Device() DeviceInfo     { return h.dev }
func (h *tinyGoHAL) Clock() Clock           { return h.clk }
func (h *tinyGoHAL) Serial() Serial         { return h.serial }
