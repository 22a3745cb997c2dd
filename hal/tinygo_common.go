//go:build tinygo && baremetal

package hal

import (
	"machine"
	"runtime"
	"time"
)

type tinyGoClock struct {
	ch  chan uint64
	seq uint64
}

func newTinyGoClock() *tinyGoClock {
	c := &tinyGoClock{ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(1 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			c.seq++
			select {
			case c.ch <- c.seq:
			default:
			}
		}
	}()
	return c
}

func (c *tinyGoClock) Ticks() <-chan uint64 { return c.ch }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type uartSerial struct {
	uart *machine.UART
}

// Read blocks until at least one byte arrives. The underlying UART read is
// non-blocking and returns zero bytes when its buffer is empty.
func (s *uartSerial) Read(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	for {
		n, err := s.uart.Read(p)
		if n > 0 || err != nil {
			return n, err
		}
		runtime.Gosched()
	}
}

func (s *uartSerial) Write(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	return s.uart.Write(p)
}

// flashDeviceInfo derives identification values from the flash controller
// on targets without dedicated identification registers.
type flashDeviceInfo struct {
	flash FlashController
}

func (d flashDeviceInfo) CodePageSize() uint32 { return d.flash.EraseBlockBytes() }

func (d flashDeviceInfo) CodePages() uint32 {
	ps := d.flash.EraseBlockBytes()
	if ps == 0 {
		return 0
	}
	return d.flash.SizeBytes() / ps
}

func (d flashDeviceInfo) BootloaderAddr() uint32 { return NoBootloader }
