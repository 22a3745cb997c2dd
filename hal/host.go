//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

type hostHAL struct {
	logger *hostLogger
	flash  FlashController
	dev    *hostDeviceInfo
	clk    *hostClock
	serial *hostSerial
}

// New returns a host HAL implementation.
//
// The flash controller is backed by an image file (FSTORE_FLASH_PATH, default
// fstore.flash). If the file cannot be opened, an in-memory controller of the
// default size is used instead so the rest of the system stays functional.
func New() HAL {
	logger := &hostLogger{w: os.Stdout}

	var flash FlashController
	hf, err := openHostFlash(flashPathFromEnv(), hostFlashDefaultSizeBytes)
	if err != nil {
		logger.WriteLineString(fmt.Sprintf("hal: flash image unavailable (%v), using memory", err))
		flash = NewMemFlash(hostFlashDefaultSizeBytes, hostFlashEraseBlockBytes, hostFlashProgramUnitBytes)
	} else {
		flash = hf
	}

	return &hostHAL{
		logger: logger,
		flash:  flash,
		dev:    newHostDeviceInfo(flash),
		clk:    newHostClock(),
		serial: &hostSerial{r: os.Stdin, w: os.Stdout},
	}
}

func (h *hostHAL) Logger() Logger         { return h.logger }
func (h *hostHAL) Flash() FlashController { return h.flash }
func (h *hostHAL) Device() DeviceInfo     { return h.dev }
func (h *hostHAL) Clock() Clock           { return h.clk }
func (h *hostHAL) Serial() Serial         { return h.serial }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostSerial struct {
	mu sync.Mutex
	r  *os.File
	w  *os.File
}

func (s *hostSerial) Read(p []byte) (int, error) {
	if s.r == nil {
		return 0, ErrNotImplemented
	}
	return s.r.Read(p)
}

func (s *hostSerial) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrNotImplemented
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// hostDeviceInfo models the identification registers on the host. The code
// page size matches the flash erase block; the page count covers the whole
// image. FSTORE_BOOTLOADER_ADDR overrides the bootloader boundary.
type hostDeviceInfo struct {
	pageSize   uint32
	pages      uint32
	bootloader uint32
}

func newHostDeviceInfo(flash FlashController) *hostDeviceInfo {
	pageSize := flash.EraseBlockBytes()
	pages := uint32(0)
	if pageSize > 0 {
		pages = flash.SizeBytes() / pageSize
	}
	bootloader := uint32(NoBootloader)
	if s := os.Getenv("FSTORE_BOOTLOADER_ADDR"); s != "" {
		if v, err := strconv.ParseUint(s, 0, 32); err == nil {
			bootloader = uint32(v)
		}
	}
	return &hostDeviceInfo{pageSize: pageSize, pages: pages, bootloader: bootloader}
}

func (d *hostDeviceInfo) CodePageSize() uint32   { return d.pageSize }
func (d *hostDeviceInfo) CodePages() uint32      { return d.pages }
func (d *hostDeviceInfo) BootloaderAddr() uint32 { return d.bootloader }

type hostClock struct {
	ch  chan uint64
	seq uint64
}

func newHostClock() *hostClock {
	c := &hostClock{ch: make(chan uint64, 1024)}
	go func() {
		t := time.NewTicker(1 * time.Millisecond)
		defer t.Stop()
		for range t.C {
			c.seq++
			select {
			case c.ch <- c.seq:
			default:
			}
		}
	}()
	return c
}

func (c *hostClock) Ticks() <-chan uint64 { return c.ch }
