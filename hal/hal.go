package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// ErrWriteRequiresErase is returned by flash controllers when a program
// operation would need to set bits that are currently cleared.
var ErrWriteRequiresErase = errors.New("flash write requires erase")

// NoBootloader is the device-info value for "no bootloader installed".
const NoBootloader = 0xFFFFFFFF

// FlashController provides raw access to non-volatile memory.
//
// It is intentionally low-level: absolute addresses, erase blocks, and
// program units only. Controllers do not enforce alignment beyond what the
// hardware requires; callers that need stricter validation layer it on top.
type FlashController interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ProgramUnitBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// DeviceInfo exposes the identification registers needed to locate the end
// of writable flash.
type DeviceInfo interface {
	CodePageSize() uint32
	CodePages() uint32
	// BootloaderAddr returns the bootloader start address, or NoBootloader
	// when none is installed.
	BootloaderAddr() uint32
}

// Clock provides a base tick stream.
//
// The tick duration is platform-defined; higher-level deadlines live in
// userland.
type Clock interface {
	Ticks() <-chan uint64
}

// Serial is the byte stream used by the console front end.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// HAL provides the only contact point between the storage system and the
// outside world.
type HAL interface {
	Logger() Logger
	Flash() FlashController
	Device() DeviceInfo
	Clock() Clock
	Serial() Serial
}
