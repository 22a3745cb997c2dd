package nvm

import "errors"

var (
	// ErrNotInitialized is returned by operations on an engine that was not
	// built through New.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrInvalidGeometry is returned when erase/program units are not powers
	// of two or the program unit exceeds the erase unit.
	ErrInvalidGeometry = errors.New("invalid flash geometry")

	// ErrInvalidRegion is returned when the region bounds are malformed or
	// fall outside writable flash.
	ErrInvalidRegion = errors.New("invalid flash region")

	// ErrNotReady is returned when an operation is attempted while another
	// is outstanding, or a read overlaps the outstanding operation's range.
	ErrNotReady = errors.New("operation outstanding")

	// ErrOutOfRange is returned when an address span exceeds the region.
	ErrOutOfRange = errors.New("address out of range")

	// ErrMisaligned is returned when an address or length violates the
	// program or erase granularity.
	ErrMisaligned = errors.New("address or length misaligned")

	// ErrZeroLength is returned for empty writes and zero-page erases.
	ErrZeroLength = errors.New("zero length")

	// ErrBackendRejected is returned when the backend refuses a submission.
	ErrBackendRejected = errors.New("backend rejected operation")

	// ErrOperationFailed carries an asynchronous medium failure inside a
	// completion event.
	ErrOperationFailed = errors.New("operation failed")
)
