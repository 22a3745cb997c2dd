package nvm

// Kind identifies an asynchronous operation in a completion event.
type Kind uint8

const (
	KindWrite Kind = iota + 1
	KindErase
)

func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindErase:
		return "erase"
	default:
		return "unknown"
	}
}

// Completion is the asynchronous result of a write or erase operation.
// Len counts bytes for writes and pages for erases. A nil Err means success.
type Completion struct {
	Kind Kind
	Err  error
	Addr uint32
	Len  uint32
}

// Backend issues flash operations on behalf of the engine. Exactly one
// backend is bound per engine instance at construction.
//
// Program and EraseBlocks are asynchronous: they return once the operation is
// submitted, and the registered handler later receives exactly one Completion
// per submission. The handler runs in the backend's delivery context and must
// not block. ReadAt is synchronous.
type Backend interface {
	Geometry() Geometry
	SetHandler(fn func(Completion))
	Program(addr uint32, data []byte) error
	EraseBlocks(addr, pages uint32) error
	ReadAt(p []byte, addr uint32) (int, error)
}
