package proto

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgFlashWrite
	MsgFlashErase
	MsgFlashRead
	MsgFlashReadResp
	MsgFlashDone
)

// ErrCode is the result category carried in completion and response messages.
type ErrCode uint16

const (
	ErrNone ErrCode = iota
	ErrBadMessage
	ErrTooLarge
	ErrOutOfBounds
	ErrMediumFault
	ErrInternal
)

func (c ErrCode) String() string {
	switch c {
	case ErrNone:
		return "ok"
	case ErrBadMessage:
		return "bad_message"
	case ErrTooLarge:
		return "too_large"
	case ErrOutOfBounds:
		return "out_of_bounds"
	case ErrMediumFault:
		return "medium_fault"
	case ErrInternal:
		return "internal"
	default:
		return "unknown"
	}
}

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgFlashWrite:
		return "flash_write"
	case MsgFlashErase:
		return "flash_erase"
	case MsgFlashRead:
		return "flash_read"
	case MsgFlashReadResp:
		return "flash_read_resp"
	case MsgFlashDone:
		return "flash_done"
	default:
		return "unknown"
	}
}
