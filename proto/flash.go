package proto

import "encoding/binary"

// Payload layouts are little-endian.
//
// MsgFlashWrite:    u32 addr, bytes data
// MsgFlashErase:    u32 addr, u32 pages
// MsgFlashRead:     u32 addr, u32 len
// MsgFlashReadResp: u16 code, u32 seq (shared buffer sequence), u32 count
// MsgFlashDone:     u16 op kind, u16 code, u32 addr, u32 len

// WritePayload encodes a MsgFlashWrite payload.
func WritePayload(addr uint32, data []byte) []byte {
	buf := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(buf[0:4], addr)
	copy(buf[4:], data)
	return buf
}

// DecodeWritePayload decodes a MsgFlashWrite payload.
func DecodeWritePayload(payload []byte) (addr uint32, data []byte, ok bool) {
	if len(payload) < 4 {
		return 0, nil, false
	}
	return binary.LittleEndian.Uint32(payload[0:4]), payload[4:], true
}

// ErasePayload encodes a MsgFlashErase payload.
func ErasePayload(addr, pages uint32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], addr)
	binary.LittleEndian.PutUint32(buf[4:8], pages)
	return buf
}

// DecodeErasePayload decodes a MsgFlashErase payload.
func DecodeErasePayload(payload []byte) (addr, pages uint32, ok bool) {
	if len(payload) < 8 {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint32(payload[0:4]), binary.LittleEndian.Uint32(payload[4:8]), true
}

// ReadPayload encodes a MsgFlashRead payload.
func ReadPayload(addr, n uint32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], addr)
	binary.LittleEndian.PutUint32(buf[4:8], n)
	return buf
}

// DecodeReadPayload decodes a MsgFlashRead payload.
func DecodeReadPayload(payload []byte) (addr, n uint32, ok bool) {
	if len(payload) < 8 {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint32(payload[0:4]), binary.LittleEndian.Uint32(payload[4:8]), true
}

// ReadRespPayload encodes a MsgFlashReadResp payload. The data itself travels
// through the kernel shared buffer; seq is its sequence number.
func ReadRespPayload(code ErrCode, seq, count uint32) []byte {
	buf := make([]byte, 10)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(code))
	binary.LittleEndian.PutUint32(buf[2:6], seq)
	binary.LittleEndian.PutUint32(buf[6:10], count)
	return buf
}

// DecodeReadRespPayload decodes a MsgFlashReadResp payload.
func DecodeReadRespPayload(payload []byte) (code ErrCode, seq, count uint32, ok bool) {
	if len(payload) < 10 {
		return 0, 0, 0, false
	}
	code = ErrCode(binary.LittleEndian.Uint16(payload[0:2]))
	seq = binary.LittleEndian.Uint32(payload[2:6])
	count = binary.LittleEndian.Uint32(payload[6:10])
	return code, seq, count, true
}

// DonePayload encodes a MsgFlashDone payload.
func DonePayload(op Kind, code ErrCode, addr, n uint32) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(op))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(code))
	binary.LittleEndian.PutUint32(buf[4:8], addr)
	binary.LittleEndian.PutUint32(buf[8:12], n)
	return buf
}

// DecodeDonePayload decodes a MsgFlashDone payload.
func DecodeDonePayload(payload []byte) (op Kind, code ErrCode, addr, n uint32, ok bool) {
	if len(payload) < 12 {
		return 0, 0, 0, 0, false
	}
	op = Kind(binary.LittleEndian.Uint16(payload[0:2]))
	code = ErrCode(binary.LittleEndian.Uint16(payload[2:4]))
	addr = binary.LittleEndian.Uint32(payload[4:8])
	n = binary.LittleEndian.Uint32(payload[8:12])
	return op, code, addr, n, true
}

// LogLinePayload encodes a MsgLogLine payload.
//
// Convention:
// - Payload is UTF-8 bytes without a trailing newline.
// - Delivery is best-effort; callers may drop on overflow.
func LogLinePayload(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
