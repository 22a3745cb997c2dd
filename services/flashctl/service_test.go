package flashctl

import (
	"bytes"
	"testing"

	"fstore/hal"
	"fstore/kernel"
	"fstore/proto"
)

func startService(t *testing.T) (*kernel.System, *hal.MemFlash) {
	t.Helper()
	sys := kernel.NewSystem()
	mem := hal.NewMemFlash(64*1024, 4096, 4)
	go New(sys, mem).Run()
	return sys, mem
}

func recvDone(t *testing.T, sys *kernel.System) (proto.Kind, proto.ErrCode, uint32, uint32) {
	t.Helper()
	msg := sys.Recv(kernel.EPFlashEvt)
	if proto.Kind(msg.Kind) != proto.MsgFlashDone {
		t.Fatalf("Recv() kind = %v, want flash_done", proto.Kind(msg.Kind))
	}
	op, code, addr, n, ok := proto.DecodeDonePayload(msg.Data[:msg.Len])
	if !ok {
		t.Fatalf("DecodeDonePayload() ok = false, want true")
	}
	return op, code, addr, n
}

func TestServiceWriteDone(t *testing.T) {
	sys, mem := startService(t)

	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	sys.Send(kernel.EPFlashEvt, kernel.EPFlashCtl, uint16(proto.MsgFlashWrite),
		proto.WritePayload(0x1000, data))

	op, code, addr, n := recvDone(t, sys)
	if op != proto.MsgFlashWrite || code != proto.ErrNone || addr != 0x1000 || n != 4 {
		t.Fatalf("done = (%v, %v, %#x, %d), want (flash_write, ok, 0x1000, 4)", op, code, addr, n)
	}

	got := make([]byte, 4)
	if _, err := mem.ReadAt(got, 0x1000); err != nil {
		t.Fatalf("ReadAt() error = %v, want nil", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("medium bytes = %x, want %x", got, data)
	}
}

func TestServiceEraseDone(t *testing.T) {
	sys, mem := startService(t)

	// Dirty one byte so the erase is observable.
	if _, err := mem.WriteAt([]byte{0x00}, 0x2000); err != nil {
		t.Fatalf("WriteAt() error = %v, want nil", err)
	}

	sys.Send(kernel.EPFlashEvt, kernel.EPFlashCtl, uint16(proto.MsgFlashErase),
		proto.ErasePayload(0x2000, 1))

	op, code, addr, n := recvDone(t, sys)
	if op != proto.MsgFlashErase || code != proto.ErrNone || addr != 0x2000 || n != 1 {
		t.Fatalf("done = (%v, %v, %#x, %d), want (flash_erase, ok, 0x2000, 1)", op, code, addr, n)
	}

	got := make([]byte, 1)
	mem.ReadAt(got, 0x2000)
	if got[0] != 0xFF {
		t.Fatalf("byte after erase = %#x, want 0xFF", got[0])
	}
}

func TestServiceWriteMediumFault(t *testing.T) {
	sys, mem := startService(t)

	mem.FailNextWrites(true)
	sys.Send(kernel.EPFlashEvt, kernel.EPFlashCtl, uint16(proto.MsgFlashWrite),
		proto.WritePayload(0x1000, []byte{1, 2, 3, 4}))

	_, code, _, _ := recvDone(t, sys)
	if code != proto.ErrMediumFault {
		t.Fatalf("done code = %v, want medium_fault", code)
	}
}

func TestServiceReadSharedBuffer(t *testing.T) {
	sys, mem := startService(t)

	want := []byte{9, 8, 7, 6}
	if _, err := mem.WriteAt(want, 0x3000); err != nil {
		t.Fatalf("WriteAt() error = %v, want nil", err)
	}

	sys.Send(kernel.EPFlashEvt, kernel.EPFlashCtl, uint16(proto.MsgFlashRead),
		proto.ReadPayload(0x3000, 4))

	msg := sys.Recv(kernel.EPFlashResp)
	code, seq, count, ok := proto.DecodeReadRespPayload(msg.Data[:msg.Len])
	if !ok || code != proto.ErrNone || count != 4 {
		t.Fatalf("read resp = (%v, %d, %d, %v), want (ok, _, 4, true)", code, seq, count, ok)
	}

	got := make([]byte, count)
	gotSeq, n := sys.Shared().Read(got)
	if gotSeq != seq || n != 4 || !bytes.Equal(got, want) {
		t.Fatalf("shared read = (seq %d, %d, %x), want (seq %d, 4, %x)", gotSeq, n, got, seq, want)
	}
}

func TestServiceReadTooLarge(t *testing.T) {
	sys, _ := startService(t)

	sys.Send(kernel.EPFlashEvt, kernel.EPFlashCtl, uint16(proto.MsgFlashRead),
		proto.ReadPayload(0, kernel.SharedBufferBytes+1))

	msg := sys.Recv(kernel.EPFlashResp)
	code, _, _, ok := proto.DecodeReadRespPayload(msg.Data[:msg.Len])
	if !ok || code != proto.ErrTooLarge {
		t.Fatalf("read resp code = %v, want too_large", code)
	}
}

func TestServiceBadMessage(t *testing.T) {
	sys, _ := startService(t)

	sys.Send(kernel.EPFlashEvt, kernel.EPFlashCtl, uint16(proto.MsgFlashErase), []byte{1, 2})

	_, code, _, _ := recvDone(t, sys)
	if code != proto.ErrBadMessage {
		t.Fatalf("done code = %v, want bad_message", code)
	}
}
