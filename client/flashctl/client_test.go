package flashctl

import (
	"bytes"
	"errors"
	"testing"

	"fstore/hal"
	"fstore/kernel"
	"fstore/nvm"
	flashsvc "fstore/services/flashctl"
)

// Builds the full stack-mediated path: engine -> client -> mailboxes ->
// controller task -> in-memory medium.
func newMediatedEngine(t *testing.T) (*nvm.Engine, *hal.MemFlash) {
	t.Helper()
	sys := kernel.NewSystem()
	mem := hal.NewMemFlash(0x42000, 4096, 4)
	go flashsvc.New(sys, mem).Run()

	c := New(sys, nvm.Geometry{EraseUnit: 4096, ProgramUnit: 4})
	e, err := nvm.New(nvm.Config{Backend: c, Start: 0x3e000, End: 0x410FD, Limit: mem.SizeBytes()})
	if err != nil {
		t.Fatalf("nvm.New() error = %v, want nil", err)
	}
	c.Start()
	return e, mem
}

func TestMediatedEraseWriteRead(t *testing.T) {
	e, _ := newMediatedEngine(t)

	if err := e.Erase(0x3e000, 1); err != nil {
		t.Fatalf("Erase() error = %v, want nil", err)
	}
	if c := e.WaitReady(); c.Err != nil || c.Kind != nvm.KindErase || c.Addr != 0x3e000 {
		t.Fatalf("erase completion = %+v, want clean erase at 0x3e000", c)
	}

	data := []byte{0x09, 0x50, 0xA6, 0x64}
	if err := e.Write(0x3e000, data); err != nil {
		t.Fatalf("Write() error = %v, want nil", err)
	}
	if c := e.WaitReady(); c.Err != nil || c.Kind != nvm.KindWrite || c.Len != 4 {
		t.Fatalf("write completion = %+v, want 4-byte write", c)
	}

	out := make([]byte, 4)
	n, err := e.Read(0x3e000, 4, out)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil", err)
	}
	if n != 4 || !bytes.Equal(out, data) {
		t.Fatalf("Read() = (%d, %x), want (4, %x)", n, out, data)
	}
}

func TestMediatedReadCrossesSharedBufferChunks(t *testing.T) {
	e, _ := newMediatedEngine(t)

	if err := e.Erase(0x3e000, 2); err != nil {
		t.Fatalf("Erase() error = %v, want nil", err)
	}
	e.WaitReady()

	// Read back 5000 bytes in one call: larger than the shared buffer, so
	// the client must issue two transfers.
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i)
	}
	if err := e.Write(0x3e000, data); err != nil {
		t.Fatalf("Write() error = %v, want nil", err)
	}
	e.WaitReady()

	out := make([]byte, 5000)
	n, err := e.Read(0x3e000, 5000, out)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil", err)
	}
	if n != 5000 {
		t.Fatalf("Read() n = %d, want 5000", n)
	}
	if !bytes.Equal(out[:1000], data) {
		t.Fatalf("Read() prefix mismatch")
	}
	for i := 1000; i < 5000; i++ {
		if out[i] != 0xFF {
			t.Fatalf("Read() byte %d = %#x, want 0xFF (erased)", i, out[i])
		}
	}
}

func TestMediatedMediumFault(t *testing.T) {
	e, mem := newMediatedEngine(t)

	mem.FailNextErases(true)
	if err := e.Erase(0x3e000, 1); err != nil {
		t.Fatalf("Erase() error = %v, want nil", err)
	}
	if c := e.WaitReady(); !errors.Is(c.Err, nvm.ErrOperationFailed) {
		t.Fatalf("completion Err = %v, want ErrOperationFailed", c.Err)
	}

	mem.FailNextErases(false)
	if err := e.Erase(0x3e000, 1); err != nil {
		t.Fatalf("Erase() retry error = %v, want nil", err)
	}
	if c := e.WaitReady(); c.Err != nil {
		t.Fatalf("retry completion Err = %v, want nil", c.Err)
	}
}

func TestProgramPayloadTooLarge(t *testing.T) {
	e, _ := newMediatedEngine(t)

	big := make([]byte, kernel.MaxMessageBytes)
	err := e.Write(0x3e000, big)
	if !errors.Is(err, nvm.ErrBackendRejected) {
		t.Fatalf("Write(oversized) error = %v, want ErrBackendRejected", err)
	}
	if e.IsBusy() {
		t.Fatalf("IsBusy() = true after rejected submission, want false")
	}
}
