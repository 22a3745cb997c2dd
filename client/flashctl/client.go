package flashctl

import (
	"errors"
	"fmt"

	"fstore/kernel"
	"fstore/nvm"
	"fstore/proto"
)

// maxWriteBytes is the largest single program the mailbox envelope can carry.
const maxWriteBytes = kernel.MaxMessageBytes - 4

var errPayloadTooLarge = errors.New("write payload exceeds message capacity")

// Client is the stack-mediated backend: operations are forwarded to the
// co-resident controller task over kernel IPC instead of touching the
// peripheral. It is safe to bind regardless of what else the controller is
// serving.
type Client struct {
	sys     *kernel.System
	geo     nvm.Geometry
	handler func(nvm.Completion)
}

// New returns a client for the controller reachable through sys. The
// geometry is identification data, fixed per target, and is supplied by the
// wiring code.
func New(sys *kernel.System, geo nvm.Geometry) *Client {
	return &Client{sys: sys, geo: geo}
}

// Start launches the completion pump. Call after SetHandler has been wired
// by the engine, before the first submission.
func (c *Client) Start() {
	go c.pump()
}

func (c *Client) Geometry() nvm.Geometry { return c.geo }

func (c *Client) SetHandler(fn func(nvm.Completion)) {
	c.handler = fn
}

func (c *Client) Program(addr uint32, data []byte) error {
	if len(data) > maxWriteBytes {
		return fmt.Errorf("%w: %d > %d", errPayloadTooLarge, len(data), maxWriteBytes)
	}
	c.sys.Send(kernel.EPFlashEvt, kernel.EPFlashCtl, uint16(proto.MsgFlashWrite),
		proto.WritePayload(addr, data))
	return nil
}

func (c *Client) EraseBlocks(addr, pages uint32) error {
	c.sys.Send(kernel.EPFlashEvt, kernel.EPFlashCtl, uint16(proto.MsgFlashErase),
		proto.ErasePayload(addr, pages))
	return nil
}

// ReadAt fetches bytes through the controller, one shared-buffer transfer per
// chunk. The engine serializes reads, so the single shared buffer cannot be
// overwritten mid-transfer.
func (c *Client) ReadAt(p []byte, addr uint32) (int, error) {
	total := 0
	for len(p) > 0 {
		n := uint32(len(p))
		if n > kernel.SharedBufferBytes {
			n = kernel.SharedBufferBytes
		}
		c.sys.Send(kernel.EPFlashEvt, kernel.EPFlashCtl, uint16(proto.MsgFlashRead),
			proto.ReadPayload(addr, n))

		msg := c.sys.Recv(kernel.EPFlashResp)
		code, seq, count, ok := proto.DecodeReadRespPayload(msg.Data[:msg.Len])
		if !ok {
			return total, fmt.Errorf("flash read at %#x: malformed response", addr)
		}
		if code != proto.ErrNone {
			return total, fmt.Errorf("flash read at %#x: %s", addr, code)
		}
		if count > n {
			count = n
		}

		gotSeq, got := c.sys.Shared().Read(p[:count])
		if gotSeq != seq {
			return total, fmt.Errorf("flash read at %#x: stale transfer buffer", addr)
		}
		total += got
		if uint32(got) < n {
			return total, nil
		}
		addr += uint32(got)
		p = p[got:]
	}
	return total, nil
}

func (c *Client) pump() {
	for {
		msg := c.sys.Recv(kernel.EPFlashEvt)
		if proto.Kind(msg.Kind) != proto.MsgFlashDone {
			continue
		}
		op, code, addr, n, ok := proto.DecodeDonePayload(msg.Data[:msg.Len])
		if !ok {
			continue
		}

		ev := nvm.Completion{Addr: addr, Len: n}
		switch op {
		case proto.MsgFlashErase:
			ev.Kind = nvm.KindErase
		default:
			ev.Kind = nvm.KindWrite
		}
		if code != proto.ErrNone {
			ev.Err = fmt.Errorf("%w: %s", nvm.ErrOperationFailed, code)
		}
		if fn := c.handler; fn != nil {
			fn(ev)
		}
	}
}
