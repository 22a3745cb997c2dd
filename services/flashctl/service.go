package flashctl

import (
	"fstore/hal"
	"fstore/kernel"
	"fstore/proto"
)

// Service is the co-resident flash controller task. It owns the flash
// peripheral: all program/erase/read traffic from stack-mediated engines
// arrives through its mailbox, so operations against the medium are never
// issued concurrently.
type Service struct {
	sys *kernel.System
	ctl hal.FlashController

	scratch [kernel.SharedBufferBytes]byte
}

func New(sys *kernel.System, ctl hal.FlashController) *Service {
	return &Service{sys: sys, ctl: ctl}
}

// Run loops forever; start it on its own goroutine before binding any
// stack-mediated engine.
func (s *Service) Run() {
	for {
		msg := s.sys.Recv(kernel.EPFlashCtl)
		switch proto.Kind(msg.Kind) {
		case proto.MsgFlashWrite:
			s.handleWrite(msg)
		case proto.MsgFlashErase:
			s.handleErase(msg)
		case proto.MsgFlashRead:
			s.handleRead(msg)
		}
	}
}

func (s *Service) done(op proto.Kind, code proto.ErrCode, addr, n uint32) {
	s.sys.Send(kernel.EPFlashCtl, kernel.EPFlashEvt, uint16(proto.MsgFlashDone),
		proto.DonePayload(op, code, addr, n))
}

func (s *Service) handleWrite(msg kernel.Message) {
	addr, data, ok := proto.DecodeWritePayload(msg.Data[:msg.Len])
	if !ok {
		s.done(proto.MsgFlashWrite, proto.ErrBadMessage, 0, 0)
		return
	}
	code := proto.ErrNone
	if _, err := s.ctl.WriteAt(data, addr); err != nil {
		code = proto.ErrMediumFault
	}
	s.done(proto.MsgFlashWrite, code, addr, uint32(len(data)))
}

func (s *Service) handleErase(msg kernel.Message) {
	addr, pages, ok := proto.DecodeErasePayload(msg.Data[:msg.Len])
	if !ok {
		s.done(proto.MsgFlashErase, proto.ErrBadMessage, 0, 0)
		return
	}
	code := proto.ErrNone
	if err := s.ctl.Erase(addr, pages*s.ctl.EraseBlockBytes()); err != nil {
		code = proto.ErrMediumFault
	}
	s.done(proto.MsgFlashErase, code, addr, pages)
}

func (s *Service) handleRead(msg kernel.Message) {
	reply := func(code proto.ErrCode, seq, count uint32) {
		s.sys.Send(kernel.EPFlashCtl, kernel.EPFlashResp, uint16(proto.MsgFlashReadResp),
			proto.ReadRespPayload(code, seq, count))
	}

	addr, n, ok := proto.DecodeReadPayload(msg.Data[:msg.Len])
	if !ok {
		reply(proto.ErrBadMessage, 0, 0)
		return
	}
	if n > kernel.SharedBufferBytes {
		reply(proto.ErrTooLarge, 0, 0)
		return
	}

	nr, err := s.ctl.ReadAt(s.scratch[:n], addr)
	if err != nil {
		reply(proto.ErrMediumFault, 0, 0)
		return
	}
	seq := s.sys.Shared().Write(s.scratch[:nr])
	reply(proto.ErrNone, seq, uint32(nr))
}
