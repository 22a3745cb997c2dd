package logger

import (
	"fstore/hal"
	"fstore/kernel"
	"fstore/proto"
)

// Service drains the log endpoint into the HAL logging sink.
type Service struct {
	log hal.Logger
	sys *kernel.System
}

func New(log hal.Logger, sys *kernel.System) *Service {
	return &Service{log: log, sys: sys}
}

// Run loops forever; start it on its own goroutine.
func (s *Service) Run() {
	for {
		msg := s.sys.Recv(kernel.EPLogger)
		if msg.Kind != uint16(proto.MsgLogLine) {
			continue
		}
		if s.log == nil {
			continue
		}
		s.log.WriteLineBytes(msg.Data[:msg.Len])
	}
}
