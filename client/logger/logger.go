package logger

import (
	"fstore/hal"
	"fstore/kernel"
	"fstore/proto"
)

// Log is a hal.Logger that forwards lines to the logger service over IPC.
// Sends never block, which keeps the logger safe to use from completion
// delivery contexts. When the mailbox is full the line goes straight to the
// fallback sink instead, so a failure report is never lost.
type Log struct {
	sys      *kernel.System
	from     kernel.Endpoint
	fallback hal.Logger
}

// New returns a client posting from the given endpoint. fallback receives
// lines that the mailbox cannot take; nil means overflow lines are dropped.
func New(sys *kernel.System, from kernel.Endpoint, fallback hal.Logger) *Log {
	return &Log{sys: sys, from: from, fallback: fallback}
}

func (l *Log) WriteLineString(s string) {
	if l.sys.TrySend(l.from, kernel.EPLogger, uint16(proto.MsgLogLine), []byte(s)) {
		return
	}
	if l.fallback != nil {
		l.fallback.WriteLineString(s)
	}
}

func (l *Log) WriteLineBytes(b []byte) {
	if l.sys.TrySend(l.from, kernel.EPLogger, uint16(proto.MsgLogLine), proto.LogLinePayload(b)) {
		return
	}
	if l.fallback != nil {
		l.fallback.WriteLineBytes(b)
	}
}
