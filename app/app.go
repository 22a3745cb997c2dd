package app

import (
	"fmt"

	flashclient "fstore/client/flashctl"
	logclient "fstore/client/logger"
	"fstore/hal"
	"fstore/internal/buildinfo"
	"fstore/kernel"
	"fstore/nvm"
	flashsvc "fstore/services/flashctl"
	logsvc "fstore/services/logger"
)

// Config selects the backend variant and the front-end behavior.
type Config struct {
	// StackMediated routes operations through the co-resident controller
	// task instead of the peripheral directly.
	StackMediated bool
	// Start and End bound the engine's region. Zero values select a
	// default region at the top of writable flash.
	Start uint32
	End   uint32
	// Demo runs the erase/write/read exercise at startup.
	Demo bool
	// Console serves the interactive front end on the HAL serial port.
	Console bool
}

const defaultRegionPages = 4

// System is the wired storage stack.
type System struct {
	hal    hal.HAL
	sys    *kernel.System
	engine *nvm.Engine
	log    hal.Logger
}

// New brings the system up: timebase, logging sink, the selected backend
// (and, for the stack-mediated variant, the controller task), then the
// engine. Bring-up order matters: the controller task must be running before
// the engine submits anything.
func New(h hal.HAL, cfg Config) (*System, error) {
	sys := kernel.NewSystem()
	sys.CountTicks(h.Clock().Ticks())
	go logsvc.New(h.Logger(), sys).Run()

	log := logclient.New(sys, kernel.EPApp, h.Logger())
	log.WriteLineString(fmt.Sprintf("fstore %s starting", buildinfo.Short()))

	limit := nvm.WritableLimit(h.Device())
	start, end := cfg.Start, cfg.End
	if start == 0 && end == 0 {
		start, end = defaultRegion(h.Flash(), limit)
	}

	var backend nvm.Backend
	var startPump func()
	if cfg.StackMediated {
		log.WriteLineString("flash: using stack-mediated backend")
		go flashsvc.New(sys, h.Flash()).Run()
		c := flashclient.New(sys, nvm.Geometry{
			EraseUnit:   h.Flash().EraseBlockBytes(),
			ProgramUnit: h.Flash().ProgramUnitBytes(),
		})
		backend = c
		startPump = c.Start
	} else {
		log.WriteLineString("flash: using direct-peripheral backend")
		backend = nvm.NewDirect(h.Flash())
	}

	engine, err := nvm.New(nvm.Config{
		Backend: backend,
		Start:   start,
		End:     end,
		Limit:   limit,
		Log:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("engine init: %w", err)
	}
	if startPump != nil {
		startPump()
	}

	s := &System{hal: h, sys: sys, engine: engine, log: log}
	s.printFlashInfo()
	return s, nil
}

// Run executes the configured workload and, when the console is enabled,
// blocks serving it.
func (s *System) Run(cfg Config) error {
	if cfg.Demo {
		if err := s.demo(); err != nil {
			return err
		}
	}
	if cfg.Console {
		return s.console()
	}
	return nil
}

// Engine exposes the storage engine to embedding front ends.
func (s *System) Engine() *nvm.Engine { return s.engine }

func (s *System) printFlashInfo() {
	geo := s.engine.Geometry()
	region := s.engine.Region()
	s.log.WriteLineString("========| flash info |========")
	s.log.WriteLineString(fmt.Sprintf("erase unit:   %d bytes", geo.EraseUnit))
	s.log.WriteLineString(fmt.Sprintf("program unit: %d bytes", geo.ProgramUnit))
	s.log.WriteLineString(fmt.Sprintf("region:       [%#x, %#x)", region.Start, region.End))
	s.log.WriteLineString("==============================")
}

// demo exercises the full cycle on the first page of the region.
func (s *System) demo() error {
	e := s.engine
	addr := e.Region().Start
	data := []byte{0x09, 0x50, 0xA6, 0x64}

	s.log.WriteLineString(fmt.Sprintf("demo: erasing 1 page at %#x", addr))
	if err := e.Erase(addr, 1); err != nil {
		return fmt.Errorf("demo erase: %w", err)
	}
	if c := e.WaitReady(); c.Err != nil {
		return fmt.Errorf("demo erase: %w", c.Err)
	}

	s.log.WriteLineString(fmt.Sprintf("demo: writing % x at %#x", data, addr))
	if err := e.Write(addr, data); err != nil {
		return fmt.Errorf("demo write: %w", err)
	}
	if c := e.WaitReady(); c.Err != nil {
		return fmt.Errorf("demo write: %w", c.Err)
	}

	out := make([]byte, len(data))
	n, err := e.Read(addr, uint32(len(data)), out)
	if err != nil {
		return fmt.Errorf("demo read: %w", err)
	}
	s.log.WriteLineString(fmt.Sprintf("demo: read %d bytes: % x", n, out[:n]))
	for i := range data {
		if out[i] != data[i] {
			return fmt.Errorf("demo verify: byte %d = %#x, want %#x", i, out[i], data[i])
		}
	}
	s.log.WriteLineString("demo: verify ok")
	return nil
}

// defaultRegion places a small region at the top of writable flash, below
// the limit, aligned down to an erase boundary.
func defaultRegion(ctl hal.FlashController, limit uint32) (start, end uint32) {
	bs := ctl.EraseBlockBytes()
	if bs == 0 {
		return 0, 0
	}
	end = limit
	if sz := ctl.SizeBytes(); end > sz {
		end = sz
	}
	span := defaultRegionPages * bs
	if end < span {
		return 0, end
	}
	start = (end - span) &^ (bs - 1)
	return start, end
}
