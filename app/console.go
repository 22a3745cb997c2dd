package app

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// console serves the interactive front end on the HAL serial port until the
// stream ends or the quit command is issued.
func (s *System) console() error {
	out := func(line string) {
		fmt.Fprintf(writerFunc(s.hal.Serial().Write), "%s\r\n", line)
	}
	out("fstore console; commands: info, read, write, erase, wait, quit")

	sc := bufio.NewScanner(readerFunc(s.hal.Serial().Read))
	for sc.Scan() {
		quit, err := s.dispatch(sc.Text(), out)
		if err != nil {
			out(fmt.Sprintf("error: %v", err))
		}
		if quit {
			return nil
		}
	}
	return sc.Err()
}

func (s *System) dispatch(line string, out func(string)) (quit bool, err error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("parse: %w", err)
	}
	if len(args) == 0 {
		return false, nil
	}

	e := s.engine
	switch args[0] {
	case "quit", "exit":
		return true, nil

	case "info":
		geo := e.Geometry()
		r := e.Region()
		out(fmt.Sprintf("erase unit %d, program unit %d, region [%#x, %#x), busy=%v",
			geo.EraseUnit, geo.ProgramUnit, r.Start, r.End, e.IsBusy()))
		return false, nil

	case "read":
		if len(args) != 3 {
			return false, fmt.Errorf("usage: read <addr> <len>")
		}
		addr, err := parseU32(args[1])
		if err != nil {
			return false, err
		}
		n, err := parseU32(args[2])
		if err != nil {
			return false, err
		}
		buf := make([]byte, n)
		got, err := e.Read(addr, n, buf)
		if err != nil {
			return false, err
		}
		out(fmt.Sprintf("read %d bytes at %#x: % x", got, addr, buf[:got]))
		return false, nil

	case "write":
		if len(args) < 3 {
			return false, fmt.Errorf("usage: write <addr> <byte>...")
		}
		addr, err := parseU32(args[1])
		if err != nil {
			return false, err
		}
		data, err := parseBytes(args[2:])
		if err != nil {
			return false, err
		}
		if err := e.Write(addr, data); err != nil {
			return false, err
		}
		c := e.WaitReady()
		if c.Err != nil {
			return false, c.Err
		}
		out(fmt.Sprintf("wrote %d bytes at %#x", c.Len, c.Addr))
		return false, nil

	case "erase":
		if len(args) != 3 {
			return false, fmt.Errorf("usage: erase <addr> <pages>")
		}
		addr, err := parseU32(args[1])
		if err != nil {
			return false, err
		}
		pages, err := parseU32(args[2])
		if err != nil {
			return false, err
		}
		if err := e.Erase(addr, pages); err != nil {
			return false, err
		}
		c := e.WaitReady()
		if c.Err != nil {
			return false, c.Err
		}
		out(fmt.Sprintf("erased %d pages from %#x", c.Len, c.Addr))
		return false, nil

	case "wait":
		c := e.WaitReady()
		if c.Err != nil {
			return false, c.Err
		}
		out("ready")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q", args[0])
	}
}

func parseU32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return uint32(v), nil
}

// parseBytes accepts per-argument hex bytes ("09 50 a6 64") or a single
// continuous hex string ("0950a664").
func parseBytes(args []string) ([]byte, error) {
	if len(args) == 1 && len(args[0]) > 2 && len(args[0])%2 == 0 && !strings.HasPrefix(args[0], "0x") {
		s := args[0]
		data := make([]byte, 0, len(s)/2)
		for i := 0; i < len(s); i += 2 {
			v, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("bad hex %q", s[i:i+2])
			}
			data = append(data, byte(v))
		}
		return data, nil
	}

	data := make([]byte, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(strings.TrimPrefix(a, "0x"), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad byte %q", a)
		}
		data = append(data, byte(v))
	}
	return data, nil
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
