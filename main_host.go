//go:build !tinygo

package main

import (
	"flag"
	"fmt"
	"os"

	"fstore/app"
	"fstore/hal"
)

func main() {
	var cfg app.Config
	var start, end uint64
	flag.BoolVar(&cfg.StackMediated, "stack", false, "Route flash operations through the controller task.")
	flag.Uint64Var(&start, "start", 0, "Region start address (0 = default region).")
	flag.Uint64Var(&end, "end", 0, "Region end address (0 = default region).")
	flag.BoolVar(&cfg.Demo, "demo", false, "Run the erase/write/read exercise at startup.")
	flag.BoolVar(&cfg.Console, "console", true, "Serve the interactive console on the host serial port.")
	flag.Parse()
	cfg.Start = uint32(start)
	cfg.End = uint32(end)

	s, err := app.New(hal.New(), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := s.Run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
