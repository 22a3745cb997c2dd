//go:build tinygo

package main

import (
	"fstore/app"
	"fstore/hal"
)

func main() {
	h := hal.New()
	cfg := app.Config{Demo: true, Console: true}
	s, err := app.New(h, cfg)
	if err != nil {
		halt(h, err)
	}
	if err := s.Run(cfg); err != nil {
		halt(h, err)
	}
}

// halt reports a fatal error on the raw logger and parks the core.
func halt(h hal.HAL, err error) {
	h.Logger().WriteLineString("fatal: " + err.Error())
	for {
	}
}
