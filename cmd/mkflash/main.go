//go:build !tinygo

// Command mkflash creates blank flash images for the host target and
// hex-dumps ranges of existing ones.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultFlashPath = "fstore.flash"
	defaultFlashSize = 2 * 1024 * 1024
	defaultEraseSize = 4096
)

func main() {
	var path string
	var size uint
	var eraseSize uint
	var dump string
	flag.StringVar(&path, "path", defaultFlashPath, "Flash image path.")
	flag.UintVar(&size, "size", defaultFlashSize, "Flash image size (bytes).")
	flag.UintVar(&eraseSize, "erase", defaultEraseSize, "Erase block size (bytes).")
	flag.StringVar(&dump, "dump", "", "Hex-dump addr:len from an existing image instead of creating one.")
	flag.Parse()

	var err error
	if dump != "" {
		err = dumpImage(path, dump)
	} else {
		err = createImage(path, uint32(size), uint32(eraseSize))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func createImage(path string, size, eraseSize uint32) error {
	if eraseSize == 0 || eraseSize%256 != 0 {
		return fmt.Errorf("invalid erase size %d", eraseSize)
	}
	if size == 0 || size%eraseSize != 0 {
		return fmt.Errorf("size %d not a multiple of erase size %d", size, eraseSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open flash image %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	block := make([]byte, eraseSize)
	for i := range block {
		block[i] = 0xFF
	}
	for off := uint32(0); off < size; off += eraseSize {
		if _, err := f.WriteAt(block, int64(off)); err != nil {
			return fmt.Errorf("fill flash image %q at %d: %w", path, off, err)
		}
	}
	return nil
}

func dumpImage(path, spec string) error {
	addr, n, err := parseDumpSpec(spec)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open flash image %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, n)
	read, err := f.ReadAt(buf, int64(addr))
	if err != nil && read == 0 {
		return fmt.Errorf("read flash image %q at %#x: %w", path, addr, err)
	}
	fmt.Print(hex.Dump(buf[:read]))
	return nil
}

func parseDumpSpec(spec string) (addr uint32, n uint32, err error) {
	lhs, rhs, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, 0, fmt.Errorf("dump spec %q: want addr:len", spec)
	}
	a, err := strconv.ParseUint(lhs, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("dump addr %q: %w", lhs, err)
	}
	l, err := strconv.ParseUint(rhs, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("dump len %q: %w", rhs, err)
	}
	if l == 0 {
		return 0, 0, fmt.Errorf("dump spec %q: zero length", spec)
	}
	return uint32(a), uint32(l), nil
}
