package nvm

import (
	"errors"
	"testing"
)

func TestGeometryValidate(t *testing.T) {
	cases := []struct {
		name    string
		geo     Geometry
		wantErr bool
	}{
		{"nrf-style", Geometry{EraseUnit: 4096, ProgramUnit: 4}, false},
		{"page equals unit", Geometry{EraseUnit: 256, ProgramUnit: 256}, false},
		{"zero erase", Geometry{EraseUnit: 0, ProgramUnit: 4}, true},
		{"non power of two", Geometry{EraseUnit: 4096, ProgramUnit: 3}, true},
		{"program exceeds erase", Geometry{EraseUnit: 256, ProgramUnit: 512}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.geo.Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidGeometry) {
				t.Fatalf("Validate() error = %v, want ErrInvalidGeometry", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() error = %v, want nil", err)
			}
		})
	}
}

type fakeDeviceInfo struct {
	pageSize   uint32
	pages      uint32
	bootloader uint32
}

func (d fakeDeviceInfo) CodePageSize() uint32   { return d.pageSize }
func (d fakeDeviceInfo) CodePages() uint32      { return d.pages }
func (d fakeDeviceInfo) BootloaderAddr() uint32 { return d.bootloader }

func TestWritableLimitBootloader(t *testing.T) {
	got := WritableLimit(fakeDeviceInfo{pageSize: 4096, pages: 128, bootloader: 0x78000})
	if got != 0x78000 {
		t.Fatalf("WritableLimit() = %#x, want 0x78000 (bootloader boundary)", got)
	}
}

func TestWritableLimitComputed(t *testing.T) {
	got := WritableLimit(fakeDeviceInfo{pageSize: 4096, pages: 128, bootloader: 0xFFFFFFFF})
	if got != 128*4096 {
		t.Fatalf("WritableLimit() = %#x, want %#x (pages * page size)", got, 128*4096)
	}
}
