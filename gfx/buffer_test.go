package gfx

import (
	"errors"
	"testing"
)

func TestGrowCapacity(t *testing.T) {
	cases := []struct {
		have, need, want int
	}{
		{0, 28, 28},
		{28, 29, 56},
		{56, 57, 112},
		{100, 150, 200},
		{100, 450, 450},
		{4096, 4097, 8192},
	}
	for _, tc := range cases {
		if got := growCapacity(tc.have, tc.need); got != tc.want {
			t.Errorf("growCapacity(%d, %d) = %d, want %d", tc.have, tc.need, got, tc.want)
		}
		if got := growCapacity(tc.have, tc.need); got < tc.need {
			t.Errorf("growCapacity(%d, %d) = %d, smaller than need", tc.have, tc.need, got)
		}
	}
}

func TestBufferReleaseIdempotent(t *testing.T) {
	b := NewGpuBuffer(&Context{}, ArrayBuffer, StaticDraw)
	b.Release()
	b.Release()
	if b.ID() != 0 || b.Capacity() != 0 || b.Len() != 0 {
		t.Errorf("released buffer reports id %d cap %d len %d, want zeros", b.ID(), b.Capacity(), b.Len())
	}
	var nilBuf *GpuBuffer
	nilBuf.Release()
}

func TestBufferUploadAtUnallocated(t *testing.T) {
	b := NewGpuBuffer(&Context{}, ArrayBuffer, DynamicDraw)
	if err := b.UploadAt(0, []byte{1, 2, 3}); !errors.Is(err, ErrNotReady) {
		t.Errorf("UploadAt on unallocated buffer = %v, want ErrNotReady", err)
	}
}

func TestBufferBindUnallocated(t *testing.T) {
	b := NewGpuBuffer(&Context{}, ArrayBuffer, StaticDraw)
	if err := b.Bind(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Bind on unallocated buffer = %v, want ErrNotReady", err)
	}
}

func TestBufferEmptyUploadIsPure(t *testing.T) {
	b := NewGpuBuffer(&Context{}, ArrayBuffer, StreamDraw)
	if err := b.Upload(nil); err != nil {
		t.Errorf("Upload(nil) = %v, want nil", err)
	}
	if b.ID() != 0 {
		t.Errorf("Upload(nil) allocated GL storage, id = %d", b.ID())
	}
	if err := b.UploadFloats(nil); err != nil {
		t.Errorf("UploadFloats(nil) = %v, want nil", err)
	}
}

func TestBufferAllocateRejectsNonPositive(t *testing.T) {
	b := NewGpuBuffer(&Context{}, ArrayBuffer, StaticDraw)
	if err := b.Allocate(0); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Allocate(0) = %v, want ErrConfiguration", err)
	}
	if err := b.Allocate(-4); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Allocate(-4) = %v, want ErrConfiguration", err)
	}
}
