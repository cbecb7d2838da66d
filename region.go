package asmloader

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/pkujhd/goloader/mmap"
	"go.uber.org/zap"
)

type (
	// Allocator provides RWX memory.
	Allocator interface {
		Alloc(size int) ([]byte, error)
		Free(b []byte) error
	}
	// MmapAllocator maps anonymous executable memory via goloader.
	MmapAllocator struct{}
	// Region is a loaded stub and payload: [stub | payload | int3].
	//
	// A Region is owned by one goroutine, Release must be called once the payload returned.
	Region struct {
		mem         []byte
		stub        Stub
		host        *HostTable
		payloadSize int
		alloc       Allocator
	}
)

func (MmapAllocator) Alloc(size int) ([]byte, error) {
	b, err := mmap.Mmap(size)
	if err != nil {
		return nil, err
	}
	return b[:size], nil
}

func (MmapAllocator) Free(b []byte) error {
	return mmap.Munmap(b)
}

// Base is the address of the stub, calling it enters the payload.
func (r *Region) Base() uintptr {
	if r.mem == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(&r.mem[0]))
}

// Payload is the address the payload starts at.
func (r *Region) Payload() uintptr {
	if r.mem == nil {
		return 0
	}
	return r.Base() + uintptr(r.PayloadOffset())
}

func (r *Region) PayloadOffset() int { return r.stub.Size() }
func (r *Region) PayloadSize() int   { return r.payloadSize }
func (r *Region) StubSize() int      { return r.stub.Size() }
func (r *Region) Size() int          { return len(r.mem) }
func (r *Region) Stub() Stub         { return r.stub }

// Bytes exposes the region memory, nil after release.
func (r *Region) Bytes() []byte { return r.mem }

// Released reports whether Release was called.
func (r *Region) Released() bool { return r.mem == nil }

// Release gives the memory back to its allocator. Later calls do nothing.
func (r *Region) Release() (err error) {
	if r.mem == nil {
		return nil
	}
	Logger().Debug("release region", zap.Uintptr("base", r.Base()), zap.Int("size", len(r.mem)))
	err = r.alloc.Free(r.mem)
	r.mem = nil
	return
}

// Exec calls the stub and returns what the payload left in EAX.
//
// A payload calling exit never returns here. Exec needs cgo and a stub of the host Arch.
func (r *Region) Exec() (int, error) {
	if r.mem == nil {
		return 0, ErrReleased
	}
	if a := HostArch(); r.stub.Arch() != a {
		return 0, fmt.Errorf("%w: %s stub on %s host", ErrUnsupportedArch, r.stub.Arch(), a)
	}
	Logger().Debug("enter payload", zap.Uintptr("entry", r.Base()), zap.Uintptr("payload", r.Payload()))
	status, err := enter(r.Base())
	// the stub refers into the host table
	runtime.KeepAlive(r.host)
	return status, err
}
