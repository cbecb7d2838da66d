package asmloader

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ZenLiuCN/fn"
	"go.uber.org/zap"
)

type (
	// File is the part of *os.File a Loader reads from.
	File interface {
		io.ReadCloser
		Stat() (fs.FileInfo, error)
	}
	// Loader places raw machine code behind a prepared stub.
	//
	// Use Steps:
	//
	//	1. NewLoader with a host table, or fill the collaborators by hand.
	//	2. [Loader.Load] a file into a Region.
	//	3. [Region.Exec] the Region.
	//	4. Call [Region.Release] to free the memory.
	Loader struct {
		Stub      Stub
		Host      *HostTable
		Allocator Allocator
		Open      func(name string) (File, error)
	}
)

// OpenFile is the default Loader.Open.
func OpenFile(name string) (File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// NewLoader create a Loader for the host Arch, backed by mmap and the real filesystem.
func NewLoader(host *HostTable) (*Loader, error) {
	stub, err := SelectStub(HostArch())
	if err != nil {
		return nil, err
	}
	return &Loader{Stub: stub, Host: host, Allocator: MmapAllocator{}, Open: OpenFile}, nil
}

// Load reads the file at path into a fresh region and prepares the stub in front of it.
//
// On failure nothing stays allocated and the error wraps one of ErrOpen, ErrEmptyFile, ErrAlloc or ErrRead.
// A stub that can't be patched panics with ErrPatchIntegrity after the region was released.
func (l *Loader) Load(path string) (r *Region, err error) {
	log := Logger().With(zap.String("file", path), zap.String("stub", l.Stub.Name()))
	f, err := l.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer fn.IgnoreClose(f)()
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	size := int(fi.Size())
	if size == 0 {
		return nil, ErrEmptyFile
	}
	stubSize := l.Stub.Size()
	mem, err := l.Allocator.Alloc(stubSize + size + StubPad)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAlloc, err)
	}
	region := &Region{mem: mem, stub: l.Stub, host: l.Host, payloadSize: size, alloc: l.Allocator}
	log.Debug("allocated region", zap.Uintptr("base", region.Base()), zap.Int("size", region.Size()))
	defer func() {
		if r == nil {
			_ = region.Release()
		}
	}()
	if _, err = io.ReadFull(f, mem[stubSize:stubSize+size]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	Prepare(mem, l.Stub, l.Host)
	mem[stubSize+size] = Terminator
	log.Debug("loaded payload", zap.Uintptr("payload", region.Payload()), zap.Int("bytes", size))
	return region, nil
}
