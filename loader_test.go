package asmloader

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	// memFile is a File whose Stat may lie about its size.
	memFile struct {
		*bytes.Reader
		name   string
		size   int64
		closed int
	}
	memInfo struct {
		name string
		size int64
	}
	// heapAllocator hands out Go memory, enough for everything but execution.
	heapAllocator struct {
		fail   error
		allocs int
		freed  [][]byte
	}
)

func (f *memFile) Close() error { f.closed++; return nil }
func (f *memFile) Stat() (fs.FileInfo, error) {
	return memInfo{name: f.name, size: f.size}, nil
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return 0o644 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }

func (a *heapAllocator) Alloc(size int) ([]byte, error) {
	a.allocs++
	if a.fail != nil {
		return nil, a.fail
	}
	return make([]byte, size), nil
}

func (a *heapAllocator) Free(b []byte) error {
	a.freed = append(a.freed, b)
	return nil
}

func newMemFile(data []byte) *memFile {
	return &memFile{Reader: bytes.NewReader(data), name: "code.bin", size: int64(len(data))}
}

func testLoader(t *testing.T, f *memFile, a Allocator) *Loader {
	s, err := SelectStub(ArchX64SysV)
	require.NoError(t, err)
	return &Loader{
		Stub:      s,
		Host:      testHost(),
		Allocator: a,
		Open: func(name string) (File, error) {
			if f == nil {
				return nil, fs.ErrNotExist
			}
			return f, nil
		},
	}
}

func TestLoad(t *testing.T) {
	payload := []byte{0xb8, 0x2a, 0x00, 0x00, 0x00, 0xc3}
	f := newMemFile(payload)
	a := new(heapAllocator)
	r, err := testLoader(t, f, a).Load("code.bin")
	require.NoError(t, err)
	defer func() { _ = r.Release() }()

	assert.Equal(t, 1, f.closed, "file closed after loading")
	assert.Equal(t, 1, a.allocs)
	assert.Equal(t, StubSize+len(payload)+StubPad, r.Size())
	assert.Equal(t, StubSize, r.PayloadOffset())
	assert.Equal(t, StubSize, r.StubSize())
	assert.Equal(t, len(payload), r.PayloadSize())
	assert.Equal(t, r.Base()+StubSize, r.Payload())

	mem := r.Bytes()
	assert.Equal(t, payload, mem[StubSize:StubSize+len(payload)])
	assert.Equal(t, byte(Terminator), mem[StubSize+len(payload)])
	assert.Equal(t, byte(0x53), mem[0], "stub in front")
	assert.Equal(t, uint64(r.Base())+0x18, word(mem[3:], 8), "stub rebased onto the region")
}

func TestLoadOpenError(t *testing.T) {
	a := new(heapAllocator)
	_, err := testLoader(t, nil, a).Load("missing.bin")
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Zero(t, a.allocs)
}

func TestLoadEmptyFile(t *testing.T) {
	f := newMemFile(nil)
	a := new(heapAllocator)
	_, err := testLoader(t, f, a).Load("code.bin")
	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.Zero(t, a.allocs, "no allocation for an empty file")
	assert.Equal(t, 1, f.closed)
}

func TestLoadAllocError(t *testing.T) {
	f := newMemFile([]byte{0xc3})
	a := &heapAllocator{fail: errors.New("out of address space")}
	_, err := testLoader(t, f, a).Load("code.bin")
	assert.ErrorIs(t, err, ErrAlloc)
	assert.ErrorIs(t, err, a.fail)
	assert.Equal(t, 1, f.closed, "file closed on allocation failure")
	assert.Empty(t, a.freed)
}

func TestLoadShortRead(t *testing.T) {
	f := newMemFile([]byte{0x90, 0x90, 0xc3})
	f.size = 10
	a := new(heapAllocator)
	_, err := testLoader(t, f, a).Load("code.bin")
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 1, f.closed)
	assert.Len(t, a.freed, 1, "region released on read failure")
}

func TestLoadPatchIntegrity(t *testing.T) {
	tpl := fakeTemplate()
	copy(tpl[8:], filler(8))
	f := newMemFile([]byte{0xc3})
	a := new(heapAllocator)
	l := testLoader(t, f, a)
	l.Stub = fakeStub{template: tpl, sites: 1}
	err := recovered(func() { _, _ = l.Load("code.bin") })
	assert.ErrorIs(t, err, ErrPatchIntegrity)
	assert.Equal(t, 1, f.closed)
	assert.Len(t, a.freed, 1, "region released before the panic escapes")
}

func TestRegionRelease(t *testing.T) {
	a := new(heapAllocator)
	r, err := testLoader(t, newMemFile([]byte{0xc3}), a).Load("code.bin")
	require.NoError(t, err)
	require.NoError(t, r.Release())
	require.NoError(t, r.Release())
	assert.Len(t, a.freed, 1, "released exactly once")
	assert.True(t, r.Released())
	assert.Zero(t, r.Base())
	assert.Zero(t, r.Payload())
	_, err = r.Exec()
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, DumpStub(io.Discard, r), ErrReleased)
}

func TestRegionForeignArch(t *testing.T) {
	a := new(heapAllocator)
	l := testLoader(t, newMemFile([]byte{0xc3}), a)
	foreign := ArchX86
	if HostArch() == ArchX86 {
		foreign = ArchX64SysV
	}
	s, err := SelectStub(foreign)
	require.NoError(t, err)
	l.Stub = s
	r, err := l.Load("code.bin")
	require.NoError(t, err)
	defer func() { _ = r.Release() }()
	_, err = r.Exec()
	assert.ErrorIs(t, err, ErrUnsupportedArch)
}

func TestLoadFromDisk(t *testing.T) {
	a := new(heapAllocator)
	l := testLoader(t, nil, a)
	l.Open = OpenFile
	r, err := l.Load("testdata/answer.bin")
	require.NoError(t, err)
	defer func() { _ = r.Release() }()
	data, err := os.ReadFile("testdata/answer.bin")
	require.NoError(t, err)
	assert.Equal(t, data, r.Bytes()[StubSize:StubSize+len(data)])

	_, err = l.Load("testdata/empty.bin")
	assert.ErrorIs(t, err, ErrEmptyFile)
	_, err = l.Load("testdata/missing.bin")
	assert.ErrorIs(t, err, ErrOpen)
}

func openFds(t *testing.T) int {
	e, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	return len(e)
}

func TestLoadClosesDiskFile(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("counts /proc/self/fd")
	}
	l := testLoader(t, nil, new(heapAllocator))
	l.Open = OpenFile
	before := openFds(t)
	for i := 0; i < 20; i++ {
		r, err := l.Load("testdata/answer.bin")
		require.NoError(t, err)
		require.NoError(t, r.Release())
		_, err = l.Load("testdata/empty.bin")
		require.ErrorIs(t, err, ErrEmptyFile)
	}
	assert.Equal(t, before, openFds(t), "no file left open")
}
