package asmloader

import (
	"errors"
	"fmt"
	"unsafe"
)

// HostTableVersion is the revision of the host function table ABI. Any change of order or count bumps it.
const HostTableVersion = 1

// HostFunc is an index into the host function table.
type HostFunc int

const (
	HostExit    HostFunc = iota // exit(int)
	HostPutchar                 // putchar(int) int
	HostGetchar                 // getchar() int
	HostPrintf                  // printf(format, ...) int
	HostScanf                   // scanf(format, ...) int
	HostFuncCount
)

var hostFuncNames = [HostFuncCount]string{"exit", "putchar", "getchar", "printf", "scanf"}

func (f HostFunc) String() string {
	if f < 0 || f >= HostFuncCount {
		return fmt.Sprintf("HostFunc(%d)", int(f))
	}
	return hostFuncNames[f]
}

// HostTable holds the code addresses exposed to loaded code, ordered by HostFunc.
//
// The entries live in one contiguous array, the 32-bit stub hands out its address as is.
type HostTable struct {
	funcs []uintptr
}

// NewHostTable create a table from the five host function addresses.
func NewHostTable(exit, putchar, getchar, printf, scanf uintptr) *HostTable {
	return &HostTable{funcs: []uintptr{exit, putchar, getchar, printf, scanf}}
}

// Func returns the address of one host function.
func (t *HostTable) Func(f HostFunc) uintptr {
	return t.funcs[f]
}

// Addr is the address of the backing array.
func (t *HostTable) Addr() uintptr {
	return uintptr(unsafe.Pointer(&t.funcs[0]))
}

// Funcs returns a copy of the entries.
func (t *HostTable) Funcs() []uintptr {
	return append([]uintptr(nil), t.funcs...)
}

var (
	// ErrOpen occurs when the input file can't be opened or inspected.
	ErrOpen = errors.New("could not open input file")
	// ErrEmptyFile occurs when the input file is empty.
	ErrEmptyFile = errors.New("file of 0 size")
	// ErrAlloc occurs when the executable region can't be allocated.
	ErrAlloc = errors.New("could not allocate memory")
	// ErrRead occurs on a short read of the input file.
	ErrRead = errors.New("read error")
	// ErrUnsupportedArch occurs when no stub exists for an architecture.
	ErrUnsupportedArch = errors.New("unsupported architecture")
	// ErrPatchIntegrity is the panic value when a stub template and the patcher disagree. It is never returned.
	ErrPatchIntegrity = errors.New("stub patch integrity violated")
	// ErrInvalidPattern is the panic value of a misused pattern engine.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrInvalidRelocation is the panic value of a misused relocation engine.
	ErrInvalidRelocation = errors.New("invalid relocation")
	// ErrReleased occurs when using a Region after release.
	ErrReleased = errors.New("region already released")
	// ErrNoNative occurs when the binary was built without cgo.
	ErrNoNative = errors.New("native execution needs cgo")
)
