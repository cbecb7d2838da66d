package asmloader

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	// StubSize is the space reserved for the stub, the payload starts right after it.
	StubSize = 0x100
	// StubPad is the count of bytes after the payload.
	StubPad = 1
	// Terminator is written after the payload in case it falls off the end (int3).
	Terminator = 0xCC
	// Nop fills the stub area behind the template.
	Nop = 0x90
)

// Arch identifies a stub variant: an instruction set together with the host calling convention.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX86          // x86 cdecl
	ArchX64Win       // x86-64 Windows ABI
	ArchX64SysV      // x86-64 System V ABI
)

var archNames = map[Arch]string{
	ArchUnknown: "unknown",
	ArchX86:     "x86",
	ArchX64Win:  "x64-win",
	ArchX64SysV: "x64-sysv",
}

func (a Arch) String() string {
	if s, ok := archNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Arch(%d)", int(a))
}

// ParseArch is the reverse of [Arch.String].
func ParseArch(s string) (Arch, error) {
	for a, n := range archNames {
		if a != ArchUnknown && strings.EqualFold(n, s) {
			return a, nil
		}
	}
	return ArchUnknown, fmt.Errorf("%w: %q", ErrUnsupportedArch, s)
}

// HostArch returns the variant matching the running binary.
func HostArch() Arch {
	return archOf(runtime.GOOS, runtime.GOARCH)
}

func archOf(goos, goarch string) Arch {
	switch goarch {
	case "386":
		return ArchX86
	case "amd64":
		if goos == "windows" {
			return ArchX64Win
		}
		return ArchX64SysV
	}
	return ArchUnknown
}

type (
	// Stub is a precompiled trampoline for one Arch, this interface can not be implement outside this package.
	Stub interface {
		Arch() Arch
		Name() string     // name of the nasm source
		Template() []byte // a copy of the template
		Size() int        // bytes reserved in a region, at least len(Template())
		Layout() Layout
		install(dst []byte, host *HostTable) []uint64 // writes the host table into a copied template, returns the written words
	}
	// Layout describes how a Stub is patched and entered.
	Layout struct {
		WordSize      int        // bytes of an address
		TableRegister string     // holds the host table when the payload starts
		Wrapped       bool       // host functions are reached through calling convention wrappers
		Tags          []uint64   // magic tags, each must appear exactly once
		Reloc         Relocation // marks self-referencing addresses
		RelocSites    int        // count of relocation sites in the template
	}
	// x86Stub points EBX straight at the host table.
	x86Stub struct {
		template []byte
	}
	// x64Stub embeds its own table of wrappers, one per host function.
	x64Stub struct {
		arch     Arch
		name     string
		template []byte
		sites    int
	}
)

//go:generate go run ./stubgen generate

// SelectStub returns the stub for an Arch.
func SelectStub(a Arch) (Stub, error) {
	switch a {
	case ArchX86:
		return x86Stub{template: stubX86_32}, nil
	case ArchX64Win:
		return x64Stub{arch: a, name: "x86_64_mswin_stub", template: stubX86_64MSWin, sites: 1 + int(HostFuncCount)}, nil
	case ArchX64SysV:
		return x64Stub{arch: a, name: "x86_64_sysv_stub", template: stubX86_64SysV, sites: 1 + int(HostFuncCount)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedArch, a)
}

// Stubs lists every supported stub.
func Stubs() (s []Stub) {
	for _, a := range []Arch{ArchX86, ArchX64Win, ArchX64SysV} {
		v, err := SelectStub(a)
		if err != nil {
			panic(err)
		}
		s = append(s, v)
	}
	return
}

func (s x86Stub) Arch() Arch       { return ArchX86 }
func (s x86Stub) Name() string     { return "x86_32_stub" }
func (s x86Stub) Template() []byte { return append([]byte(nil), s.template...) }
func (s x86Stub) Size() int        { return StubSize }
func (s x86Stub) Layout() Layout {
	return Layout{
		WordSize:      4,
		TableRegister: "ebx",
		Tags:          []uint64{TagNamespace32},
		Reloc:         Reloc32,
	}
}

// install replaces the single table placeholder with the address of the host array.
func (s x86Stub) install(dst []byte, host *HostTable) []uint64 {
	v := uint64(uint32(host.Addr()))
	ReplacePattern(dst, MagicTag(TagNamespace32, 0, 4), encodeWord(v, 4))
	return []uint64{v}
}

func (s x64Stub) Arch() Arch       { return s.arch }
func (s x64Stub) Name() string     { return s.name }
func (s x64Stub) Template() []byte { return append([]byte(nil), s.template...) }
func (s x64Stub) Size() int        { return StubSize }
func (s x64Stub) Layout() Layout {
	tags := make([]uint64, HostFuncCount)
	for i := range tags {
		tags[i] = TagNamespace64 + uint64(i)
	}
	return Layout{
		WordSize:      8,
		TableRegister: "rbx",
		Wrapped:       true,
		Tags:          tags,
		Reloc:         Reloc64,
		RelocSites:    s.sites,
	}
}

// install points every wrapper at its host function.
func (s x64Stub) install(dst []byte, host *HostTable) (v []uint64) {
	for f := HostFunc(0); f < HostFuncCount; f++ {
		a := uint64(host.Func(f))
		ReplacePattern(dst, MagicTag(TagNamespace64, int(f), 8), encodeWord(a, 8))
		v = append(v, a)
	}
	return
}
