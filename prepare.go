package asmloader

import (
	"bytes"
	"fmt"
	"unsafe"

	"go.uber.org/zap"
)

// Prepare materializes stub into dst, which must already sit at its final address.
//
// The template is copied and padded with NOPs up to stub.Size(), the host table is installed over the magic tags,
// then the self-referencing addresses are rebased onto &dst[0].
// A template that does not match the patcher panics with ErrPatchIntegrity, dst must not be executed then.
func Prepare(dst []byte, stub Stub, host *HostTable) {
	size := stub.Size()
	if len(dst) < size {
		panic(fmt.Errorf("%w: stub of %d bytes in buffer of %d", ErrInvalidPattern, size, len(dst)))
	}
	dst = dst[:size]
	n := copy(dst, stub.Template())
	for i := n; i < size; i++ {
		dst[i] = Nop
	}
	l := stub.Layout()
	for _, v := range stub.install(dst, host) {
		if l.Reloc.Match(v) {
			panic(fmt.Errorf("%w: host address %#x collides with relocation magic", ErrPatchIntegrity, v))
		}
	}
	if c := CountRelocations(dst, l.Reloc.Magic, l.Reloc.Mask, l.WordSize); c != l.RelocSites {
		panic(fmt.Errorf("%w: %s has %d relocation sites, want %d", ErrPatchIntegrity, stub.Name(), c, l.RelocSites))
	}
	base := uint64(uintptr(unsafe.Pointer(&dst[0])))
	Logger().Debug("relocate stub", zap.String("stub", stub.Name()), zap.Uint64("base", base))
	l.Reloc.Apply(dst, base, l.WordSize)
}

// VerifyStub checks a template against the patcher: every tag appears exactly once and outside the relocation
// class, and the template holds exactly the declared relocation sites.
func VerifyStub(stub Stub) error {
	t := stub.Template()
	l := stub.Layout()
	if len(t) > stub.Size() {
		return fmt.Errorf("%s: template of %d bytes exceeds stub size %d", stub.Name(), len(t), stub.Size())
	}
	for _, tag := range l.Tags {
		if l.Reloc.Match(tag) {
			return fmt.Errorf("%s: tag %#x matches relocation magic", stub.Name(), tag)
		}
		if c := bytes.Count(t, encodeWord(tag, l.WordSize)); c != 1 {
			return fmt.Errorf("%s: tag %#x found %d times", stub.Name(), tag, c)
		}
	}
	if c := CountRelocations(t, l.Reloc.Magic, l.Reloc.Mask, l.WordSize); c != l.RelocSites {
		return fmt.Errorf("%s: %d relocation sites, want %d", stub.Name(), c, l.RelocSites)
	}
	return nil
}
