package asmloader

import "fmt"

var (
	// Reloc64 marks self-referencing addresses in 64-bit stubs, the low 24 bits carry the stub offset.
	// Magic is non-canonical on x86-64 so no real address can match it.
	Reloc64 = Relocation{Magic: 0x52454C4F43000000, Mask: 0xFFFFFFFFFF000000}
	// Reloc32 marks self-referencing addresses in 32-bit stubs, the stub offset sits in bits 8-15.
	// The top 64 KiB is never mapped for user code, the zero low byte keeps opcode bytes from matching.
	Reloc32 = Relocation{Magic: 0xFFFF0000, Mask: 0xFFFF00FF}
)

// Relocation is a masked magic identifying words to rebase.
type Relocation struct {
	Magic uint64
	Mask  uint64
}

// Match reports whether word v is a relocation site.
func (r Relocation) Match(v uint64) bool {
	return v&r.Mask == r.Magic
}

// Apply rebases buf, see ApplyRelocations.
func (r Relocation) Apply(buf []byte, base uint64, width int) int {
	return ApplyRelocations(buf, base, r.Magic, r.Mask, width)
}

// ApplyRelocations rewrites every width bytes little-endian word of buf that matches magic under mask
// into word-magic+base, truncated to width. The scan moves one byte at a time and continues after each
// rewritten word. It returns the count of rewritten words.
//
// Any data that happens to match is rewritten as well, templates must pick magic and mask accordingly.
func ApplyRelocations(buf []byte, base, magic, mask uint64, width int) (n int) {
	checkRelocation(magic, mask, width)
	for i := 0; i+width <= len(buf); {
		v := word(buf[i:], width)
		if v&mask != magic {
			i++
			continue
		}
		putWord(buf[i:], v-magic+base, width)
		n++
		i += width
	}
	return
}

// CountRelocations returns how many words ApplyRelocations would rewrite.
func CountRelocations(buf []byte, magic, mask uint64, width int) (n int) {
	checkRelocation(magic, mask, width)
	for i := 0; i+width <= len(buf); {
		if word(buf[i:], width)&mask != magic {
			i++
			continue
		}
		n++
		i += width
	}
	return
}

func checkRelocation(magic, mask uint64, width int) {
	if magic&^mask != 0 {
		panic(fmt.Errorf("%w: magic %#x exceeds mask %#x", ErrInvalidRelocation, magic, mask))
	}
	if width != 4 && width != 8 {
		panic(fmt.Errorf("%w: word width %d", ErrInvalidRelocation, width))
	}
}
