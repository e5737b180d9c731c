package asm

import "github.com/jesperkha/koi/internal/ir"

// intArgRegs is the System V AMD64 integer/pointer argument register
// sequence (spec.md §4.9).
var intArgRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// floatArgRegs is the SSE argument register sequence.
var floatArgRegs = []string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"}

func isFloatKind(k ir.IRKind) bool {
	return k == ir.KF32 || k == ir.KF64
}

// regAllocator tracks the next free argument register of each class for
// one function's parameters, and separately for each call site (spec.md
// §4.9, SPEC_FULL.md supplemented behavior 2: separate param/call
// counters, reset at function entry and at each call).
type regAllocator struct {
	nextInt   int
	nextFloat int
}

func (r *regAllocator) reset() {
	r.nextInt = 0
	r.nextFloat = 0
}

// next returns the next argument register name for a value of kind k, and
// false if the class is exhausted (spilling to the stack is out of scope
// for this core; the corpus original also does not implement it).
func (r *regAllocator) next(k ir.IRKind) (string, bool) {
	if isFloatKind(k) {
		if r.nextFloat >= len(floatArgRegs) {
			return "", false
		}
		reg := floatArgRegs[r.nextFloat]
		r.nextFloat++
		return reg, true
	}
	if r.nextInt >= len(intArgRegs) {
		return "", false
	}
	reg := intArgRegs[r.nextInt]
	r.nextInt++
	return reg, true
}

// sizedReg narrows a 64-bit register name to the width matching size
// bytes, used when moving into narrower return/argument slots.
func sizedReg(reg string, size int) string {
	narrow, ok := registerWidths[reg]
	if !ok {
		return reg
	}
	switch size {
	case 1:
		return narrow.b8
	case 2:
		return narrow.b16
	case 4:
		return narrow.b32
	default:
		return narrow.b64
	}
}

type widthSet struct {
	b8, b16, b32, b64 string
}

var registerWidths = map[string]widthSet{
	"rax": {"al", "ax", "eax", "rax"},
	"rdi": {"dil", "di", "edi", "rdi"},
	"rsi": {"sil", "si", "esi", "rsi"},
	"rdx": {"dl", "dx", "edx", "rdx"},
	"rcx": {"cl", "cx", "ecx", "rcx"},
	"r8":  {"r8b", "r8w", "r8d", "r8"},
	"r9":  {"r9b", "r9w", "r9d", "r9"},
}

// sizeDirective returns the GAS PTR-size keyword for a byte size (spec.md
// §4.9: BYTE, WORD, DWORD, QWORD).
func sizeDirective(size int) string {
	switch {
	case size <= 1:
		return "BYTE"
	case size <= 2:
		return "WORD"
	case size <= 4:
		return "DWORD"
	default:
		return "QWORD"
	}
}

// roundUp4 rounds a byte size up to the minimum 4-byte stack slot
// granularity (spec.md §4.9 Stack slot allocation).
func roundUp4(size int) int {
	if size < 4 {
		return 4
	}
	return size
}

// roundUp16 rounds a byte size up to 16, preserving call-site stack
// alignment (spec.md §4.9).
func roundUp16(size int) int {
	if size == 0 {
		return 0
	}
	return (size + 15) &^ 15
}
