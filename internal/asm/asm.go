// Package asm implements the x86-64 assembler (spec.md §4.9): it walks a
// Unit's IR, assigns stack slots and argument registers, and emits GAS
// Intel-syntax text conforming to the System V AMD64 calling convention.
package asm

import (
	"fmt"
	"strings"

	"github.com/jesperkha/koi/internal/ir"
)

// Assemble lowers unit into GAS Intel-syntax assembly text.
func Assemble(unit *ir.Unit) string {
	a := &assembler{unit: unit}
	return a.run()
}

type assembler struct {
	unit *ir.Unit

	head strings.Builder
	data strings.Builder
	text strings.Builder
}

func (a *assembler) run() string {
	a.head.WriteString(".intel_syntax noprefix\n")
	for _, ext := range a.unit.Externs {
		fmt.Fprintf(&a.head, ".extern %s\n", ext.Name)
	}

	for _, s := range a.unit.Strings {
		fmt.Fprintf(&a.data, ".%s: .asciz %s\n", s.Symbol, quoteAsciz(s.Bytes))
	}

	for _, f := range a.unit.Funcs {
		a.emitFunc(f)
	}

	var out strings.Builder
	out.WriteString(a.head.String())
	if a.data.Len() > 0 {
		out.WriteString(".data\n")
		out.WriteString(a.data.String())
	}
	out.WriteString(".text\n")
	out.WriteString(a.text.String())
	out.WriteString(".section .note.GNU-stack,\"\",@progbits\n")
	return out.String()
}

func quoteAsciz(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range b {
		switch c {
		case '"':
			sb.WriteString("\\\"")
		case '\\':
			sb.WriteString("\\\\")
		case '\n':
			sb.WriteString("\\n")
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// funcCtx is the per-function assembly state: slot offsets for every
// const-id and param index, and the running stack cursor.
type funcCtx struct {
	slots      map[int]slotInfo
	paramSlots map[int]slotInfo
	cursor     int
	call       regAllocator
}

type slotInfo struct {
	offset int
	size   int
}

func (a *assembler) emitFunc(f *ir.Func) {
	fc := &funcCtx{slots: make(map[int]slotInfo), paramSlots: make(map[int]slotInfo)}

	if f.Public {
		fmt.Fprintf(&a.text, ".globl %s\n", f.Name)
	}
	fmt.Fprintf(&a.text, "%s:\n", f.Name)
	a.text.WriteString("  push rbp\n")
	a.text.WriteString("  mov rbp, rsp\n")

	frame := roundUp16(f.StackSize)
	if frame > 0 {
		fmt.Fprintf(&a.text, "  sub rsp, %d\n", frame)
	}

	var params regAllocator
	for i, pty := range f.Params {
		size := roundUp4(pty.Size())
		fc.cursor += size
		fc.paramSlots[i] = slotInfo{offset: fc.cursor, size: pty.Size()}

		reg, ok := params.next(pty.Kind)
		if !ok {
			continue // parameter class exhausted; out of scope for this core
		}
		a.movRegToStack(&a.text, fc.cursor, pty.Size(), sizedReg(reg, pty.Size()))
	}

	for _, ins := range f.Body {
		a.emitIns(fc, ins)
	}

	a.text.WriteString("\n")
}

func (a *assembler) emitIns(fc *funcCtx, ins ir.Ins) {
	switch ins := ins.(type) {
	case *ir.Store:
		size := roundUp4(ins.Type.Size())
		fc.cursor += size
		fc.slots[ins.ID] = slotInfo{offset: fc.cursor, size: ins.Type.Size()}
		a.movValueToStack(fc, &a.text, fc.cursor, ins.Type, ins.Value)

	case *ir.Assign:
		switch ins.Lvalue.Kind {
		case ir.VConst:
			slot := fc.slots[ins.Lvalue.ID]
			a.movValueToStack(fc, &a.text, slot.offset, ins.Type, ins.Value)
		case ir.VParam:
			slot := fc.paramSlots[ins.Lvalue.Index]
			a.movValueToStack(fc, &a.text, slot.offset, ins.Type, ins.Value)
		}

	case *ir.Return:
		if ins.Type.Size() > 0 {
			reg := "rax"
			if isFloatKind(ins.Type.Kind) {
				reg = "xmm0"
			}
			a.movValueToReg(fc, &a.text, reg, ins.Type, ins.Value)
		}
		a.text.WriteString("  leave\n  ret\n")

	case *ir.Call:
		fc.call.reset()
		for _, arg := range ins.Args {
			reg, ok := fc.call.next(arg.Type.Kind)
			if !ok {
				continue
			}
			a.movValueToReg(fc, &a.text, sizedReg(reg, arg.Type.Size()), arg.Type, arg.Value)
		}
		fmt.Fprintf(&a.text, "  call %s\n", ins.Callee.Name)

		if ins.Type.Size() > 0 {
			size := roundUp4(ins.Type.Size())
			fc.cursor += size
			fc.slots[ins.ResultID] = slotInfo{offset: fc.cursor, size: ins.Type.Size()}
			retReg := "rax"
			if isFloatKind(ins.Type.Kind) {
				retReg = "xmm0"
			}
			a.movRegToStack(&a.text, fc.cursor, ins.Type.Size(), sizedReg(retReg, ins.Type.Size()))
		}
	}
}

// operandOf renders a stack-resident value (VConst/VParam) as a sized
// memory operand, or an immediate for VInt (spec.md §4.9 mov contract).
func (a *assembler) operandOf(fc *funcCtx, v ir.Value) string {
	switch v.Kind {
	case ir.VInt:
		return fmt.Sprintf("%d", v.Int)
	case ir.VConst:
		slot := fc.slots[v.ID]
		return fmt.Sprintf("%s PTR [rbp-%d]", sizeDirective(slot.size), slot.offset)
	case ir.VParam:
		slot := fc.paramSlots[v.Index]
		return fmt.Sprintf("%s PTR [rbp-%d]", sizeDirective(slot.size), slot.offset)
	default:
		return ""
	}
}

func (a *assembler) isStackOperand(v ir.Value) bool {
	return v.Kind == ir.VConst || v.Kind == ir.VParam
}

// movValueToReg implements the `mov` helper contract's Reg-destination
// cases (spec.md §4.9).
func (a *assembler) movValueToReg(fc *funcCtx, w *strings.Builder, reg string, ty ir.IRType, v ir.Value) {
	switch v.Kind {
	case ir.VData:
		fmt.Fprintf(w, "  lea %s, [rip + .%s]\n", reg, v.Name)
	case ir.VFunction:
		fmt.Fprintf(w, "  lea %s, [rip + %s]\n", reg, v.Name)
	default:
		fmt.Fprintf(w, "  mov %s, %s\n", reg, a.operandOf(fc, v))
	}
}

func (a *assembler) movRegToStack(w *strings.Builder, offset, size int, reg string) {
	fmt.Fprintf(w, "  mov %s PTR [rbp-%d], %s\n", sizeDirective(size), offset, reg)
}

// movValueToStack implements the `mov` helper contract's Stack-
// destination cases: immediate/register sources move directly; stack or
// data sources stage through rax since x86-64 has no memory-to-memory
// move (spec.md §4.9).
func (a *assembler) movValueToStack(fc *funcCtx, w *strings.Builder, offset int, ty ir.IRType, v ir.Value) {
	dest := fmt.Sprintf("%s PTR [rbp-%d]", sizeDirective(ty.Size()), offset)

	switch {
	case v.Kind == ir.VData:
		fmt.Fprintf(w, "  lea rax, [rip + .%s]\n", v.Name)
		fmt.Fprintf(w, "  mov %s, rax\n", dest)
	case v.Kind == ir.VInt, v.Kind == ir.VFloat:
		fmt.Fprintf(w, "  mov %s, %s\n", dest, a.operandOf(fc, v))
	case a.isStackOperand(v):
		stageReg := sizedReg("rax", ty.Size())
		fmt.Fprintf(w, "  mov %s, %s\n", stageReg, a.operandOf(fc, v))
		fmt.Fprintf(w, "  mov %s, %s\n", dest, stageReg)
	case v.Kind == ir.VFunction:
		fmt.Fprintf(w, "  lea rax, [rip + %s]\n", v.Name)
		fmt.Fprintf(w, "  mov %s, rax\n", dest)
	}
}
