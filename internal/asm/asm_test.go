package asm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jesperkha/koi/internal/asm"
	"github.com/jesperkha/koi/internal/ir"
)

func TestAssembleVoidFunc(t *testing.T) {
	unit := &ir.Unit{
		ModulePath: "main",
		Funcs: []*ir.Func{
			{
				Name:   "main",
				Public: true,
				Ret:    ir.IRType{Kind: ir.KVoid},
				Body: []ir.Ins{
					&ir.Return{Type: ir.IRType{Kind: ir.KVoid}, Value: ir.Value{Kind: ir.VVoid}},
				},
			},
		},
	}

	out := asm.Assemble(unit)
	require.Contains(t, out, ".intel_syntax noprefix")
	require.Contains(t, out, ".globl main")
	require.Contains(t, out, "main:")
	require.Contains(t, out, "push rbp")
	require.Contains(t, out, "mov rbp, rsp")
	require.Contains(t, out, "leave\n  ret")
	require.NotContains(t, out, "sub rsp", "a function with StackSize 0 omits the prologue's sub instruction")
	require.Contains(t, out, ".section .note.GNU-stack")
}

func TestAssembleReturnsLiteralThroughStack(t *testing.T) {
	unit := &ir.Unit{
		Funcs: []*ir.Func{
			{
				Name:      "f",
				Public:    true,
				Ret:       ir.IRType{Kind: ir.KI64},
				StackSize: 8,
				Body: []ir.Ins{
					&ir.Store{ID: 0, Type: ir.IRType{Kind: ir.KI64}, Value: ir.Value{Kind: ir.VInt, Int: 7}},
					&ir.Return{Type: ir.IRType{Kind: ir.KI64}, Value: ir.Value{Kind: ir.VConst, ID: 0}},
				},
			},
		},
	}

	out := asm.Assemble(unit)
	require.Contains(t, out, "sub rsp, 16", "8 bytes of locals round up to a 16-byte aligned frame")
	require.Contains(t, out, "QWORD PTR [rbp-8], 7")
	require.Contains(t, out, "mov rax, QWORD PTR [rbp-8]")
}

func TestAssembleSpillsParamsAndCallResult(t *testing.T) {
	unit := &ir.Unit{
		Externs: []*ir.ExternFunc{
			{Name: "helper", Params: []ir.IRType{{Kind: ir.KI64}}, Ret: ir.IRType{Kind: ir.KI64}},
		},
		Funcs: []*ir.Func{
			{
				Name:      "caller",
				Public:    true,
				Params:    []ir.IRType{{Kind: ir.KI64}},
				Ret:       ir.IRType{Kind: ir.KI64},
				StackSize: 8,
				Body: []ir.Ins{
					&ir.Call{
						Callee:   ir.Value{Kind: ir.VFunction, Name: "helper"},
						Type:     ir.IRType{Kind: ir.KI64},
						Args:     []ir.Arg{{Type: ir.IRType{Kind: ir.KI64}, Value: ir.Value{Kind: ir.VParam, Index: 0}}},
						ResultID: 0,
					},
					&ir.Return{Type: ir.IRType{Kind: ir.KI64}, Value: ir.Value{Kind: ir.VConst, ID: 0}},
				},
			},
		},
	}

	out := asm.Assemble(unit)
	require.Contains(t, out, ".extern helper")
	require.Contains(t, out, "mov QWORD PTR [rbp-8], rdi", "incoming param spilled to its stack slot")
	require.Contains(t, out, "call helper")
	lines := strings.Split(out, "\n")

	callIdx, retSpillIdx := -1, -1
	for i, l := range lines {
		if strings.Contains(l, "call helper") {
			callIdx = i
		}
		if callIdx >= 0 && retSpillIdx < 0 && strings.Contains(l, "rax") && strings.Contains(l, "PTR") {
			retSpillIdx = i
		}
	}
	require.Greater(t, callIdx, -1)
	require.Greater(t, retSpillIdx, callIdx, "the call's result register must be spilled to the stack immediately after the call instruction")
}

func TestAssembleEmitsStringData(t *testing.T) {
	unit := &ir.Unit{
		Strings: []*ir.StringData{
			{Symbol: "S1", Bytes: []byte("hi\n")},
		},
		Funcs: []*ir.Func{
			{Name: "f", Ret: ir.IRType{Kind: ir.KVoid}, Body: []ir.Ins{
				&ir.Return{Type: ir.IRType{Kind: ir.KVoid}, Value: ir.Value{Kind: ir.VVoid}},
			}},
		},
	}

	out := asm.Assemble(unit)
	require.Contains(t, out, ".data")
	require.Contains(t, out, `.S1: .asciz "hi\n"`)
}
