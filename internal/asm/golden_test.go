package asm_test

import (
	"testing"

	"github.com/jesperkha/koi/internal/asm"
	"github.com/jesperkha/koi/internal/ir"
	"github.com/jesperkha/koi/testutil"
)

// TestAssembleGoldenOutput pins the full text the assembler produces for a
// small multi-function unit, catching accidental instruction-selection or
// register-allocation drift that the targeted substring tests in
// asm_test.go would miss. Run with UPDATE_GOLDENS=true to refresh testdata after an
// intentional codegen change.
func TestAssembleGoldenOutput(t *testing.T) {
	unit := &ir.Unit{
		ModulePath: "main",
		Externs: []*ir.ExternFunc{
			{Name: "add_one", Params: []ir.IRType{{Kind: ir.KI64}}, Ret: ir.IRType{Kind: ir.KI64}},
		},
		Strings: []*ir.StringData{
			{Symbol: "S0", Bytes: []byte("hello\n")},
		},
		Funcs: []*ir.Func{
			{
				Name:      "main",
				Public:    true,
				Params:    []ir.IRType{{Kind: ir.KI64}},
				Ret:       ir.IRType{Kind: ir.KI64},
				StackSize: 8,
				Body: []ir.Ins{
					&ir.Call{
						Callee:   ir.Value{Kind: ir.VFunction, Name: "add_one"},
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
	testutil.CompareWithGolden(t, "asm", "call_and_return", out)
}
