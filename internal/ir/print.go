package ir

import (
	"fmt"
	"strings"
)

// Print renders u as the textual IR form used in golden tests (spec.md §8
// scenario examples, e.g. "func f() void\n  ret void").
func Print(u *Unit) string {
	var sb strings.Builder
	for _, ext := range u.Externs {
		fmt.Fprintf(&sb, "extern func %s\n", sigString(ext.Params, ext.Ret))
	}
	for _, f := range u.Funcs {
		fmt.Fprintf(&sb, "func %s%s\n", f.Name, sigString(f.Params, f.Ret))
		for _, ins := range f.Body {
			sb.WriteString("  " + insString(ins) + "\n")
		}
	}
	return sb.String()
}

func sigString(params []IRType, ret IRType) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ") " + ret.String()
}

func insString(ins Ins) string {
	switch ins := ins.(type) {
	case *Store:
		return fmt.Sprintf("$%d %s = %s", ins.ID, ins.Type, ins.Value)
	case *Assign:
		return fmt.Sprintf("%s %s = %s", ins.Lvalue, ins.Type, ins.Value)
	case *Return:
		if ins.Type.Kind == KVoid {
			return "ret void"
		}
		return fmt.Sprintf("ret %s %s", ins.Type, ins.Value)
	case *Call:
		args := make([]string, len(ins.Args))
		for i, a := range ins.Args {
			args[i] = a.Value.String()
		}
		return fmt.Sprintf("$%d %s = call %s(%s)", ins.ResultID, ins.Type, ins.Callee, strings.Join(args, ", "))
	default:
		return "?"
	}
}
