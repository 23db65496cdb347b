package builtins

import (
	"fmt"
	"io"
	"os"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/config"
	"github.com/refinex-lang/refinex/internal/values"
)

// registerPrint wires the one built-in allowed to perform I/O at
// evaluation time. Every other built-in must be pure so that the staged
// evaluator can run compile-time code without observable side effects;
// print is the sanctioned exception (§1 Non-goals resolution), since a
// partial evaluator that cannot print a constant-folded message defeats
// its own demonstration value.
func registerPrint(r *Registry) {
	r.register(&Definition{
		Name: config.PrintFuncName, Arity: -1, SideEffecting: true,
		Staged: func(apply Apply, args []*values.SValue) (*values.SValue, *values.EvalError) {
			// print only ever runs against Now arguments: a Later argument
			// means the print call itself must residualize rather than fire.
			for _, a := range args {
				if !a.IsNow() {
					argExprs := make([]ast.Expression, len(args))
					for i, arg := range args {
						argExprs[i] = values.Reify(arg)
					}
					residual := &ast.CallExpr{Callee: &ast.Identifier{Name: config.PrintFuncName}, Args: argExprs}
					return values.Later(residual, values.ConstraintOf(values.Null{}), nil), nil
				}
			}
			fmt.Fprintln(Stdout, formatAll(args))
			return values.Now(values.Null{}), nil
		},
	})
}

// Stdout is where print writes; tests may redirect it.
var Stdout io.Writer = os.Stdout

func formatAll(args []*values.SValue) string {
	if len(args) == 0 {
		return ""
	}
	out := args[0].Value.String()
	for _, a := range args[1:] {
		out += " " + a.Value.String()
	}
	return out
}
