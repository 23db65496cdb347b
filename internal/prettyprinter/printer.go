// Package prettyprinter renders a residual ast.Expression back to source
// text — the "code generation collaborator" from spec.md §6, trimmed to
// the subset of Expression a Later SValue's Residual can actually be:
// literals, variables, binary/unary ops, conditionals, calls, method
// calls, object/array literals, and field/index access.
package prettyprinter

import (
	"bytes"
	"fmt"

	"github.com/refinex-lang/refinex/internal/ast"
)

// operatorPrecedence mirrors the teacher's printer table, trimmed to the
// operator set this module's BinOp/UnOp actually define.
var operatorPrecedence = map[ast.BinOp]int{
	ast.OpOr:    1,
	ast.OpAnd:   2,
	ast.OpEq:    3,
	ast.OpNotEq: 3,
	ast.OpLt:    4,
	ast.OpGt:    4,
	ast.OpLtEq:  4,
	ast.OpGtEq:  4,
	ast.OpAdd:   5,
	ast.OpSub:   5,
	ast.OpMul:   6,
	ast.OpDiv:   6,
	ast.OpMod:   6,
}

type Printer struct {
	buf bytes.Buffer
}

func New() *Printer { return &Printer{} }

// Print renders expr to source text, or "<nil>" if expr is nil (a Later
// value whose residual was never fully constructed — this should not
// happen for a well-formed program, but the printer degrades gracefully
// rather than panicking on a malformed tree).
func Print(expr ast.Expression) string {
	p := New()
	p.print(expr, 0)
	return p.buf.String()
}

func (p *Printer) print(expr ast.Expression, parentPrec int) {
	if expr == nil {
		p.buf.WriteString("<nil>")
		return
	}
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		fmt.Fprintf(&p.buf, "%g", n.Value)
	case *ast.StringLiteral:
		fmt.Fprintf(&p.buf, "%q", n.Value)
	case *ast.BoolLiteral:
		if n.Value {
			p.buf.WriteString("true")
		} else {
			p.buf.WriteString("false")
		}
	case *ast.NullLiteral:
		p.buf.WriteString("null")
	case *ast.Identifier:
		p.buf.WriteString(n.Name)
	case *ast.UnaryExpr:
		p.buf.WriteString(string(n.Op))
		p.print(n.Operand, precUnary)
	case *ast.BinaryExpr:
		p.printBinary(n, parentPrec)
	case *ast.CondExpr:
		p.buf.WriteString("if ")
		p.print(n.Cond, 0)
		p.buf.WriteString(" then ")
		p.print(n.Then, 0)
		p.buf.WriteString(" else ")
		p.print(n.Else, 0)
	case *ast.CallExpr:
		p.print(n.Callee, precCall)
		p.printArgs(n.Args)
	case *ast.MethodCallExpr:
		p.print(n.Receiver, precCall)
		p.buf.WriteString(".")
		p.buf.WriteString(n.Name)
		p.printArgs(n.Args)
	case *ast.FieldAccessExpr:
		p.print(n.Object, precCall)
		p.buf.WriteString(".")
		p.buf.WriteString(n.Name)
	case *ast.IndexExpr:
		p.print(n.Array, precCall)
		p.buf.WriteString("[")
		p.print(n.Index, 0)
		p.buf.WriteString("]")
	case *ast.ArrayExpr:
		p.printList("[", "]", len(n.Elements), func(i int) { p.print(n.Elements[i], 0) })
	case *ast.ObjectExpr:
		p.printList("{", "}", len(n.Fields), func(i int) {
			f := n.Fields[i]
			p.buf.WriteString(f.Name)
			p.buf.WriteString(": ")
			p.print(f.Value, 0)
		})
	default:
		fmt.Fprintf(&p.buf, "<unprintable %T>", expr)
	}
}

const (
	precUnary = 100
	precCall  = 100
)

func (p *Printer) printBinary(n *ast.BinaryExpr, parentPrec int) {
	prec, ok := operatorPrecedence[n.Op]
	if !ok {
		prec = 10
	}
	needParens := prec < parentPrec
	if needParens {
		p.buf.WriteString("(")
	}
	p.print(n.Left, prec)
	p.buf.WriteString(" ")
	p.buf.WriteString(string(n.Op))
	p.buf.WriteString(" ")
	p.print(n.Right, prec+1)
	if needParens {
		p.buf.WriteString(")")
	}
}

func (p *Printer) printArgs(args []ast.Expression) {
	p.printList("(", ")", len(args), func(i int) { p.print(args[i], 0) })
}

func (p *Printer) printList(open, close string, n int, printOne func(i int)) {
	p.buf.WriteString(open)
	for i := 0; i < n; i++ {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		printOne(i)
	}
	p.buf.WriteString(close)
}
