package stage

import (
	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/values"
)

// reify turns sv back into an Expression suitable for splicing into a
// residual program: a Later value already carries its own residual syntax,
// while a Now value has to be turned back into a literal so it can be
// embedded in the expression the evaluator is building up around it. The
// actual conversion lives in internal/values (values.Reify) so that
// internal/builtins, which this package's built-ins must not import back
// into, can reify its own arguments too.
func reify(sv *values.SValue) ast.Expression {
	return values.Reify(sv)
}
