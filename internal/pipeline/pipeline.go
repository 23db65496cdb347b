// Package pipeline wires the demo surface syntax collaborators
// (internal/lexer, internal/parser) to the staged evaluator
// (internal/stage) the way cmd/refinex runs a program end to end.
// Adapted from the teacher's Pipeline/Processor stage-chain (see
// internal/pipeline/pipeline.go): a small ordered sequence of stages that
// each populate a shared Context, continuing even after errors so later
// stages can still report what they can.
package pipeline

import (
	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/parser"
	"github.com/refinex-lang/refinex/internal/refine"
	"github.com/refinex-lang/refinex/internal/stage"
	"github.com/refinex-lang/refinex/internal/values"
)

// Context carries a program through Parse and Eval; each stage reads what
// the previous stage left and may add its own errors.
type Context struct {
	Source string
	Expr   ast.Expression
	Result *values.SValue

	ParseErrors []string
	EvalError   *values.EvalError
}

// Stage is one step of the pipeline; like the teacher's Processor, it
// takes a Context and returns one, so stages continue even after an
// earlier one records an error.
type Stage func(*Context) *Context

// Pipeline runs an ordered list of stages over one Context.
type Pipeline struct {
	stages []Stage
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Run(ctx *Context) *Context {
	for _, s := range p.stages {
		ctx = s(ctx)
	}
	return ctx
}

// ParseStage parses ctx.Source into ctx.Expr, recording any parse errors
// without aborting the pipeline (a later stage may still be useful, e.g.
// a --parse-only diagnostic run).
func ParseStage(ctx *Context) *Context {
	expr, errs := parser.ParseExpression(ctx.Source)
	ctx.Expr = expr
	ctx.ParseErrors = errs
	return ctx
}

// EvalStage runs the staged evaluator over ctx.Expr under an empty
// environment and context, the entry point for a standalone program.
func EvalStage(ev *stage.Evaluator) Stage {
	return func(ctx *Context) *Context {
		if ctx.Expr == nil || len(ctx.ParseErrors) > 0 {
			return ctx
		}
		result, err := ev.Eval(ctx.Expr, values.NewEnvironment(), refine.Empty())
		ctx.Result = result
		ctx.EvalError = err
		return ctx
	}
}

// Standard is the usual demo pipeline: parse then evaluate.
func Standard(ev *stage.Evaluator) *Pipeline {
	return New(ParseStage, EvalStage(ev))
}
