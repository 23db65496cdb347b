package stage

import (
	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/refine"
	"github.com/refinex-lang/refinex/internal/values"
)

// Module is the result of resolving a module path: a set of staged values
// a resolver hands back for an import expression to bind by name.
type Module struct {
	Exports map[string]*values.SValue
}

// Resolver loads a module by its path, e.g. "proto:profile.proto" or
// "config:service.yaml". internal/modules supplies the concrete schemes;
// this package only depends on the interface so the core evaluator never
// has to import protoreflect, grpc, or yaml.v3 directly.
type Resolver interface {
	Resolve(modulePath string) (*Module, *values.EvalError)
}

func (e *Evaluator) evalImport(n *ast.ImportExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	if e.Resolver == nil {
		return nil, values.NewError(values.Unimplemented, n.GetPos(), "import %q: no module resolver configured", n.ModulePath)
	}
	mod, err := e.Resolver.Resolve(n.ModulePath)
	if err != nil {
		return nil, err
	}

	bodyEnv := env
	bodyCtx := ctx
	for _, name := range n.Names {
		sv, ok := mod.Exports[name]
		if !ok {
			return nil, values.NewError(values.UnboundVariable, n.GetPos(), "module %q has no export %q", n.ModulePath, name)
		}
		bound := withProvenance(sv, &values.Provenance{Kind: values.ProvVariable, Name: name})
		bodyEnv = bodyEnv.Bind(name, bound)
		bodyCtx = refine.ExtendTerm(bodyCtx, bound, bound.Constraint)
	}
	return e.Eval(n.Body, bodyEnv, bodyCtx)
}
