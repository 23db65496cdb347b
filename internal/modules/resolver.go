// Package modules implements the module resolver collaborator (spec.md
// §6): given a module path, it returns a set of named exports the
// evaluator can bind. It is a generalization of the teacher's
// VirtualPackage registry (internal/modules/loader.go, virtual_packages_*)
// from a fixed set of statically-typed stdlib packages to two dynamically
// resolved schemes: "proto:" (message shapes from a .proto descriptor) and
// "config:" (eagerly decoded YAML data).
package modules

import (
	"strings"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/stage"
	"github.com/refinex-lang/refinex/internal/values"
)

// Resolver implements stage.Resolver for the proto: and config: schemes.
type Resolver struct {
	// ProtoRoot is the import-path root protoparse searches for .proto
	// files named by a "proto:" module path.
	ProtoRoot string
	// ConfigRoot is the directory "config:" module paths are resolved
	// relative to.
	ConfigRoot string
}

func New(protoRoot, configRoot string) *Resolver {
	return &Resolver{ProtoRoot: protoRoot, ConfigRoot: configRoot}
}

func (r *Resolver) Resolve(modulePath string) (*stage.Module, *values.EvalError) {
	switch {
	case strings.HasPrefix(modulePath, "proto:"):
		return r.resolveProto(strings.TrimPrefix(modulePath, "proto:"))
	case strings.HasPrefix(modulePath, "config:"):
		return r.resolveConfig(strings.TrimPrefix(modulePath, "config:"))
	default:
		return nil, values.NewError(values.Unimplemented, ast.Pos{}, "unrecognized module scheme in %q (expected proto: or config:)", modulePath)
	}
}
