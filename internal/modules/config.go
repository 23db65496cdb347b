package modules

import (
	"os"
	"path/filepath"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gopkg.in/yaml.v3"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/stage"
	"github.com/refinex-lang/refinex/internal/values"
)

// resolveConfig decodes a YAML file eagerly into Now values: unlike a
// proto message's shape, a config file's content is compile-time known in
// full, so there is nothing to residualize — every export is Now.
func (r *Resolver) resolveConfig(name string) (*stage.Module, *values.EvalError) {
	path := filepath.Join(r.ConfigRoot, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, values.NewError(values.Unimplemented, ast.Pos{}, "reading config %q: %v", path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, values.NewError(values.Unimplemented, ast.Pos{}, "parsing config %q: %v", path, err)
	}

	exports := map[string]*values.SValue{}
	for k, v := range raw {
		exports[k] = values.Now(yamlToValue(v))
	}

	// A "grpc_target" key adds a "reachable" export: true when
	// grpc.NewClient accepts the target, false otherwise. NewClient does
	// not connect, so this checks that the target parses, not that the
	// endpoint is live, and the import itself never fails on it.
	if target, ok := raw["grpc_target"].(string); ok {
		exports["reachable"] = values.Now(values.Bool(probeGRPC(target)))
	}

	return &stage.Module{Exports: exports}, nil
}

func probeGRPC(target string) bool {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return false
	}
	defer conn.Close()
	return true
}

func yamlToValue(v interface{}) values.Value {
	switch vv := v.(type) {
	case nil:
		return values.Null{}
	case bool:
		return values.Bool(vv)
	case int:
		return values.Number(float64(vv))
	case float64:
		return values.Number(vv)
	case string:
		return values.String(vv)
	case []interface{}:
		elems := make([]values.Value, len(vv))
		for i, e := range vv {
			elems[i] = yamlToValue(e)
		}
		return values.Array{Elements: elems}
	case map[string]interface{}:
		obj := values.NewObject()
		for k, val := range vv {
			obj = obj.With(k, yamlToValue(val))
		}
		return obj
	default:
		return values.Null{}
	}
}
