package modules

import (
	"path/filepath"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/stage"
	"github.com/refinex-lang/refinex/internal/values"
)

// resolveProto parses a .proto file and exposes every top-level message
// type as a Later export whose constraint is the structural hasField
// conjunction derived straight from the message descriptor's own fields —
// the module resolver handing back "a Constraint and a residual-expression
// template" the way spec.md §6 describes.
func (r *Resolver) resolveProto(file string) (*stage.Module, *values.EvalError) {
	parser := protoparse.Parser{ImportPaths: []string{r.ProtoRoot, filepath.Dir(file)}}
	fds, err := parser.ParseFiles(filepath.Base(file))
	if err != nil {
		return nil, values.NewError(values.Unimplemented, ast.Pos{}, "parsing proto file %q: %v", file, err)
	}

	exports := map[string]*values.SValue{}
	for _, fd := range fds {
		for _, msg := range fd.GetMessageTypes() {
			// An imported name's residual is an identifier reference to the
			// name it was imported as (§6: "binds each name to a Later with
			// that constraint and a residual referring to the imported
			// symbol"), not a nil Expression.
			residual := &ast.Identifier{Name: msg.GetName()}
			exports[msg.GetName()] = values.Later(residual, messageConstraint(msg), nil)
		}
	}
	return &stage.Module{Exports: exports}, nil
}

// messageConstraint derives the strongest structural constraint the
// descriptor can justify: isObject, plus one hasField per declared field,
// each narrowed by the scalar/message kind the wire type implies.
func messageConstraint(msg *desc.MessageDescriptor) constraint.Constraint {
	children := []constraint.Constraint{constraint.Classify{Tag: constraint.IsObject}}
	for _, f := range msg.GetFields() {
		children = append(children, constraint.HasField{Name: f.GetName(), Field: fieldConstraint(f)})
	}
	return constraint.Simplify(constraint.And{Children: children})
}

func fieldConstraint(f *desc.FieldDescriptor) constraint.Constraint {
	if f.IsRepeated() {
		return constraint.Simplify(constraint.And{Children: []constraint.Constraint{
			constraint.Classify{Tag: constraint.IsArray},
			constraint.Elements{Elem: scalarConstraint(f)},
		}})
	}
	return scalarConstraint(f)
}

func scalarConstraint(f *desc.FieldDescriptor) constraint.Constraint {
	switch f.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_STRING, descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return constraint.Classify{Tag: constraint.IsString}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return constraint.Classify{Tag: constraint.IsBool}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return constraint.Classify{Tag: constraint.IsObject}
	default:
		return constraint.Classify{Tag: constraint.IsNumber}
	}
}
