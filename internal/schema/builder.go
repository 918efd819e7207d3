package schema

import (
	"fmt"

	language "github.com/apollosolutions/graphguard/internal/language"
)

// BuildFromSDL converts a parsed schema document into a Schema.
// Builtin scalars and the introspection types are always present so
// that introspection operations resolve like any other selection.
func BuildFromSDL(doc *language.SchemaDocument) (*Schema, error) {
	s := &Schema{
		QueryType:        "Query",
		MutationType:     "Mutation",
		SubscriptionType: "Subscription",
		Types:            map[string]*Type{},
	}
	addBuiltinTypes(s)

	for _, def := range append(doc.Definitions, doc.Extensions...) {
		switch def.Kind {
		case language.Object, language.Interface:
			t := s.Types[def.Name]
			if t == nil {
				t = &Type{Name: def.Name, Kind: kindOf(def.Kind)}
				s.Types[def.Name] = t
			}
			for _, fd := range def.Fields {
				t.Fields = append(t.Fields, &Field{
					Name: fd.Name,
					Type: convertTypeRef(fd.Type),
				})
			}
		case language.Union, language.Scalar, language.Enum, language.InputObject:
			if _, ok := s.Types[def.Name]; !ok {
				s.Types[def.Name] = &Type{Name: def.Name, Kind: kindOf(def.Kind)}
			}
		}
	}

	for _, sd := range append(doc.Schema, doc.SchemaExtension...) {
		for _, op := range sd.OperationTypes {
			switch op.Operation {
			case language.Query:
				s.QueryType = op.Type
			case language.Mutation:
				s.MutationType = op.Type
			case language.Subscription:
				s.SubscriptionType = op.Type
			}
		}
	}

	if s.GetQueryType() == nil {
		return nil, fmt.Errorf("schema has no query root type %q", s.QueryType)
	}
	attachIntrospectionFields(s)
	return s, nil
}

func kindOf(k language.DefinitionKind) TypeKind {
	switch k {
	case language.Object:
		return TypeKindObject
	case language.Interface:
		return TypeKindInterface
	case language.Union:
		return TypeKindUnion
	case language.Scalar:
		return TypeKindScalar
	case language.Enum:
		return TypeKindEnum
	case language.InputObject:
		return TypeKindInputObject
	}
	return TypeKindScalar
}

func convertTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.NamedType != "" {
		ref = NamedType(t.NamedType)
	} else {
		ref = ListType(convertTypeRef(t.Elem))
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}
