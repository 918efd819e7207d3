package schema

var builtinScalars = []string{"String", "Int", "Float", "Boolean", "ID"}

func addBuiltinTypes(s *Schema) {
	for _, name := range builtinScalars {
		s.Types[name] = &Type{Name: name, Kind: TypeKindScalar}
	}
	for _, t := range introspectionTypes() {
		s.Types[t.Name] = t
	}
}

// attachIntrospectionFields adds __schema, __type and __typename to the
// query root so introspection selections resolve through the same index
// as ordinary fields.
func attachIntrospectionFields(s *Schema) {
	q := s.GetQueryType()
	if q == nil {
		return
	}
	q.Fields = append(q.Fields,
		&Field{Name: "__schema", Type: NonNullType(NamedType("__Schema"))},
		&Field{Name: "__type", Type: NamedType("__Type")},
		&Field{Name: "__typename", Type: NonNullType(NamedType("String"))},
	)
}

func introspectionTypes() []*Type {
	str := NamedType("String")
	boolean := NamedType("Boolean")
	typ := NamedType("__Type")
	typeList := NonNullType(ListType(NonNullType(typ)))
	inputValues := NonNullType(ListType(NonNullType(NamedType("__InputValue"))))

	return []*Type{
		{Name: "__Schema", Kind: TypeKindObject, Fields: []*Field{
			{Name: "description", Type: str},
			{Name: "types", Type: typeList},
			{Name: "queryType", Type: NonNullType(typ)},
			{Name: "mutationType", Type: typ},
			{Name: "subscriptionType", Type: typ},
			{Name: "directives", Type: NonNullType(ListType(NonNullType(NamedType("__Directive"))))},
		}},
		{Name: "__Type", Kind: TypeKindObject, Fields: []*Field{
			{Name: "kind", Type: NonNullType(NamedType("__TypeKind"))},
			{Name: "name", Type: str},
			{Name: "description", Type: str},
			{Name: "specifiedByURL", Type: str},
			{Name: "fields", Type: ListType(NonNullType(NamedType("__Field")))},
			{Name: "interfaces", Type: ListType(NonNullType(typ))},
			{Name: "possibleTypes", Type: ListType(NonNullType(typ))},
			{Name: "enumValues", Type: ListType(NonNullType(NamedType("__EnumValue")))},
			{Name: "inputFields", Type: ListType(NonNullType(NamedType("__InputValue")))},
			{Name: "ofType", Type: typ},
			{Name: "isOneOf", Type: boolean},
		}},
		{Name: "__Field", Kind: TypeKindObject, Fields: []*Field{
			{Name: "name", Type: NonNullType(str)},
			{Name: "description", Type: str},
			{Name: "args", Type: inputValues},
			{Name: "type", Type: NonNullType(typ)},
			{Name: "isDeprecated", Type: NonNullType(boolean)},
			{Name: "deprecationReason", Type: str},
		}},
		{Name: "__InputValue", Kind: TypeKindObject, Fields: []*Field{
			{Name: "name", Type: NonNullType(str)},
			{Name: "description", Type: str},
			{Name: "type", Type: NonNullType(typ)},
			{Name: "defaultValue", Type: str},
			{Name: "isDeprecated", Type: NonNullType(boolean)},
			{Name: "deprecationReason", Type: str},
		}},
		{Name: "__EnumValue", Kind: TypeKindObject, Fields: []*Field{
			{Name: "name", Type: NonNullType(str)},
			{Name: "description", Type: str},
			{Name: "isDeprecated", Type: NonNullType(boolean)},
			{Name: "deprecationReason", Type: str},
		}},
		{Name: "__Directive", Kind: TypeKindObject, Fields: []*Field{
			{Name: "name", Type: NonNullType(str)},
			{Name: "description", Type: str},
			{Name: "locations", Type: NonNullType(ListType(NonNullType(NamedType("__DirectiveLocation"))))},
			{Name: "args", Type: inputValues},
			{Name: "isRepeatable", Type: NonNullType(boolean)},
		}},
		{Name: "__TypeKind", Kind: TypeKindEnum},
		{Name: "__DirectiveLocation", Kind: TypeKindEnum},
	}
}
