package schema

// FieldInfo describes what a field returns: the named return type and
// whether the declared type is list-valued.
type FieldInfo struct {
	TypeName string
	IsList   bool
}

// FieldIndex maps "Type.field" coordinates to field metadata. It is an
// immutable value: built once from a Schema, then shared read-only by
// every in-flight analysis until the next schema load replaces it.
type FieldIndex struct {
	fields map[string]FieldInfo
}

// BuildIndex flattens the schema's object and interface fields into a
// coordinate lookup table.
func BuildIndex(s *Schema) *FieldIndex {
	idx := &FieldIndex{fields: make(map[string]FieldInfo)}
	for _, t := range s.Types {
		if t.Kind != TypeKindObject && t.Kind != TypeKindInterface {
			continue
		}
		for _, f := range t.Fields {
			idx.fields[t.Name+"."+f.Name] = FieldInfo{
				TypeName: f.Type.GetNamedType(),
				IsList:   f.Type.IsList(),
			}
		}
	}
	return idx
}

// Lookup returns the metadata for typeName.fieldName.
func (idx *FieldIndex) Lookup(typeName, fieldName string) (FieldInfo, bool) {
	info, ok := idx.fields[typeName+"."+fieldName]
	return info, ok
}

// Len reports the number of indexed fields.
func (idx *FieldIndex) Len() int { return len(idx.fields) }
