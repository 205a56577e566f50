package codec

import (
	"encoding/json"
	"fmt"
)

// PrimitiveType enumerates the primitive field types the codec supports.
type PrimitiveType int

const (
	String PrimitiveType = iota
	Int
)

func (p PrimitiveType) String() string {
	switch p {
	case String:
		return "string"
	case Int:
		return "int"
	default:
		return fmt.Sprintf("PrimitiveType(%d)", int(p))
	}
}

// FieldType describes a field's wire type. A plain primitive is encoded as
// its payload alone. A nullable field is a two-branch union of the
// primitive and null; the branch index written before the payload follows
// the declared union order, so NullFirst changes the bytes on the wire.
type FieldType struct {
	Primitive PrimitiveType
	Nullable  bool
	NullFirst bool
}

// Plain returns the type for a bare primitive field.
func Plain(p PrimitiveType) FieldType {
	return FieldType{Primitive: p}
}

// Optional returns the type for a [primitive, null] union field.
func Optional(p PrimitiveType) FieldType {
	return FieldType{Primitive: p, Nullable: true}
}

// valueBranch is the union index of the non-null branch.
func (t FieldType) valueBranch() int64 {
	if t.NullFirst {
		return 1
	}
	return 0
}

// nullBranch is the union index of the null branch.
func (t FieldType) nullBranch() int64 {
	if t.NullFirst {
		return 0
	}
	return 1
}

// Field is a single named column in a schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema is an ordered sequence of field descriptors. Field declaration
// order is part of the wire contract: records encode their fields in this
// order, so reordering a schema silently changes the encoding. Schemas are
// immutable once constructed and safe to share.
type Schema struct {
	name      string
	namespace string
	fields    []Field
	byName    map[string]int
}

// NewSchema builds a record schema from an ordered field list.
func NewSchema(name, namespace string, fields ...Field) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is required")
	}
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field name: %s", f.Name)
		}
		byName[f.Name] = i
	}
	return &Schema{
		name:      name,
		namespace: namespace,
		fields:    append([]Field(nil), fields...),
		byName:    byName,
	}, nil
}

// MustSchema is NewSchema for fixed schemas known to be valid.
func MustSchema(name, namespace string, fields ...Field) *Schema {
	s, err := NewSchema(name, namespace, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the record name.
func (s *Schema) Name() string { return s.name }

// Namespace returns the record namespace, possibly empty.
func (s *Schema) Namespace() string { return s.namespace }

// Fields returns the fields in declaration order. Callers must not modify
// the returned slice.
func (s *Schema) Fields() []Field { return s.fields }

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Lookup returns the field with the given name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// JSON renders the schema as an Avro record schema document, suitable for
// the avro.schema entry of a container header.
func (s *Schema) JSON() ([]byte, error) {
	type fieldDoc struct {
		Name string `json:"name"`
		Type any    `json:"type"`
	}
	fields := make([]fieldDoc, len(s.fields))
	for i, f := range s.fields {
		name := f.Type.Primitive.String()
		if f.Type.Nullable {
			union := []string{name, "null"}
			if f.Type.NullFirst {
				union = []string{"null", name}
			}
			fields[i] = fieldDoc{Name: f.Name, Type: union}
			continue
		}
		fields[i] = fieldDoc{Name: f.Name, Type: name}
	}
	doc := struct {
		Namespace string     `json:"namespace,omitempty"`
		Type      string     `json:"type"`
		Name      string     `json:"name"`
		Fields    []fieldDoc `json:"fields"`
	}{
		Namespace: s.namespace,
		Type:      "record",
		Name:      s.name,
		Fields:    fields,
	}
	return json.Marshal(doc)
}
