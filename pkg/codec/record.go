package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Schema mismatch errors. All three indicate a record that does not agree
// with the schema it is being encoded or decoded against.
var (
	ErrUnknownField = errors.New("unknown field")
	ErrMissingField = errors.New("missing field")
	ErrTypeMismatch = errors.New("type mismatch")
)

// IsSchemaMismatch reports whether err is any of the schema mismatch
// errors.
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrTypeMismatch)
}

// Record maps field names to values. Values are string for string fields,
// int64 for int fields, and nil for the null branch of a nullable field.
// Encode additionally accepts int and int32 for convenience; Decode always
// produces int64.
type Record map[string]any

// ByteStream is the reader a record or header decoder consumes: byte-level
// access for varints plus bulk reads for payloads. Both bufio.Reader and
// bytes.Reader satisfy it.
type ByteStream interface {
	io.Reader
	io.ByteReader
}

// RecordCodec encodes and decodes records against a fixed schema. Fields
// are written in schema declaration order regardless of map iteration
// order. A RecordCodec is stateless and safe for concurrent use.
type RecordCodec struct {
	schema *Schema
}

// NewRecordCodec creates a codec bound to the given schema.
func NewRecordCodec(schema *Schema) *RecordCodec {
	return &RecordCodec{schema: schema}
}

// Schema returns the schema this codec encodes against.
func (c *RecordCodec) Schema() *Schema { return c.schema }

// Encode serializes one record: for each schema field in declaration
// order, a nullable field writes its union branch index first, then the
// branch payload. Strings are a zigzag-varint byte length followed by raw
// UTF-8 bytes; integers are a bare zigzag-varint.
func (c *RecordCodec) Encode(rec Record) ([]byte, error) {
	return c.Append(nil, rec)
}

// Append is Encode writing into an existing buffer.
func (c *RecordCodec) Append(buf []byte, rec Record) ([]byte, error) {
	for name := range rec {
		if _, ok := c.schema.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	var err error
	for _, f := range c.schema.Fields() {
		v, ok := rec[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, f.Name)
		}
		buf, err = appendValue(buf, f, v)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func appendValue(buf []byte, f Field, v any) ([]byte, error) {
	if v == nil {
		if !f.Type.Nullable {
			return nil, fmt.Errorf("%w: field %q is not nullable", ErrTypeMismatch, f.Name)
		}
		return AppendLong(buf, f.Type.nullBranch()), nil
	}
	if f.Type.Nullable {
		buf = AppendLong(buf, f.Type.valueBranch())
	}
	switch f.Type.Primitive {
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q wants string, got %T", ErrTypeMismatch, f.Name, v)
		}
		buf = AppendLong(buf, int64(len(s)))
		return append(buf, s...), nil
	case Int:
		n, ok := asInt64(v)
		if !ok {
			return nil, fmt.Errorf("%w: field %q wants int, got %T", ErrTypeMismatch, f.Name, v)
		}
		return AppendLong(buf, n), nil
	default:
		return nil, fmt.Errorf("%w: field %q has unsupported type %v", ErrTypeMismatch, f.Name, f.Type.Primitive)
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

// Decode deserializes one record from the front of data and returns it
// along with the number of bytes consumed.
func (c *RecordCodec) Decode(data []byte) (Record, int, error) {
	r := bytes.NewReader(data)
	rec, err := c.ReadRecord(r)
	return rec, len(data) - r.Len(), err
}

// ReadRecord deserializes one record from r. io.EOF before the first byte
// of the record means the input ended cleanly at a record boundary; any
// later EOF is io.ErrUnexpectedEOF.
func (c *RecordCodec) ReadRecord(r ByteStream) (Record, error) {
	rec := make(Record, c.schema.Len())
	for i, f := range c.schema.Fields() {
		v, err := readValue(r, f, i == 0)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	return rec, nil
}

func readValue(r ByteStream, f Field, first bool) (any, error) {
	if f.Type.Nullable {
		branch, err := ReadLong(r)
		if err != nil {
			return nil, midRecordErr(err, first)
		}
		switch branch {
		case f.Type.nullBranch():
			return nil, nil
		case f.Type.valueBranch():
		default:
			return nil, fmt.Errorf("field %q: union branch %d out of range", f.Name, branch)
		}
	}
	switch f.Type.Primitive {
	case String:
		n, err := ReadLong(r)
		if err != nil {
			return nil, midRecordErr(err, first && !f.Type.Nullable)
		}
		if n < 0 {
			return nil, fmt.Errorf("field %q: negative string length %d", f.Name, n)
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, midRecordErr(err, false)
		}
		return string(b), nil
	case Int:
		n, err := ReadLong(r)
		if err != nil {
			return nil, midRecordErr(err, first && !f.Type.Nullable)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("field %q: unsupported type %v", f.Name, f.Type.Primitive)
	}
}

// midRecordErr upgrades a clean EOF to io.ErrUnexpectedEOF everywhere but
// the very first byte of a record, where EOF marks an ordinary boundary.
func midRecordErr(err error, atBoundary bool) error {
	if errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !atBoundary {
		return io.ErrUnexpectedEOF
	}
	return err
}
