// Package codec implements the binary encoding for avrolog records.
//
// The encoding follows the Avro binary specification for the subset of
// types avrolog uses: strings, 64-bit integers, and two-branch nullable
// unions. Every integer on the wire is a zigzag-varint "long".
//
// # Integer Encoding
//
// Signed integers are first zigzag encoded so small magnitudes stay small:
//
//	0 -> 0, -1 -> 1, 1 -> 2, -2 -> 3, ...
//
// The zigzag result is then written as a base-128 varint: 7 payload bits
// per byte, low-order group first, high bit set on every byte except the
// last. Encodings are minimal length; 0 is the single byte 0x00, and a
// 64-bit value never needs more than 10 bytes.
//
// # Record Encoding
//
// A record is the concatenation of its field encodings in schema
// declaration order, with no framing of its own:
//
//   - string field:   long(byteLength) + raw UTF-8 bytes
//   - int field:      long(value)
//   - nullable field: long(unionBranchIndex) + branch payload
//
// The union branch index is positional over the declared union order. A
// [T, null] field writes 0 for a value and 1 for null; a [null, T] field
// inverts that. Nothing follows the index for the null branch.
//
// Declaration order is the compatibility contract: two schemas with the
// same fields in a different order, or the same union with its branches
// swapped, produce different bytes for the same record.
//
// # Usage
//
//	schema := codec.MustSchema("User", "example.avro",
//	    codec.Field{Name: "name", Type: codec.Plain(codec.String)},
//	    codec.Field{Name: "favorite_number", Type: codec.Optional(codec.Int)},
//	)
//	rc := codec.NewRecordCodec(schema)
//
//	data, err := rc.Encode(codec.Record{"name": "Chris", "favorite_number": int64(7)})
//	if err != nil {
//	    return err
//	}
//	rec, _, err := rc.Decode(data)
//
// # Error Handling
//
// Encoding fails with ErrUnknownField, ErrMissingField or ErrTypeMismatch
// when a record disagrees with its schema; IsSchemaMismatch matches all
// three. Decoding fails with ErrMalformedVarint for varints that never
// terminate and io.ErrUnexpectedEOF for input that ends mid-record.
//
// # Thread Safety
//
// Schema and RecordCodec are immutable after construction and safe to
// share between goroutines.
package codec
