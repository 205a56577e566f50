package container

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/ssargent/avrolog/pkg/codec"
)

// Magic identifies an Avro object container file.
const Magic = "Obj\x01"

// SyncLength is the size of a container's synchronization marker.
const SyncLength = 16

// CodecNull is the only compression codec avrolog implements. The header
// carries a codec slot, so readers reject anything else rather than
// misinterpret compressed block data.
const CodecNull = "null"

// Header metadata keys.
const (
	MetaSchemaKey = "avro.schema"
	MetaCodecKey  = "avro.codec"
)

// SyncMarker is the 16-byte synchronization marker written in a
// container's header and repeated after every block. It is fixed for the
// lifetime of a file: every block appended later must carry the marker the
// header established, or readers that check markers will report desync.
type SyncMarker [SyncLength]byte

// NewSyncMarker generates a random marker.
func NewSyncMarker() (SyncMarker, error) {
	var m SyncMarker
	if _, err := rand.Read(m[:]); err != nil {
		return SyncMarker{}, fmt.Errorf("failed to generate sync marker: %w", err)
	}
	return m, nil
}

// MarkerFromBytes builds a marker from raw bytes.
func MarkerFromBytes(b []byte) (SyncMarker, error) {
	var m SyncMarker
	if len(b) != SyncLength {
		return SyncMarker{}, fmt.Errorf("sync marker must be %d bytes, got %d", SyncLength, len(b))
	}
	copy(m[:], b)
	return m, nil
}

// MarkerFromHex builds a marker from its 32-character hex form.
func MarkerFromHex(s string) (SyncMarker, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return SyncMarker{}, fmt.Errorf("invalid sync marker hex: %w", err)
	}
	return MarkerFromBytes(b)
}

// Hex returns the marker's hex form.
func (m SyncMarker) Hex() string {
	return hex.EncodeToString(m[:])
}

// Granularity controls how a record batch is partitioned into blocks.
// SingleBlock puts the whole batch in one block, PerRecord gives every
// record its own block, and Batch(k) cuts batches of k records. The choice
// only moves block boundaries; record values and order are unaffected.
type Granularity int

const (
	SingleBlock Granularity = 0
	PerRecord   Granularity = 1
)

// Batch returns the granularity that frames k records per block.
func Batch(k int) Granularity {
	return Granularity(k)
}

// Block is one decoded container block: count records concatenated in
// data, followed on the wire by the file's sync marker.
type Block struct {
	Count  int64
	Data   []byte
	Marker SyncMarker
}

// WriterConfig holds configuration for a container writer.
type WriterConfig struct {
	Path        string        // Path of the container file to create
	Schema      *codec.Schema // Record schema, written into the header
	Marker      SyncMarker    // Sync marker for the file's lifetime
	Codec       string        // Compression codec name; empty means "null"
	Granularity Granularity   // Block partitioning policy
	BufferSize  int           // Write buffer size (0 = default)
}

// AppenderConfig holds configuration for a container appender. Marker must
// equal the marker in the existing file's header; the appender never reads
// the file, so this is the caller's contract to keep (see
// ErrMarkerPrecondition).
type AppenderConfig struct {
	Path        string
	Schema      *codec.Schema
	Marker      SyncMarker
	Granularity Granularity
	BufferSize  int
}

// ReaderConfig holds configuration for a container reader.
type ReaderConfig struct {
	Path   string
	Schema *codec.Schema
	// StrictMarkers makes a block whose trailing marker differs from the
	// header's an error. When false the reader advances on count and size
	// alone and only tallies mismatches (Desyncs).
	StrictMarkers bool
}

// Errors
var (
	ErrBadMagic       = &ContainerError{"not an avro object container file"}
	ErrUnknownCodec   = &ContainerError{"unsupported compression codec"}
	ErrTruncatedBlock = &ContainerError{"truncated block: declared size exceeds remaining bytes"}
	ErrUnexpectedEOF  = &ContainerError{"unexpected end of file"}
	ErrDesync         = &ContainerError{"sync marker mismatch"}
	ErrCorruption     = &ContainerError{"container corruption detected"}

	// ErrMarkerPrecondition names the appender's contract: the marker
	// handed to NewAppender must equal the one in the file's header. The
	// core never verifies it (that would cost a full header read); it is
	// returned by collaborators such as the catalog-backed API when they
	// can detect a violation before any bytes are appended.
	ErrMarkerPrecondition = &ContainerError{"append marker does not match container header marker"}
)

// ContainerError represents a container framing or format error.
type ContainerError struct {
	Message string
}

func (e *ContainerError) Error() string {
	return e.Message
}
