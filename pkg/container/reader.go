package container

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ssargent/avrolog/pkg/codec"
)

// Reader provides sequential access to the records of a container file.
// It parses the header once, then steps block by block on declared counts
// and sizes. Markers are verified as an integrity signal: in the default
// lenient mode a mismatch is only tallied, with StrictMarkers it fails the
// read. End-of-file exactly at a block boundary is the only clean
// termination.
type Reader struct {
	file    *os.File
	r       *bufio.Reader
	codec   *codec.RecordCodec
	config  ReaderConfig
	meta    map[string][]byte
	marker  SyncMarker
	desyncs int

	// current block being drained by Next
	block     *bytes.Reader
	remaining int64
}

// NewReader opens a container file and parses its header.
func NewReader(config ReaderConfig) (*Reader, error) {
	if config.Schema == nil {
		return nil, fmt.Errorf("reader config: schema is required")
	}

	file, err := os.Open(config.Path)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:   file,
		r:      bufio.NewReader(file),
		codec:  codec.NewRecordCodec(config.Schema),
		config: config,
	}

	if err := r.readHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}

	return r, nil
}

func (r *Reader) readHeader() error {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r.r, magic); err != nil {
		return headerEOF(err)
	}
	if string(magic) != Magic {
		return ErrBadMagic
	}

	meta, err := decodeMetadata(r.r)
	if err != nil {
		return err
	}
	r.meta = meta

	if name, ok := meta[MetaCodecKey]; ok && string(name) != CodecNull {
		return ErrUnknownCodec
	}

	var marker [SyncLength]byte
	if _, err := io.ReadFull(r.r, marker[:]); err != nil {
		return headerEOF(err)
	}
	r.marker = marker
	return nil
}

// Metadata returns the header metadata map.
func (r *Reader) Metadata() map[string][]byte {
	return r.meta
}

// Codec returns the compression codec named in the header.
func (r *Reader) Codec() string {
	if name, ok := r.meta[MetaCodecKey]; ok {
		return string(name)
	}
	return CodecNull
}

// Marker returns the sync marker from the header.
func (r *Reader) Marker() SyncMarker {
	return r.marker
}

// Desyncs returns how many blocks so far carried a marker that differs
// from the header's. Always zero in strict mode, where the first mismatch
// fails the read instead.
func (r *Reader) Desyncs() int {
	return r.desyncs
}

// ReadBlock reads the next raw block. It returns io.EOF when the input
// ends cleanly at a block boundary, ErrUnexpectedEOF when it ends inside
// the count/size header, and ErrTruncatedBlock when fewer than the
// declared bytes remain.
func (r *Reader) ReadBlock() (*Block, error) {
	count, err := codec.ReadLong(r.r)
	if err != nil {
		if errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrUnexpectedEOF
		}
		return nil, err
	}

	size, err := codec.ReadLong(r.r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrUnexpectedEOF
		}
		return nil, err
	}

	if count < 0 || size < 0 {
		return nil, fmt.Errorf("%w: negative block count %d or size %d", ErrCorruption, count, size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r.r, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedBlock
		}
		return nil, err
	}

	var marker [SyncLength]byte
	if _, err := io.ReadFull(r.r, marker[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedBlock
		}
		return nil, err
	}

	if marker != r.marker {
		if r.config.StrictMarkers {
			return nil, ErrDesync
		}
		r.desyncs++
	}

	return &Block{Count: count, Data: data, Marker: marker}, nil
}

// Next returns the next record, advancing across block boundaries as
// needed. Empty blocks are skipped; they contribute zero records. io.EOF
// marks the clean end of the container.
func (r *Reader) Next() (codec.Record, error) {
	for r.remaining == 0 {
		if r.block != nil && r.block.Len() > 0 {
			return nil, fmt.Errorf("%w: %d bytes left after declared record count", ErrCorruption, r.block.Len())
		}
		blk, err := r.ReadBlock()
		if err != nil {
			return nil, err
		}
		r.block = bytes.NewReader(blk.Data)
		r.remaining = blk.Count
	}

	rec, err := r.codec.ReadRecord(r.block)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: block data ends before declared record count", ErrCorruption)
		}
		return nil, err
	}
	r.remaining--
	return rec, nil
}

// ReadAll drains the container and returns every record in file order.
func (r *Reader) ReadAll() ([]codec.Record, error) {
	var records []codec.Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// Iterator returns a streaming iterator over the remaining records.
func (r *Reader) Iterator() RecordIterator {
	return &recordIterator{reader: r}
}

// Close releases the file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// RecordIterator provides streaming access to records. After Next returns
// false, Err distinguishes clean end-of-file from a failure.
type RecordIterator interface {
	Next() bool
	Record() codec.Record
	Err() error
	Close() error
}

type recordIterator struct {
	reader *Reader
	record codec.Record
	err    error
}

func (it *recordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.record, it.err = it.reader.Next()
	return it.err == nil
}

func (it *recordIterator) Record() codec.Record {
	return it.record
}

func (it *recordIterator) Err() error {
	if errors.Is(it.err, io.EOF) {
		return nil
	}
	return it.err
}

func (it *recordIterator) Close() error {
	// The underlying reader is owned by the caller.
	return nil
}
