package container

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssargent/avrolog/pkg/codec"
)

const defaultBufferSize = 64 * 1024

// Writer produces a complete container file in one pass: header first,
// then every batch handed to WriteRecords framed into blocks per the
// configured granularity. Blocks are written strictly in input order and
// never rewritten. A Writer is not safe for concurrent use.
type Writer struct {
	file   *os.File
	w      *bufio.Writer
	codec  *codec.RecordCodec
	config WriterConfig
	offset int64
}

// NewWriter creates the container file, truncating any previous content,
// and writes the header eagerly so that even a file with no blocks is a
// valid, appendable container.
func NewWriter(config WriterConfig) (*Writer, error) {
	if config.Schema == nil {
		return nil, fmt.Errorf("writer config: schema is required")
	}
	if config.Codec == "" {
		config.Codec = CodecNull
	}
	if config.Codec != CodecNull {
		return nil, ErrUnknownCodec
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaultBufferSize
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, err
		}
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		file:   file,
		w:      bufio.NewWriterSize(file, config.BufferSize),
		codec:  codec.NewRecordCodec(config.Schema),
		config: config,
	}

	if err := w.writeHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}

	return w, nil
}

func (w *Writer) writeHeader() error {
	schemaJSON, err := w.config.Schema.JSON()
	if err != nil {
		return fmt.Errorf("failed to render schema: %w", err)
	}
	meta := map[string][]byte{
		MetaSchemaKey: schemaJSON,
		MetaCodecKey:  []byte(w.config.Codec),
	}
	header := appendHeader(nil, meta, w.config.Marker)
	n, err := w.w.Write(header)
	w.offset += int64(n)
	return err
}

// WriteRecords encodes the batch, partitions it per the granularity
// policy, and writes each partition as one block. Records land in the file
// in input order regardless of how the blocks are cut.
func (w *Writer) WriteRecords(records []codec.Record) error {
	encoded := make([][]byte, len(records))
	for i, rec := range records {
		data, err := w.codec.Encode(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		encoded[i] = data
	}
	for _, batch := range partition(encoded, w.config.Granularity) {
		n, err := w.w.Write(FrameBlock(batch, w.config.Marker))
		w.offset += int64(n)
		if err != nil {
			return err
		}
	}
	return nil
}

// Marker returns the sync marker written in this file's header. Callers
// keep it (or register it in a catalog) to append later.
func (w *Writer) Marker() SyncMarker {
	return w.config.Marker
}

// Size returns the number of bytes written so far, including buffered
// bytes not yet flushed.
func (w *Writer) Size() int64 {
	return w.offset
}

// Path returns the container file path.
func (w *Writer) Path() string {
	return w.config.Path
}

// Sync flushes buffered writes and fsyncs the file.
func (w *Writer) Sync() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close flushes, syncs and releases the file handle. The handle is closed
// on every path, including a failed flush.
func (w *Writer) Close() error {
	if err := w.Sync(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// WriteAll writes a complete container in one call: header plus the given
// records framed per the config's granularity.
func WriteAll(config WriterConfig, records []codec.Record) error {
	w, err := NewWriter(config)
	if err != nil {
		return err
	}
	if err := w.WriteRecords(records); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
