package container

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ssargent/avrolog/pkg/codec"
)

// Appender extends an already-finalized container by writing new framed
// blocks at its end. It opens the file append-only and never reads or
// validates existing content, so extending a large container costs only
// the new data.
//
// The configured marker must equal the marker in the file's header; the
// appender cannot check this without reading the file, so it is a caller
// precondition (ErrMarkerPrecondition). Blocks appended with the wrong
// marker still frame correctly, since readers advance on count and size,
// but any reader that checks markers will flag them as desynced.
//
// An Appender assumes single-writer discipline. Two appenders on the same
// file would interleave block bytes and corrupt the framing.
type Appender struct {
	file   *os.File
	w      *bufio.Writer
	codec  *codec.RecordCodec
	config AppenderConfig
	added  int64
}

// NewAppender opens an existing container file for appending.
func NewAppender(config AppenderConfig) (*Appender, error) {
	if config.Schema == nil {
		return nil, fmt.Errorf("appender config: schema is required")
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaultBufferSize
	}

	file, err := os.OpenFile(config.Path, os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	return &Appender{
		file:   file,
		w:      bufio.NewWriterSize(file, config.BufferSize),
		codec:  codec.NewRecordCodec(config.Schema),
		config: config,
	}, nil
}

// AppendRecords encodes the batch and appends it as one or more blocks per
// the granularity policy, each trailed by the configured marker.
func (a *Appender) AppendRecords(records []codec.Record) error {
	encoded := make([][]byte, len(records))
	for i, rec := range records {
		data, err := a.codec.Encode(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		encoded[i] = data
	}
	for _, batch := range partition(encoded, a.config.Granularity) {
		n, err := a.w.Write(FrameBlock(batch, a.config.Marker))
		a.added += int64(n)
		if err != nil {
			return err
		}
	}
	return nil
}

// BytesAppended returns the number of block bytes written through this
// appender, including buffered bytes not yet flushed.
func (a *Appender) BytesAppended() int64 {
	return a.added
}

// Path returns the container file path.
func (a *Appender) Path() string {
	return a.config.Path
}

// Sync flushes buffered writes and fsyncs the file.
func (a *Appender) Sync() error {
	if err := a.w.Flush(); err != nil {
		return err
	}
	return a.file.Sync()
}

// Close flushes, syncs and releases the file handle.
func (a *Appender) Close() error {
	if err := a.Sync(); err != nil {
		_ = a.file.Close()
		return err
	}
	return a.file.Close()
}

// AppendAll appends records to an existing container in one call.
func AppendAll(config AppenderConfig, records []codec.Record) error {
	a, err := NewAppender(config)
	if err != nil {
		return err
	}
	if err := a.AppendRecords(records); err != nil {
		_ = a.Close()
		return err
	}
	return a.Close()
}
