package container

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ssargent/avrolog/pkg/codec"
)

// encodeMetadata renders the header metadata using the Avro map encoding:
// a long entry count, then length-prefixed key and value bytes per entry,
// terminated by a zero-count block. Keys are written in sorted order so
// the header bytes are deterministic.
func encodeMetadata(meta map[string][]byte) []byte {
	var buf []byte
	if len(meta) > 0 {
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf = codec.AppendLong(buf, int64(len(meta)))
		for _, k := range keys {
			buf = codec.AppendLong(buf, int64(len(k)))
			buf = append(buf, k...)
			buf = codec.AppendLong(buf, int64(len(meta[k])))
			buf = append(buf, meta[k]...)
		}
	}
	return codec.AppendLong(buf, 0)
}

// appendHeader renders a complete container header: magic, metadata map,
// sync marker.
func appendHeader(buf []byte, meta map[string][]byte, marker SyncMarker) []byte {
	buf = append(buf, Magic...)
	buf = append(buf, encodeMetadata(meta)...)
	return append(buf, marker[:]...)
}

// decodeMetadata reads an Avro-encoded metadata map from r. A negative
// entry count is the count-plus-size map variant; the byte size is read
// and discarded since the entries are decoded one by one anyway.
func decodeMetadata(r codec.ByteStream) (map[string][]byte, error) {
	meta := make(map[string][]byte)
	for {
		count, err := codec.ReadLong(r)
		if err != nil {
			return nil, headerEOF(err)
		}
		if count == 0 {
			return meta, nil
		}
		if count < 0 {
			count = -count
			if _, err := codec.ReadLong(r); err != nil {
				return nil, headerEOF(err)
			}
		}
		for i := int64(0); i < count; i++ {
			key, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			val, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			meta[string(key)] = val
		}
	}
}

func readBytes(r codec.ByteStream) ([]byte, error) {
	n, err := codec.ReadLong(r)
	if err != nil {
		return nil, headerEOF(err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d in metadata", ErrCorruption, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, headerEOF(err)
	}
	return b, nil
}

// headerEOF maps any end-of-input inside the header to ErrUnexpectedEOF; a
// file cannot legally end mid-header.
func headerEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	return err
}
