package container

import (
	"github.com/ssargent/avrolog/pkg/codec"
)

// FrameBlock wraps a batch of pre-encoded records into one container
// block: long(count), long(totalByteLength), the concatenated record
// bytes, then the 16-byte marker verbatim. An empty batch is legal and
// frames as [0x00, 0x00, marker], which is how a header-only file gets a
// syntactically complete shape.
func FrameBlock(encoded [][]byte, marker SyncMarker) []byte {
	total := 0
	for _, rec := range encoded {
		total += len(rec)
	}
	buf := make([]byte, 0, 2*codec.MaxVarintLen+total+SyncLength)
	buf = codec.AppendLong(buf, int64(len(encoded)))
	buf = codec.AppendLong(buf, int64(total))
	for _, rec := range encoded {
		buf = append(buf, rec...)
	}
	return append(buf, marker[:]...)
}

// partition splits encoded records into per-block batches per the
// granularity policy, preserving order.
func partition(encoded [][]byte, g Granularity) [][][]byte {
	if len(encoded) == 0 {
		return nil
	}
	size := int(g)
	if size <= 0 || size >= len(encoded) {
		return [][][]byte{encoded}
	}
	parts := make([][][]byte, 0, (len(encoded)+size-1)/size)
	for start := 0; start < len(encoded); start += size {
		end := start + size
		if end > len(encoded) {
			end = len(encoded)
		}
		parts = append(parts, encoded[start:end])
	}
	return parts
}
