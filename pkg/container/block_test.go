package container

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarker() SyncMarker {
	m, err := MarkerFromBytes([]byte("0123456789abcdef"))
	if err != nil {
		panic(err)
	}
	return m
}

func TestFrameBlock_Empty(t *testing.T) {
	marker := testMarker()

	frame := FrameBlock(nil, marker)

	want := append([]byte{0x00, 0x00}, marker[:]...)
	assert.Equal(t, want, frame)
}

func TestFrameBlock_CountSizeData(t *testing.T) {
	marker := testMarker()
	records := [][]byte{
		{0x01, 0x02, 0x03},
		{0x04, 0x05, 0x06, 0x07},
	}

	frame := FrameBlock(records, marker)

	// zigzag(2) = 4, zigzag(7) = 14
	require.GreaterOrEqual(t, len(frame), 2)
	assert.Equal(t, byte(0x04), frame[0])
	assert.Equal(t, byte(0x0E), frame[1])
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}, frame[2:9])
	assert.Equal(t, marker[:], frame[9:])
}

func TestPartition(t *testing.T) {
	encoded := make([][]byte, 10)
	for i := range encoded {
		encoded[i] = []byte{byte(i)}
	}

	testCases := []struct {
		name        string
		granularity Granularity
		wantSizes   []int
	}{
		{"single block", SingleBlock, []int{10}},
		{"per record", PerRecord, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{"batches of 3", Batch(3), []int{3, 3, 3, 1}},
		{"batches of 4", Batch(4), []int{4, 4, 2}},
		{"batch larger than input", Batch(100), []int{10}},
		{"negative is single block", Granularity(-1), []int{10}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parts := partition(encoded, tc.granularity)
			require.Len(t, parts, len(tc.wantSizes))

			var flat [][]byte
			for i, part := range parts {
				assert.Len(t, part, tc.wantSizes[i])
				flat = append(flat, part...)
			}
			// Order is preserved across block boundaries.
			for i, rec := range flat {
				assert.True(t, bytes.Equal([]byte{byte(i)}, rec))
			}
		})
	}
}

func TestPartition_Empty(t *testing.T) {
	assert.Nil(t, partition(nil, SingleBlock))
	assert.Nil(t, partition(nil, PerRecord))
}

func TestSyncMarker(t *testing.T) {
	m1, err := NewSyncMarker()
	require.NoError(t, err)
	m2, err := NewSyncMarker()
	require.NoError(t, err)
	assert.NotEqual(t, m1, m2)

	parsed, err := MarkerFromHex(m1.Hex())
	require.NoError(t, err)
	assert.Equal(t, m1, parsed)

	_, err = MarkerFromBytes([]byte("too short"))
	assert.Error(t, err)
	_, err = MarkerFromHex("not hex")
	assert.Error(t, err)
}
