package fake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/avrolog/pkg/codec"
)

func TestUserSchema(t *testing.T) {
	schema := UserSchema()

	require.Equal(t, 3, schema.Len())
	fields := schema.Fields()
	assert.Equal(t, "name", fields[0].Name)
	assert.Equal(t, "favorite_number", fields[1].Name)
	assert.Equal(t, "favorite_color", fields[2].Name)
	assert.False(t, fields[0].Type.Nullable)
	assert.True(t, fields[1].Type.Nullable)
	assert.True(t, fields[2].Type.Nullable)
}

func TestGenerator_Deterministic(t *testing.T) {
	a := New(42).Records(100)
	b := New(42).Records(100)
	assert.Equal(t, a, b)

	c := New(43).Records(100)
	assert.NotEqual(t, a, c)
}

func TestGenerator_RecordsEncode(t *testing.T) {
	rc := codec.NewRecordCodec(UserSchema())

	for i, rec := range New(7).Records(200) {
		encoded, err := rc.Encode(rec)
		require.NoErrorf(t, err, "record %d", i)

		decoded, n, err := rc.Decode(encoded)
		require.NoErrorf(t, err, "record %d", i)
		assert.Equal(t, len(encoded), n)
		assert.Equal(t, rec["name"], decoded["name"])
		assert.EqualValues(t, rec["favorite_number"], decoded["favorite_number"])
		assert.Equal(t, rec["favorite_color"], decoded["favorite_color"])
	}
}

func TestGenerator_LongNames(t *testing.T) {
	var long int
	records := New(1).Records(500)
	for _, rec := range records {
		if len(rec["name"].(string)) > 20 {
			long++
		}
	}
	// Roughly one in five, with generous slack for the fixed seed.
	assert.Greater(t, long, 40)
	assert.Less(t, long, 200)
}
