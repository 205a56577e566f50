// Package fake generates deterministic User records for fixtures and the
// write command. The same seed always produces the same sequence, so test
// runs and generated files are reproducible.
package fake

import (
	"math/rand"
	"strings"

	"github.com/ssargent/avrolog/pkg/codec"
)

var names = []string{"Chris", "Divya", "Kevin", "Yulingfei"}

var colors = []string{"red", "yellow", "orange"}

// UserSchema returns the canonical example schema: a name, a nullable
// favorite number and a nullable favorite color.
func UserSchema() *codec.Schema {
	return codec.MustSchema("User", "example.avro",
		codec.Field{Name: "name", Type: codec.Plain(codec.String)},
		codec.Field{Name: "favorite_number", Type: codec.Optional(codec.Int)},
		codec.Field{Name: "favorite_color", Type: codec.Optional(codec.String)},
	)
}

// Generator produces pseudo-random User records from a fixed seed.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Record returns the next record. Roughly one in five names is a long
// repeated string, which keeps multi-byte varint length prefixes exercised
// in generated data.
func (g *Generator) Record() codec.Record {
	var name string
	if pick := g.rng.Intn(len(names) + 1); pick < len(names) {
		name = names[pick]
	} else {
		name = strings.Repeat("01234567890", 1+g.rng.Intn(1000))
	}
	return codec.Record{
		"name":            name,
		"favorite_number": int64(g.rng.Intn(1025)),
		"favorite_color":  colors[g.rng.Intn(len(colors))],
	}
}

// Records returns the next n records.
func (g *Generator) Records(n int) []codec.Record {
	records := make([]codec.Record, n)
	for i := range records {
		records[i] = g.Record()
	}
	return records
}
