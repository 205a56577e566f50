package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/avrolog/pkg/container"
)

// ErrNotFound is returned when a container path has no catalog entry.
var ErrNotFound = errors.New("container not found in catalog")

// Entry records what an appender needs to extend a container without
// reading it: above all the sync marker the file's header was written
// with. The schema document and codec name ride along for diagnostics.
type Entry struct {
	ID        ksuid.KSUID     `json:"id"`
	Path      string          `json:"path"`
	Marker    []byte          `json:"marker"`
	Schema    json.RawMessage `json:"schema,omitempty"`
	Codec     string          `json:"codec"`
	CreatedAt time.Time       `json:"created_at"`
}

// SyncMarker returns the entry's marker in container form.
func (e *Entry) SyncMarker() (container.SyncMarker, error) {
	return container.MarkerFromBytes(e.Marker)
}

// Catalog is a pebble-backed registry of written containers, keyed by file
// path. Writers register at creation time; appenders look the marker up
// here instead of re-reading the container they are about to extend.
type Catalog struct {
	db *pebble.DB
}

// Open opens (or creates) a catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Register records a container's marker, schema and codec under its path,
// replacing any previous entry for that path.
func (c *Catalog) Register(path string, marker container.SyncMarker, schemaJSON []byte, codecName string) (*Entry, error) {
	entry := &Entry{
		ID:        ksuid.New(),
		Path:      path,
		Marker:    marker[:],
		Schema:    schemaJSON,
		Codec:     codecName,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog entry: %w", err)
	}
	if err := c.db.Set([]byte(path), data, pebble.Sync); err != nil {
		return nil, err
	}
	return entry, nil
}

// Lookup returns the entry registered for path.
func (c *Catalog) Lookup(path string) (*Entry, error) {
	data, closer, err := c.db.Get([]byte(path))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer closer.Close()

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog entry: %w", err)
	}
	return &entry, nil
}

// List returns every registered entry in path order.
func (c *Catalog) List() ([]*Entry, error) {
	iter, err := c.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []*Entry
	for iter.First(); iter.Valid(); iter.Next() {
		var entry Entry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catalog entry %q: %w", iter.Key(), err)
		}
		entries = append(entries, &entry)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Remove deletes the entry for path, if any.
func (c *Catalog) Remove(path string) error {
	return c.db.Delete([]byte(path), pebble.Sync)
}

// Close closes the catalog database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
