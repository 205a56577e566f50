package api

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ssargent/avrolog/pkg/catalog"
	"github.com/ssargent/avrolog/pkg/codec"
	"github.com/ssargent/avrolog/pkg/container"
)

// ErrInvalidName rejects container names that could escape the data
// directory.
var ErrInvalidName = errors.New("invalid container name")

// Service executes container operations against a data directory and its
// marker catalog. Creation registers the new container's marker; appends
// look the marker up instead of re-reading the file, so extending a
// container stays O(new data) even over HTTP.
type Service struct {
	dataDir     string
	catalog     *catalog.Catalog
	schema      *codec.Schema
	granularity container.Granularity
	strict      bool
}

// NewService creates a service rooted at dataDir.
func NewService(dataDir string, cat *catalog.Catalog, schema *codec.Schema, granularity container.Granularity, strict bool) *Service {
	return &Service{
		dataDir:     dataDir,
		catalog:     cat,
		schema:      schema,
		granularity: granularity,
		strict:      strict,
	}
}

// containerPath validates a container name and resolves it under the data
// directory. Names are plain file names; anything that could traverse out
// of the data directory is rejected.
func (s *Service) containerPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return filepath.Join(s.dataDir, name), nil
}

// List returns every container registered in the catalog.
func (s *Service) List() ([]*catalog.Entry, error) {
	return s.catalog.List()
}

// Create writes a new header-only container with a fresh marker and
// registers it. The file is immediately appendable.
func (s *Service) Create(name string) (*catalog.Entry, error) {
	path, err := s.containerPath(name)
	if err != nil {
		return nil, err
	}

	marker, err := container.NewSyncMarker()
	if err != nil {
		return nil, err
	}

	if err := container.WriteAll(container.WriterConfig{
		Path:        path,
		Schema:      s.schema,
		Marker:      marker,
		Granularity: s.granularity,
	}, nil); err != nil {
		return nil, err
	}

	schemaJSON, err := s.schema.JSON()
	if err != nil {
		return nil, err
	}
	return s.catalog.Register(path, marker, schemaJSON, container.CodecNull)
}

// Read returns every record in the named container.
func (s *Service) Read(name string) ([]codec.Record, error) {
	path, err := s.containerPath(name)
	if err != nil {
		return nil, err
	}

	r, err := container.NewReader(container.ReaderConfig{
		Path:          path,
		Schema:        s.schema,
		StrictMarkers: s.strict,
	})
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return r.ReadAll()
}

// Append adds records to the named container using the marker registered
// in the catalog. When assertMarker is non-empty it must match the
// catalog's marker, otherwise the append is refused with
// ErrMarkerPrecondition before any bytes are written.
func (s *Service) Append(name string, records []map[string]any, assertMarker string) (int, error) {
	path, err := s.containerPath(name)
	if err != nil {
		return 0, err
	}

	entry, err := s.catalog.Lookup(path)
	if err != nil {
		return 0, err
	}
	marker, err := entry.SyncMarker()
	if err != nil {
		return 0, err
	}
	if assertMarker != "" && assertMarker != marker.Hex() {
		return 0, container.ErrMarkerPrecondition
	}

	normalized := make([]codec.Record, len(records))
	for i, m := range records {
		rec, err := s.normalizeRecord(m)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		normalized[i] = rec
	}

	if err := container.AppendAll(container.AppenderConfig{
		Path:        path,
		Schema:      s.schema,
		Marker:      marker,
		Granularity: s.granularity,
	}, normalized); err != nil {
		return 0, err
	}
	return len(normalized), nil
}

// normalizeRecord converts a JSON-decoded record into codec form. JSON
// numbers arrive as float64 and must be integral to land in an int field.
func (s *Service) normalizeRecord(m map[string]any) (codec.Record, error) {
	rec := make(codec.Record, len(m))
	for name, v := range m {
		f, ok := s.schema.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", codec.ErrUnknownField, name)
		}
		if n, isFloat := v.(float64); isFloat && f.Type.Primitive == codec.Int {
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%w: field %q wants int, got %v", codec.ErrTypeMismatch, name, n)
			}
			rec[name] = int64(n)
			continue
		}
		rec[name] = v
	}
	return rec, nil
}

// Stats returns size and catalog details for the named container.
func (s *Service) Stats(name string) (*ContainerStats, error) {
	path, err := s.containerPath(name)
	if err != nil {
		return nil, err
	}

	entry, err := s.catalog.Lookup(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	marker, err := entry.SyncMarker()
	if err != nil {
		return nil, err
	}

	return &ContainerStats{
		Name:      name,
		Path:      path,
		ID:        entry.ID.String(),
		Marker:    marker.Hex(),
		Codec:     entry.Codec,
		SizeBytes: info.Size(),
		CreatedAt: entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
