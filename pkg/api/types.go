package api

import (
	"github.com/ssargent/avrolog/pkg/catalog"
	"github.com/ssargent/avrolog/pkg/codec"
)

// APIResponse represents a standard API response. Failed responses carry
// Kind, a stable machine-readable class for the failure, alongside the
// human-readable Error message.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// AppendRequest is the body of a record append call. Marker optionally
// asserts the container's sync marker (hex); when it disagrees with the
// catalog the append is refused before any bytes are written.
type AppendRequest struct {
	Records []map[string]any `json:"records"`
	Marker  string           `json:"marker,omitempty"`
}

// ContainerStats describes one registered container.
type ContainerStats struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	ID        string `json:"id"`
	Marker    string `json:"marker"`
	Codec     string `json:"codec"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt string `json:"created_at"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port          int
	APIKey        string
	DataDir       string
	CatalogDir    string
	StrictMarkers bool
}

// ContainerService defines the container operations the HTTP surface
// exposes.
type ContainerService interface {
	List() ([]*catalog.Entry, error)
	Create(name string) (*catalog.Entry, error)
	Read(name string) ([]codec.Record, error)
	Append(name string, records []map[string]any, marker string) (int, error)
	Stats(name string) (*ContainerStats, error)
}
