package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/avrolog/pkg/catalog"
	"github.com/ssargent/avrolog/pkg/codec"
	"github.com/ssargent/avrolog/pkg/container"
)

// CreateRequest is the body of a container creation call.
type CreateRequest struct {
	Name string `json:"name"`
}

// ContainerSummary is one element of the container list response.
type ContainerSummary struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Marker    string `json:"marker"`
	Codec     string `json:"codec"`
	CreatedAt string `json:"created_at"`
}

// Server holds the API server state
type Server struct {
	svc     ContainerService
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(svc ContainerService, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		svc:     svc,
		config:  config,
		metrics: metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entries, err := s.svc.List()
	if err != nil {
		s.metrics.RecordContainerOperation("list", false, time.Since(start))
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.RecordContainerOperation("list", true, time.Since(start))

	summaries := make([]ContainerSummary, len(entries))
	for i, e := range entries {
		summaries[i] = summarize(e)
	}
	sendSuccess(w, summaries)
}

func (s *Server) handleCreateContainer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordContainerOperation("create", false, time.Since(start))
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := s.svc.Create(req.Name)
	if err != nil {
		s.metrics.RecordContainerOperation("create", false, time.Since(start))
		sendError(w, err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordContainerOperation("create", true, time.Since(start))
	sendSuccess(w, summarize(entry))
}

func (s *Server) handleReadRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	records, err := s.svc.Read(name)
	if err != nil {
		s.metrics.RecordContainerOperation("read", false, time.Since(start))
		sendError(w, err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordContainerOperation("read", true, time.Since(start))
	s.metrics.RecordRead(len(records))
	sendSuccess(w, map[string]any{
		"count":   len(records),
		"records": records,
	})
}

func (s *Server) handleAppendRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	var req AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordContainerOperation("append", false, time.Since(start))
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Records) == 0 {
		s.metrics.RecordContainerOperation("append", false, time.Since(start))
		sendError(w, "No records to append", http.StatusBadRequest)
		return
	}

	n, err := s.svc.Append(name, req.Records, req.Marker)
	if err != nil {
		s.metrics.RecordContainerOperation("append", false, time.Since(start))
		sendError(w, err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordContainerOperation("append", true, time.Since(start))
	s.metrics.RecordAppended(n)
	sendSuccess(w, map[string]int{"appended": n})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	stats, err := s.svc.Stats(name)
	if err != nil {
		s.metrics.RecordContainerOperation("stats", false, time.Since(start))
		sendError(w, err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordContainerOperation("stats", true, time.Since(start))
	sendSuccess(w, stats)
}

func summarize(e *catalog.Entry) ContainerSummary {
	marker := ""
	if m, err := e.SyncMarker(); err == nil {
		marker = m.Hex()
	}
	return ContainerSummary{
		Name:      filepath.Base(e.Path),
		ID:        e.ID.String(),
		Marker:    marker,
		Codec:     e.Codec,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, container.ErrMarkerPrecondition):
		return http.StatusPreconditionFailed
	case codec.IsSchemaMismatch(err), errors.Is(err, ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, container.ErrBadMagic),
		errors.Is(err, container.ErrTruncatedBlock),
		errors.Is(err, container.ErrUnexpectedEOF),
		errors.Is(err, container.ErrDesync),
		errors.Is(err, container.ErrCorruption):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
