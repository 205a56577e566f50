package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/avrolog/pkg/catalog"
	"github.com/ssargent/avrolog/pkg/container"
	"github.com/ssargent/avrolog/pkg/fake"
)

// Metrics register against the default prometheus registry, so every test
// shares one instance.
var testMetrics = NewMetrics()

func setupTestServer(t *testing.T) (*Server, *Service) {
	t.Helper()
	tmpDir := t.TempDir()

	cat, err := catalog.Open(filepath.Join(tmpDir, "catalog"))
	if err != nil {
		t.Fatalf("Failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	svc := NewService(filepath.Join(tmpDir, "data"), cat, fake.UserSchema(), container.PerRecord, false)
	server := NewServer(svc, ServerConfig{}, testMetrics)
	return server, svc
}

// withURLParam installs a chi route context carrying the container name.
func withURLParam(req *http.Request, name string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("name", name)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var response APIResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return response
}

func TestServer_handleHealth(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	response := decodeResponse(t, w)
	if !response.Success {
		t.Error("Expected success to be true")
	}
	if response.Data == nil {
		t.Error("Expected data to be present")
	}
}

func TestServer_handleCreateContainer(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "valid container",
			body:           `{"name": "users.avro"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "empty name",
			body:           `{"name": ""}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "traversal name",
			body:           `{"name": "../evil.avro"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid body",
			body:           `{not json`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := setupTestServer(t)

			req := httptest.NewRequest("POST", "/containers", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			server.handleCreateContainer(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				response := decodeResponse(t, w)
				if !response.Success {
					t.Error("Expected success to be true")
				}
				summary, ok := response.Data.(map[string]interface{})
				if !ok {
					t.Fatal("Expected data to be a map")
				}
				if summary["name"] != "users.avro" {
					t.Errorf("Expected name users.avro, got %v", summary["name"])
				}
				if len(summary["marker"].(string)) != 32 {
					t.Errorf("Expected 32 hex chars of marker, got %v", summary["marker"])
				}
			}
		})
	}
}

func TestServer_handleAppendAndRead(t *testing.T) {
	server, svc := setupTestServer(t)

	if _, err := svc.Create("users.avro"); err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}

	appendBody := AppendRequest{
		Records: []map[string]any{
			{"name": "Chris", "favorite_number": 42, "favorite_color": "red"},
			{"name": "Divya", "favorite_number": nil, "favorite_color": nil},
		},
	}
	requestBody, _ := json.Marshal(appendBody)

	req := httptest.NewRequest("POST", "/containers/users.avro/records", bytes.NewReader(requestBody))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "users.avro")
	w := httptest.NewRecorder()

	server.handleAppendRecords(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	response := decodeResponse(t, w)
	data := response.Data.(map[string]interface{})
	if data["appended"] != float64(2) {
		t.Errorf("Expected 2 appended, got %v", data["appended"])
	}

	// Read the records back through the handler.
	req = httptest.NewRequest("GET", "/containers/users.avro/records", nil)
	req = withURLParam(req, "users.avro")
	w = httptest.NewRecorder()

	server.handleReadRecords(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	response = decodeResponse(t, w)
	data = response.Data.(map[string]interface{})
	if data["count"] != float64(2) {
		t.Errorf("Expected 2 records, got %v", data["count"])
	}
	records := data["records"].([]interface{})
	first := records[0].(map[string]interface{})
	if first["name"] != "Chris" {
		t.Errorf("Expected first record name Chris, got %v", first["name"])
	}
	second := records[1].(map[string]interface{})
	if second["favorite_color"] != nil {
		t.Errorf("Expected null favorite_color, got %v", second["favorite_color"])
	}
}

func TestServer_handleAppendRecords_Errors(t *testing.T) {
	server, svc := setupTestServer(t)

	entry, err := svc.Create("users.avro")
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	marker, err := entry.SyncMarker()
	if err != nil {
		t.Fatalf("Failed to decode marker: %v", err)
	}

	valid := []map[string]any{
		{"name": "Kevin", "favorite_number": 7, "favorite_color": "orange"},
	}

	tests := []struct {
		name           string
		container      string
		request        AppendRequest
		expectedStatus int
		expectedKind   string
	}{
		{
			name:           "matching marker assertion",
			container:      "users.avro",
			request:        AppendRequest{Records: valid, Marker: marker.Hex()},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "marker mismatch",
			container:      "users.avro",
			request:        AppendRequest{Records: valid, Marker: strings.Repeat("00", 16)},
			expectedStatus: http.StatusPreconditionFailed,
			expectedKind:   "marker_mismatch",
		},
		{
			name:           "unknown container",
			container:      "missing.avro",
			request:        AppendRequest{Records: valid},
			expectedStatus: http.StatusNotFound,
			expectedKind:   "not_found",
		},
		{
			name:           "no records",
			container:      "users.avro",
			request:        AppendRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "unknown field",
			container: "users.avro",
			request: AppendRequest{Records: []map[string]any{
				{"name": "Kevin", "shoe_size": 44},
			}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "fractional int",
			container: "users.avro",
			request: AppendRequest{Records: []map[string]any{
				{"name": "Kevin", "favorite_number": 1.5, "favorite_color": "red"},
			}},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestBody, _ := json.Marshal(tt.request)
			req := httptest.NewRequest("POST", "/containers/"+tt.container+"/records", bytes.NewReader(requestBody))
			req.Header.Set("Content-Type", "application/json")
			req = withURLParam(req, tt.container)
			w := httptest.NewRecorder()

			server.handleAppendRecords(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedKind != "" {
				response := decodeResponse(t, w)
				if response.Kind != tt.expectedKind {
					t.Errorf("Expected kind %q, got %q", tt.expectedKind, response.Kind)
				}
			}
		})
	}
}

func TestServer_handleReadRecords_NotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/containers/missing.avro/records", nil)
	req = withURLParam(req, "missing.avro")
	w := httptest.NewRecorder()

	server.handleReadRecords(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_handleListContainers(t *testing.T) {
	server, svc := setupTestServer(t)

	for _, name := range []string{"a.avro", "b.avro"} {
		if _, err := svc.Create(name); err != nil {
			t.Fatalf("Failed to create container: %v", err)
		}
	}

	req := httptest.NewRequest("GET", "/containers", nil)
	w := httptest.NewRecorder()

	server.handleListContainers(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	response := decodeResponse(t, w)
	summaries, ok := response.Data.([]interface{})
	if !ok {
		t.Fatal("Expected data to be a list")
	}
	if len(summaries) != 2 {
		t.Errorf("Expected 2 containers, got %d", len(summaries))
	}
}

func TestServer_handleStats(t *testing.T) {
	server, svc := setupTestServer(t)

	if _, err := svc.Create("users.avro"); err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}

	req := httptest.NewRequest("GET", "/containers/users.avro/stats", nil)
	req = withURLParam(req, "users.avro")
	w := httptest.NewRecorder()

	server.handleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	response := decodeResponse(t, w)
	stats := response.Data.(map[string]interface{})
	if stats["name"] != "users.avro" {
		t.Errorf("Expected name users.avro, got %v", stats["name"])
	}
	// Header only: magic, metadata and the 16 byte sync marker.
	if stats["size_bytes"].(float64) <= 16 {
		t.Errorf("Expected header-sized container, got %v bytes", stats["size_bytes"])
	}

	req = httptest.NewRequest("GET", "/containers/missing.avro/stats", nil)
	req = withURLParam(req, "missing.avro")
	w = httptest.NewRecorder()

	server.handleStats(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
