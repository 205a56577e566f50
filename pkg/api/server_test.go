package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	server, _ := setupTestServer(t)
	return Router(server, testMetrics, "test-key")
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	ts := httptest.NewServer(setupRouter(t))
	defer ts.Close()

	tests := []struct {
		name           string
		key            string
		expectedStatus int
	}{
		{
			name:           "with key",
			key:            "test-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "without key",
			key:            "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong key",
			key:            "other-key",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("GET", ts.URL+"/api/v1/health", nil)
			if err != nil {
				t.Fatalf("Failed to build request: %v", err)
			}
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}
		})
	}
}

func TestRouter_MetricsUnprotected(t *testing.T) {
	ts := httptest.NewServer(setupRouter(t))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestRouter_CreateAppendRead(t *testing.T) {
	ts := httptest.NewServer(setupRouter(t))
	defer ts.Close()

	do := func(method, path, body string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to build request: %v", err)
		}
		req.Header.Set("X-API-Key", "test-key")
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		return resp
	}

	resp := do("POST", "/api/v1/containers", `{"name": "users.avro"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Create: expected status 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = do("POST", "/api/v1/containers/users.avro/records",
		`{"records": [{"name": "Yulingfei", "favorite_number": 3, "favorite_color": "yellow"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Append: expected status 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = do("GET", "/api/v1/containers/users.avro/records", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Read: expected status 200, got %d", resp.StatusCode)
	}

	var response APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data := response.Data.(map[string]interface{})
	if data["count"] != float64(1) {
		t.Errorf("Expected 1 record, got %v", data["count"])
	}
}
