package api

import (
	"encoding/json"
	"net/http"
)

// Error kinds emitted on failed responses. Clients branch on these
// instead of parsing the message text.
const (
	kindUnauthorized     = "unauthorized"
	kindNotFound         = "not_found"
	kindBadRequest       = "bad_request"
	kindMarkerMismatch   = "marker_mismatch"
	kindCorruptContainer = "corrupt_container"
	kindInternal         = "internal"
)

// kindFor maps an HTTP status to the error kind sent with the response.
// The statuses mirror statusFor's mapping of container errors.
func kindFor(statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized:
		return kindUnauthorized
	case http.StatusNotFound:
		return kindNotFound
	case http.StatusBadRequest:
		return kindBadRequest
	case http.StatusPreconditionFailed:
		return kindMarkerMismatch
	case http.StatusUnprocessableEntity:
		return kindCorruptContainer
	default:
		return kindInternal
	}
}

// apiKeyMiddleware validates the X-API-Key header
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if apiKey != expectedKey {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := APIResponse{
		Success: true,
		Data:    data,
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// sendError sends an error JSON response with the kind derived from the
// status code.
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := APIResponse{
		Success: false,
		Error:   message,
		Kind:    kindFor(statusCode),
	}
	_ = json.NewEncoder(w).Encode(response)
}
