package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/waitline/waitline/internal/coordinator"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeCoordinatorError maps a coordinator failure kind onto an HTTP status.
func writeCoordinatorError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch coordinator.KindOf(err) {
	case coordinator.KindUnauthenticated:
		status = http.StatusUnauthorized
	case coordinator.KindForbidden:
		status = http.StatusForbidden
	case coordinator.KindNotFound:
		status = http.StatusNotFound
	case coordinator.KindInvalidInput:
		status = http.StatusBadRequest
	case coordinator.KindUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, err.Error())
}

// parseLimit parses a limit string and returns a valid limit value.
//
// Returns 0 for empty strings or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}

// parseFloat parses a float query value, falling back to def.
func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}
