// ABOUTME: Standardized error response types and helpers for HTTP handlers
// ABOUTME: Provides consistent error formatting across the decode, scan and package APIs

package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the standardized error body returned by every API handler.
//
// Usage:
//
//	WriteError(w, http.StatusBadRequest, ErrInvalidRequest, "payload is empty")
type ErrorResponse struct {
	Code    string `json:"code"`              // Machine-readable error code (e.g., "not_decoded", "not_found")
	Message string `json:"message"`           // Human-readable error message
	Status  int    `json:"status"`            // HTTP status code
	Field   string `json:"field,omitempty"`   // Optional: field that caused the error
	Details any    `json:"details,omitempty"` // Optional: additional context, e.g. the raw fallback of an undecodable payload
}

// WriteError writes a standardized error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
	})
}

// WriteErrorWithField writes an error naming the request field that caused it.
//
// Example:
//
//	WriteErrorWithField(w, http.StatusBadRequest, ErrInvalidRequest, "unknown encoding", "encoding")
func WriteErrorWithField(w http.ResponseWriter, status int, code, message, field string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
		Field:   field,
	})
}

// WriteErrorWithDetails writes an error carrying extra context. details is
// encoded as JSON, so it may be a string or a structured value.
func WriteErrorWithDetails(w http.ResponseWriter, status int, code, message string, details any) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
		Details: details,
	})
}

// WriteJSON writes v as a JSON body with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse) {
	WriteJSON(w, resp.Status, resp)
}

// Error codes shared by the HTTP handlers
const (
	// Client errors (4xx)
	ErrInvalidRequest   = "invalid_request"
	ErrInvalidBody      = "invalid_request_body"
	ErrMissingField     = "missing_field"
	ErrValidationFailed = "validation_failed"
	ErrNotFound         = "not_found"
	ErrUnauthorized     = "unauthorized"
	ErrConflict         = "conflict"
	ErrPayloadTooLarge  = "payload_too_large"

	// Decoding and rendering
	ErrNotDecoded = "not_decoded"
	ErrNoView     = "no_view"

	// Package installation
	ErrPackageNotFound  = "package_not_found"
	ErrPackageCorrupted = "package_corrupted"
	ErrPackageOutdated  = "package_outdated"

	// Server errors (5xx)
	ErrInternal      = "internal_error"
	ErrDatabaseError = "database_error"
	ErrIOError       = "io_error"
)
