package api

import (
	"encoding/json"
	"net/http"
)

// Common error codes.
const (
	errCodeInvalidRequest     = "INVALID_REQUEST"
	errCodeInternalError      = "INTERNAL_ERROR"
	errCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// errorResponse is the error envelope for all endpoints.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sendJSON writes a JSON response with the given status code.
func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// sendError writes an error envelope with the given status and code.
func sendError(w http.ResponseWriter, status int, code, message string) {
	sendJSON(w, status, errorResponse{
		Error: errorDetail{Code: code, Message: message},
	})
}
