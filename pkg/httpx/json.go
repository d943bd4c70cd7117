// Package httpx holds the HTTP plumbing shared by the storefront handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError writes an error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, code, details string) {
	WriteJSON(w, status, jsonError{Error: code, Details: details})
}
