// Package httpx holds small helpers shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"net/http"

	svcErr "github.com/minglehq/matchsvc/internal/errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err through the central taxonomy and writes the
// JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	status, msg := svcErr.MapHTTP(err)
	WriteJSON(w, status, map[string]string{"error": msg})
}

// UserID extracts the authenticated caller id. Session validation is
// handled upstream by the gateway; here the header is trusted.
func UserID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
