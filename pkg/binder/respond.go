package binder

import (
	"encoding/json"
	"net/http"
)

// Respond writes v as a JSON response with the given status. Encoding
// failures at this point cannot be reported to the client; the body is
// simply truncated and the status already sent.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v) //nolint:errcheck
	}
}

// RespondError writes the standard {"error": ...} envelope.
func RespondError(w http.ResponseWriter, status int, message string) {
	Respond(w, status, map[string]string{"error": message})
}
