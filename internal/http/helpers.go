package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"spendwise/internal/auth"
	"spendwise/internal/log"
)

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// isHTMX reports whether r was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// flowKey identifies the browser session that owns a delete flow.
func flowKey(r *http.Request) string {
	if t := auth.Token(r); t != "" {
		return t
	}
	return auth.UserID(r.Context())
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode JSON response", log.FieldError, err)
	}
}
