package middleware

import (
	"fmt"
	"net/http"
)

// writeError writes a JSON error envelope. Middleware short-circuits with
// the same shape the handlers use so clients see one error format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"status":"error","code":%q,"message":%q}`, code, message)
}
