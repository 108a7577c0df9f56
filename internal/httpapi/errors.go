package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"llmlauncher/internal/instances"
	"llmlauncher/internal/launcher"
	"llmlauncher/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps well-known domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case instances.IsDuplicateName(err):
		return http.StatusConflict
	case instances.IsNotFound(err):
		return http.StatusNotFound
	case launcher.IsUnknownFamily(err), launcher.IsInvalid(err), instances.IsInvalid(err):
		return http.StatusBadRequest
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logError(r, "request failed", status, err)
	writeJSONError(w, status, err.Error())
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
