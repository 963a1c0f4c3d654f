package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"elibrary/internal/platform/validate"
)

// ValidateStruct validates a request DTO and returns field-level details.
func ValidateStruct(s any) []ErrorDetail {
	return validate.Struct(s)
}

// DecodeJSON decodes the request body into dst and writes a 400 on failure.
// It reports whether the caller should continue.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
		case errors.Is(err, io.EOF):
			JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Request body is required", nil)
		default:
			JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		}
		return false
	}
	return true
}
