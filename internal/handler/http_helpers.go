package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"pdf-viewer/internal/domain"
	apperrors "pdf-viewer/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string              `json:"error"`
	Type  apperrors.ErrorType `json:"type,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeAppError classifies err and writes it with the matching status code.
// Server-side failures are logged.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error) {
	appErr := apperrors.FromDomain(err)
	status := apperrors.GetStatusCode(appErr)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("Request failed", err, "type", appErr.Type)
	case apperrors.IsType(appErr, apperrors.ErrorTypeConflict):
		logger.Debug("Request lost to a newer operation", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: appErr.Message, Type: appErr.Type})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, dst interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.NewValidationError("Invalid request body", err.Error())
	}
	return nil
}
