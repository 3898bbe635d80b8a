/*
dto.go - Wire types and response helpers for the point API

PURPOSE:
  Defines the JSON error payload, the helpers every handler uses to
  write responses, and the single place where engine errors are mapped
  to HTTP status codes.

SUCCESS BODIES:
  The domain types serialize directly:
  - point.UserPoint    -> {"id", "point", "updateMillis"}
  - []point.PointHistory -> [{"id", "userId", "type", "amount", "timeMillis"}]

ERROR BODY:
  {"code": "P003", "message": "..."} - codes come from the point package
  so clients can match on them without parsing messages.

STATUS MAPPING:
  Validation failures are 400. The domain errors (max point exceeded,
  insufficient point) are 500, matching the behavior clients already
  depend on. TODO: revisit 500 for P003/P005 once clients can handle a
  4xx here; 409 or 422 would be the better fit.

SEE ALSO:
  - handlers.go: uses these helpers
  - point/errors.go: error kinds and codes
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/kimdoha/point-system/point"
)

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeEngineError maps an engine error to its status and payload.
func writeEngineError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), ErrorResponse{
		Code:    point.CodeOf(err),
		Message: err.Error(),
	})
}

// writeValidationError reports a bad request that never reached the engine.
func writeValidationError(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: code, Message: message})
}

func statusFor(err error) int {
	switch {
	case point.IsValidation(err):
		return http.StatusBadRequest
	case point.CodeOf(err) == point.CodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
