package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nao1215/csvapi/domain/model"
)

// Error codes carried in the "code" field of error bodies.
const (
	codeNameConflict       = "name_conflict"
	codeParse              = "parse_error"
	codeStorageConflict    = "storage_conflict"
	codeStorage            = "storage_error"
	codeNotFound           = "not_found"
	codeInvalidParameter   = "invalid_parameter"
	codeUnknownColumn      = "unknown_column"
	codeUnsupportedOp      = "unsupported_operator"
	codeInvalidFilterValue = "invalid_filter_value"
	codeTooLarge           = "payload_too_large"
	codeInternal           = "internal_error"
)

var errorStatus = []struct {
	kind   error
	status int
	code   string
}{
	{model.ErrNameConflict, http.StatusConflict, codeNameConflict},
	{model.ErrStorageConflict, http.StatusConflict, codeStorageConflict},
	{model.ErrParse, http.StatusBadRequest, codeParse},
	{model.ErrNotFound, http.StatusNotFound, codeNotFound},
	{model.ErrInvalidParameter, http.StatusBadRequest, codeInvalidParameter},
	{model.ErrUnknownColumn, http.StatusBadRequest, codeUnknownColumn},
	{model.ErrUnsupportedOperator, http.StatusBadRequest, codeUnsupportedOp},
	{model.ErrInvalidFilterValue, http.StatusBadRequest, codeInvalidFilterValue},
	{model.ErrStorage, http.StatusInternalServerError, codeStorage},
}

// statusFor maps an error to its HTTP status and code.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, codeTooLarge
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.kind) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, codeInternal
}

type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorBody{Detail: detail, Code: code})
}

// writeServiceError reports err to the client. Internal failures get a
// generic message; the full error only goes to the log.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	detail := err.Error()
	if status >= http.StatusInternalServerError {
		s.log.Errorw("request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "error", err)
		detail = http.StatusText(status)
	}
	writeError(w, status, code, detail)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // Ignore write error since the client is gone
}
