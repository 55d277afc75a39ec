package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorCode is the machine-readable half of an error response.
type ErrorCode string

const (
	CodeMethodNotAllowed  ErrorCode = "method_not_allowed"
	CodeInternal          ErrorCode = "internal_error"
	CodeNoConfig          ErrorCode = "no_config"
	CodeHistory           ErrorCode = "history_error"
	CodeInvalidID         ErrorCode = "invalid_id"
	CodeForbidden         ErrorCode = "forbidden"
	CodeCheckpointFailed  ErrorCode = "checkpoint_failed"
	CodeStreamUnsupported ErrorCode = "stream_unsupported"
	CodeNoRunner          ErrorCode = "no_runner"
	CodeAlreadyRunning    ErrorCode = "already_running"
)

type ErrorBody struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError wraps ErrorBody as {"error": {...}}.
type APIError struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON encodes v before writing the header. A value that cannot be
// encoded becomes a bare 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, string(CodeInternal), http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	WriteJSON(w, status, APIError{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
	}})
}
