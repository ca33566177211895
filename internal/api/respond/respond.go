package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Envelope is the wire shape of every API response.
type Envelope struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Data       any          `json:"data,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	Count      *int         `json:"count,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

// FieldError describes a single invalid or unresolvable input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

func OK(w http.ResponseWriter, message string, data any) {
	write(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, message string, data any) {
	write(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// List writes a successful collection response with count and pagination.
func List(w http.ResponseWriter, message string, data any, count int, pagination *Pagination) {
	write(w, http.StatusOK, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Count:      &count,
		Pagination: pagination,
	})
}

// Error writes a failure envelope and logs the underlying error through the
// request-scoped logger. Server errors (5xx) log at error level, client
// errors (4xx) at warn.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	logFailure(r, status, message, err)
	write(w, status, Envelope{Success: false, Message: message})
}

// FieldErrors writes a 400-class failure citing the offending fields.
func FieldErrors(w http.ResponseWriter, r *http.Request, status int, message string, errs []FieldError) {
	logFailure(r, status, message, nil)
	write(w, status, Envelope{Success: false, Message: message, Errors: errs})
}

func logFailure(r *http.Request, status int, message string, err error) {
	if r == nil {
		return
	}
	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if status >= 500 {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg(message)
}

func write(w http.ResponseWriter, status int, envelope Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"internal error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
