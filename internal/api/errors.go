package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// ErrorBuilder assembles an APIError with context.
type ErrorBuilder struct {
	errType string
	message string
	context map[string]any
}

// NewError starts an error of the given type.
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{errType: errType, message: message, context: map[string]any{}}
}

// WithContext adds a context field.
func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithCause records err's message under "cause".
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build stamps the error for r.
func (eb *ErrorBuilder) Build(r *http.Request) APIError {
	e := APIError{
		Type:      eb.errType,
		Message:   eb.message,
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if len(eb.context) > 0 {
		e.Context = eb.context
	}
	return e
}

// writeError logs and writes e. Client errors log at warn, server errors at
// error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, e APIError) {
	entry := s.logger.WithFields(logrus.Fields{
		"type":       e.Type,
		"status":     status,
		"request_id": e.RequestID,
		"method":     r.Method,
		"path":       r.URL.Path,
	})
	if status >= http.StatusInternalServerError {
		entry.Error(e.Message)
	} else {
		entry.Warn(e.Message)
	}
	s.writeJSON(w, status, e)
}

func (s *Server) validationError(w http.ResponseWriter, r *http.Request, field string, err error) {
	s.writeError(w, r, http.StatusBadRequest,
		NewError(ErrTypeValidation, err.Error()).WithContext("field", field).Build(r))
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.writeError(w, r, http.StatusInternalServerError,
		NewError(ErrTypeInternal, "internal error").WithContext("operation", op).WithCause(err).Build(r))
}
