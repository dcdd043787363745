package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// JSONResponseBuilder provides a fluent API for writing JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
	raw        []byte
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets a value to be JSON encoded.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	b.raw = nil
	return b
}

// Raw sets a pre-encoded JSON document that is written unchanged.
func (b *JSONResponseBuilder) Raw(doc []byte) *JSONResponseBuilder {
	b.raw = doc
	b.body = nil
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	payload := b.raw
	if payload == nil && b.body != nil {
		var err error
		payload, err = json.Marshal(b.body)
		if err != nil {
			b.statusCode = http.StatusInternalServerError
			payload = []byte(`{"error":"failed to encode response"}`)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
	}
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(ErrorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	var be *BindingError
	switch {
	case errors.As(err, &be):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err. Storage details stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	logger := log.FromContext(r.Context())

	var be *BindingError
	switch {
	case status == http.StatusBadRequest && errors.As(err, &be):
		logger.WarnContext(r.Context(), "Rejected request",
			log.FieldOperation, op,
			log.FieldError, be.Error(),
			log.FieldErrorType, log.ErrorTypeBinding)
		BadRequestError(be.Error()).Write(w)
	case status == http.StatusNotFound:
		logger.WarnContext(r.Context(), "Resource not found",
			log.FieldOperation, op,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNotFound)
		NotFoundError(notFoundMessage(err)).Write(w)
	default:
		errType := log.ErrorTypeInternal
		message := "internal error"
		if errors.Is(err, core.ErrStorage) {
			errType = log.ErrorTypeDatabase
			message = "storage unavailable"
		}
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err.Error(),
			log.FieldErrorType, errType)
		InternalServerError(message).Write(w)
	}
}

func notFoundMessage(err error) string {
	var nf *core.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return "not found"
}
