package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eventparticipation/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeTooManyRequests    = "too_many_requests"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeInternalError      = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// StatusFor maps an error kind to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest, ErrCodeBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case domain.KindConflict:
		return http.StatusConflict, ErrCodeConflict
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// WriteDomainError writes err with the status of its kind. Errors without a
// kind are logged and reported as internal errors without their details.
func WriteDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := StatusFor(err)
	var de *domain.Error
	switch {
	case status == http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, status, code, "internal error")
		return
	case status == http.StatusServiceUnavailable:
		logger.WarnContext(r.Context(), "dependency unavailable", "path", r.URL.Path, "method", r.Method, "err", err)
		w.Header().Set("Retry-After", "1")
	}
	msg := err.Error()
	if errors.As(err, &de) && de.Message != "" {
		msg = de.Message
	}
	WriteJSONError(w, status, code, msg)
}
