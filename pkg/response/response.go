package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/segyhp/rental-engine/internal/logger"
	customError "github.com/segyhp/rental-engine/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response := Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("error encoding JSON response", "error", err)
	}
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	response := ErrorResponse{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err != nil {
		response.Error = err.Error()
		response.Code = customError.CodeOf(err)
	}

	writeError(w, statusCode, response)
}

func writeError(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.Error("error encoding error response", "error", encodeErr)
	}
}

// BadRequest sends a 400 bad request response
func BadRequest(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusBadRequest, message, err)
}

// NotFound sends a 404 not found response
func NotFound(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusNotFound, message, err)
}

// Conflict sends a 409 conflict response
func Conflict(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusConflict, message, err)
}

// UnprocessableEntity sends a 422 response
func UnprocessableEntity(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusUnprocessableEntity, message, err)
}

// InternalServerError logs err and sends a 500 without its detail
func InternalServerError(w http.ResponseWriter, err error) {
	logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, ErrorResponse{
		Success:   false,
		Error:     "internal error",
		Code:      customError.CodeOf(err),
		Message:   "Internal server error",
		Timestamp: time.Now().UTC(),
	})
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusUnauthorized, message, err)
}

// Forbidden sends a 403 forbidden response
func Forbidden(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusForbidden, message, err)
}

// StatusOf maps a service error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, customError.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, customError.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, customError.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, customError.ErrRentalNotFound),
		errors.Is(err, customError.ErrChatNotFound),
		errors.Is(err, customError.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, customError.ErrInvalidTransition),
		errors.Is(err, customError.ErrRentalAlreadyActive):
		return http.StatusConflict
	case errors.Is(err, customError.ErrVerificationFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// FromError writes err with the status StatusOf picks. Internal failures are
// logged and their detail is not sent to the client.
func FromError(w http.ResponseWriter, err error) {
	message := customError.MessageOf(err)

	switch StatusOf(err) {
	case http.StatusBadRequest:
		BadRequest(w, message, err)
	case http.StatusUnauthorized:
		Unauthorized(w, message, err)
	case http.StatusForbidden:
		Forbidden(w, message, err)
	case http.StatusNotFound:
		NotFound(w, message, err)
	case http.StatusConflict:
		Conflict(w, message, err)
	case http.StatusUnprocessableEntity:
		UnprocessableEntity(w, message, err)
	default:
		InternalServerError(w, err)
	}
}

// JSONMiddleware sets JSON content type for all responses
func JSONMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response recorder to capture the status code
		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"duration", time.Since(start),
		)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *responseRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}
