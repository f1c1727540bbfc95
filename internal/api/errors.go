package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/p-arndt/werkbank/internal/lifecycle"
	"github.com/p-arndt/werkbank/internal/provider"
	"github.com/p-arndt/werkbank/internal/sandbox"
	"github.com/p-arndt/werkbank/internal/store"
)

// Error codes returned in API responses
const (
	ErrCodeProjectNotFound    = "PROJECT_NOT_FOUND"
	ErrCodeProjectBusy        = "PROJECT_BUSY"
	ErrCodeInvalidState       = "INVALID_STATE"
	ErrCodeProvisioningFailed = "PROVISIONING_FAILED"
	ErrCodeBackendUnreachable = "BACKEND_UNREACHABLE"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
)

// APIError represents a structured API error response
type APIError struct {
	Code    string         `json:"error_code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeAPIError writes a structured error response with appropriate HTTP status
func writeAPIError(w http.ResponseWriter, err error) {
	var apiErr APIError
	statusCode := http.StatusInternalServerError

	switch {
	case errors.Is(err, lifecycle.ErrNotFound), errors.Is(err, store.ErrNotFound):
		apiErr = APIError{Code: ErrCodeProjectNotFound, Message: err.Error()}
		statusCode = http.StatusNotFound

	case errors.Is(err, lifecycle.ErrBusy):
		apiErr = APIError{Code: ErrCodeProjectBusy, Message: err.Error()}
		statusCode = http.StatusConflict

	case errors.Is(err, lifecycle.ErrInvalidState), errors.Is(err, lifecycle.ErrAlreadyExists):
		apiErr = APIError{Code: ErrCodeInvalidState, Message: err.Error()}
		statusCode = http.StatusConflict

	case errors.Is(err, provider.ErrProjectIdentity):
		apiErr = APIError{Code: ErrCodeInvalidRequest, Message: err.Error()}
		statusCode = http.StatusBadRequest

	case errors.Is(err, sandbox.ErrProvisioning):
		apiErr = APIError{Code: ErrCodeProvisioningFailed, Message: err.Error()}
		statusCode = http.StatusBadGateway

	case errors.Is(err, sandbox.ErrTransport), errors.Is(err, sandbox.ErrSandboxNotFound):
		apiErr = APIError{Code: ErrCodeBackendUnreachable, Message: err.Error()}
		statusCode = http.StatusBadGateway

	default:
		apiErr = APIError{Code: ErrCodeInternalError, Message: err.Error()}
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErr)
}

// writeValidationError writes a 400 Bad Request with validation details
func writeValidationError(w http.ResponseWriter, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(APIError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Details: details,
	})
}

// writeUnauthorizedError writes a 401 Unauthorized error
func writeUnauthorizedError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	})
}
