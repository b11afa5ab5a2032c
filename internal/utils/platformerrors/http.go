package platformerrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const internalErrorMessage = "internal server error"

// HTTPErrorResponse represents the standard error response format.
// Detail duplicates the message for clients that read a flat field.
type HTTPErrorResponse struct {
	Error  *HTTPErrorDetail `json:"error"`
	Detail string           `json:"detail"`
}

// HTTPErrorDetail contains error details for HTTP responses.
type HTTPErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteHTTPError writes a PlatformError as an HTTP response.
// Internal failures are reported with a generic message; the cause is only logged.
func WriteHTTPError(c *gin.Context, err *PlatformError, log zerolog.Logger) {
	if err == nil {
		WriteInternalError(c, internalErrorMessage)
		return
	}

	LogError(log, err)

	status := ErrorTypeToHTTPStatus(err.Type)
	message := err.Message
	if status >= http.StatusInternalServerError && err.Type != ErrorTypeExternal {
		message = internalErrorMessage
	}

	c.AbortWithStatusJSON(status, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message:   message,
			Type:      errorTypeToString(err.Type),
			Code:      err.UUID,
			RequestID: err.RequestID,
		},
		Detail: message,
	})
}

// WriteError writes a generic error as an HTTP response.
// Errors that are not PlatformErrors are treated as internal errors.
func WriteError(c *gin.Context, err error, log zerolog.Logger) {
	if err == nil {
		WriteInternalError(c, internalErrorMessage)
		return
	}

	if platformErr := GetPlatformError(err); platformErr != nil {
		WriteHTTPError(c, platformErr, log)
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
	WriteInternalError(c, internalErrorMessage)
}

// WriteValidationError writes a 400 Bad Request response.
func WriteValidationError(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, ErrorTypeValidation, message)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(c *gin.Context, message string) {
	write(c, http.StatusUnauthorized, ErrorTypeUnauthorized, message)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(c *gin.Context, message string) {
	write(c, http.StatusInternalServerError, ErrorTypeInternal, message)
}

func write(c *gin.Context, status int, errorType ErrorType, message string) {
	c.AbortWithStatusJSON(status, HTTPErrorResponse{
		Error: &HTTPErrorDetail{
			Message:   message,
			Type:      errorTypeToString(errorType),
			RequestID: getRequestIDFromContext(c.Request.Context()),
		},
		Detail: message,
	})
}

// errorTypeToString converts an ErrorType to a snake_case string for API responses.
func errorTypeToString(t ErrorType) string {
	switch t {
	case ErrorTypeNotFound:
		return "not_found_error"
	case ErrorTypeValidation:
		return "validation_error"
	case ErrorTypeConflict:
		return "conflict_error"
	case ErrorTypeUnauthorized:
		return "unauthorized_error"
	case ErrorTypeForbidden:
		return "forbidden_error"
	case ErrorTypeNotImplemented:
		return "not_implemented_error"
	case ErrorTypeExternal:
		return "upload_failed_error"
	case ErrorTypeInternal, ErrorTypeDatabaseError:
		fallthrough
	default:
		return "internal_error"
	}
}
