package dto

// APIError is the standard error payload returned by every endpoint.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError for JSON responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: message}}
}

// NotFoundError returns a standard 404 payload.
func NotFoundError(resource string) ErrorResponse {
	return NewErrorResponse("NOT_FOUND", resource+" not found")
}

// BadRequestError returns a standard 400 payload.
func BadRequestError(message string) ErrorResponse {
	return NewErrorResponse("BAD_REQUEST", message)
}

// ConflictError returns a standard 409 payload.
func ConflictError(message string) ErrorResponse {
	return NewErrorResponse("CONFLICT", message)
}

// ValidationError returns a 422 payload for domain validation failures.
func ValidationError(message string) ErrorResponse {
	return NewErrorResponse("VALIDATION_FAILED", message)
}

// InternalError returns a generic 500 payload. Details stay in the logs.
func InternalError() ErrorResponse {
	return NewErrorResponse("INTERNAL_ERROR", "an internal error occurred")
}
