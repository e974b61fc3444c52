package apierror

import (
	"encoding/json"
	"net/http"
)

// Error represents a structured API error response. The JSON shape is the
// wire contract: a single "error" message plus, for price mismatches, the
// authoritative server price so the client can re-display an updated offer.
type Error struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"-"`
	Message     string `json:"error"`
	ServerPrice *int   `json:"serverPrice,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
	}
}

// ValidationError creates a 400 error for a malformed or incomplete request.
func ValidationError() *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    "Missing required fields",
	}
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    message,
	}
}

// UnknownDevice creates a 404 error for a catalog lookup miss.
func UnknownDevice() *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       "UNKNOWN_DEVICE",
		Message:    "Unknown device",
	}
}

// PriceMismatch creates a 422 error carrying the authoritative server price.
func PriceMismatch(serverPrice int) *Error {
	return &Error{
		StatusCode:  http.StatusUnprocessableEntity,
		Code:        "PRICE_MISMATCH",
		Message:     "Price validation failed: declared price does not match the server computation",
		ServerPrice: &serverPrice,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError() *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    "Internal Server Error",
	}
}
