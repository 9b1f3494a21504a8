package errs

import "net/http"

func NewBadRequestError(message string, errors []FieldError) *HTTPError {
	err := newHTTPError(http.StatusBadRequest, message)
	err.Errors = errors
	return err
}

func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

func NewMethodNotAllowedError(message string) *HTTPError {
	return newHTTPError(http.StatusMethodNotAllowed, message)
}

func NewUnsupportedMediaTypeError(message string) *HTTPError {
	return newHTTPError(http.StatusUnsupportedMediaType, message)
}

// NewInternalServerError never carries the underlying cause; callers log it.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
