package extcore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
)

// Sentinel errors for request binding.
var (
	ErrBindPath   = errors.New("bind path")
	ErrBindQuery  = errors.New("bind query")
	ErrBindHeader = errors.New("bind header")
	ErrBindCookie = errors.New("bind cookie")
	ErrBindBody   = errors.New("bind body")
	ErrBindForm   = errors.New("bind form")
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ClientError is a 4xx error that is reported to the caller as-is.
// Message is always text; Detail holds the structured value when the error
// was created from one.
type ClientError struct {
	Status  int
	Name    string
	Message string
	Detail  any
}

// Error returns the error message.
func (e *ClientError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *ClientError) StatusCode() int { return e.Status }

// Body returns the value written as the JSON response body.
func (e *ClientError) Body() any {
	if e.Detail != nil {
		return e.Detail
	}
	return e.Message
}

// NewClientError returns a client error with the given status. message may
// be a string or any JSON-encodable value; when omitted the status text is
// used.
func NewClientError(status int, message ...any) *ClientError {
	e := &ClientError{
		Status:  status,
		Name:    errorName(status),
		Message: http.StatusText(status),
	}
	if len(message) == 0 || message[0] == nil {
		return e
	}

	switch m := message[0].(type) {
	case string:
		e.Message = m
	case error:
		e.Message = m.Error()
	default:
		b, err := json.Marshal(m)
		if err != nil {
			e.Message = fmt.Sprint(m)
			return e
		}
		e.Message = string(b)
		e.Detail = m
	}
	return e
}

// BadRequest returns a 400 error. Default message: "Bad Request".
func BadRequest(message ...any) *ClientError {
	return NewClientError(http.StatusBadRequest, message...)
}

// Unauthorized returns a 401 error. Default message: "Unauthorized".
func Unauthorized(message ...any) *ClientError {
	return NewClientError(http.StatusUnauthorized, message...)
}

// Forbidden returns a 403 error. Default message: "Forbidden".
func Forbidden(message ...any) *ClientError {
	return NewClientError(http.StatusForbidden, message...)
}

// NotFound returns a 404 error. Default message: "Not Found".
func NotFound(message ...any) *ClientError {
	return NewClientError(http.StatusNotFound, message...)
}

// Errorf returns a client error with a formatted message.
func Errorf(status int, format string, args ...any) *ClientError {
	return NewClientError(status, fmt.Sprintf(format, args...))
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// ValidationErrors is returned when a request fails validation. All
// violations are collected; it is written as 422.
type ValidationErrors struct {
	Messages []string
}

// Error joins the collected messages.
func (v *ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(v.Messages, "; ")
}

// StatusCode returns 422.
func (v *ValidationErrors) StatusCode() int { return http.StatusUnprocessableEntity }

// Add appends a formatted violation.
func (v *ValidationErrors) Add(format string, args ...any) {
	v.Messages = append(v.Messages, fmt.Sprintf(format, args...))
}

// Empty reports whether no violation was recorded.
func (v *ValidationErrors) Empty() bool { return len(v.Messages) == 0 }

// errorName derives a type-like name from the status, e.g. "NotFoundError".
func errorName(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ClientError"
	}
	var b strings.Builder
	for word := range strings.FieldsSeq(text) {
		word = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, word)
		if word == "" {
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}
	b.WriteString("Error")
	return b.String()
}
