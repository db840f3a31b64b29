package client

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrInvalidPayID is returned by Resolve when the PayID fails syntactic
// validation. No request is made.
var ErrInvalidPayID = errors.New("Invalid PayID") //nolint:stylecheck

// ErrResponseTooLarge is returned when a successful response body exceeds
// the 1 MiB read limit.
var ErrResponseTooLarge = errors.New("response body too large")

// StatusError is returned when the server answers with a non-2xx status.
// Its message is the reason phrase from the status line, e.g. "Not Found".
type StatusError struct {
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	return e.Reason
}

// ValidationErrors collects JSON Schema violations.
type ValidationErrors []error

func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// SchemaError is returned when WithSchemaValidation is enabled and the
// response body does not match the PaymentInformation shape.
type SchemaError struct {
	Errors ValidationErrors
}

func (e *SchemaError) Error() string {
	return "payment information does not match schema: " + e.Errors.Error()
}

func (e *SchemaError) Unwrap() error {
	return e.Errors
}

// reasonPhrase extracts the reason phrase from resp.Status ("404 Not Found").
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	if reason == "" {
		reason = "HTTP " + strconv.Itoa(resp.StatusCode)
	}
	return reason
}
