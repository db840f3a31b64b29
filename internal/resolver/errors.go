package resolver

import (
	"context"
	"errors"
	"net/http"

	"github.com/intelliot/payid-core/pkg/client"
	"google.golang.org/grpc/codes"
)

const (
	outcomeSuccess   = "success"
	outcomeInvalid   = "invalid"
	outcomeRejected  = "rejected"
	outcomeStatus    = "status"
	outcomeSchema    = "schema"
	outcomeTransport = "transport"
)

// classify maps a Resolve error to a metrics outcome label.
func classify(err error) string {
	var se *client.StatusError
	var sche *client.SchemaError
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, client.ErrInvalidPayID):
		return outcomeInvalid
	case errors.Is(err, ErrInsecureNotAllowed):
		return outcomeRejected
	case errors.As(err, &se):
		return outcomeStatus
	case errors.As(err, &sche):
		return outcomeSchema
	default:
		return outcomeTransport
	}
}

// httpStatus maps a service error to the HTTP status returned to callers.
func httpStatus(err error) int {
	var se *client.StatusError
	switch {
	case errors.Is(err, client.ErrInvalidPayID), errors.Is(err, ErrBatchTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsecureNotAllowed):
		return http.StatusForbidden
	case errors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// grpcCode maps a service error to a gRPC status code.
func grpcCode(err error) codes.Code {
	var se *client.StatusError
	var sche *client.SchemaError
	switch {
	case errors.Is(err, client.ErrInvalidPayID), errors.Is(err, ErrBatchTooLarge):
		return codes.InvalidArgument
	case errors.Is(err, ErrInsecureNotAllowed):
		return codes.PermissionDenied
	case errors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		return codes.NotFound
	case errors.As(err, &se):
		return codes.FailedPrecondition
	case errors.As(err, &sche):
		return codes.DataLoss
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	default:
		return codes.Unavailable
	}
}
