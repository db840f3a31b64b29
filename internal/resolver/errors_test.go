package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/intelliot/payid-core/pkg/client"
	"google.golang.org/grpc/codes"
)

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		outcome string
		status  int
		code    codes.Code
	}{
		{"nil", nil, outcomeSuccess, http.StatusBadGateway, codes.Unavailable},
		{"invalid", client.ErrInvalidPayID, outcomeInvalid, http.StatusBadRequest, codes.InvalidArgument},
		{"batch", fmt.Errorf("%w: 3", ErrBatchTooLarge), outcomeTransport, http.StatusBadRequest, codes.InvalidArgument},
		{"insecure", ErrInsecureNotAllowed, outcomeRejected, http.StatusForbidden, codes.PermissionDenied},
		{"not found", &client.StatusError{StatusCode: 404, Reason: "Not Found"}, outcomeStatus, http.StatusNotFound, codes.NotFound},
		{"other status", &client.StatusError{StatusCode: 406, Reason: "Not Acceptable"}, outcomeStatus, http.StatusBadGateway, codes.FailedPrecondition},
		{"schema", fmt.Errorf("decode response: %w", &client.SchemaError{}), outcomeSchema, http.StatusBadGateway, codes.DataLoss},
		{"deadline", context.DeadlineExceeded, outcomeTransport, http.StatusGatewayTimeout, codes.DeadlineExceeded},
		{"canceled", context.Canceled, outcomeTransport, http.StatusBadGateway, codes.Canceled},
		{"transport", errors.New("connection refused"), outcomeTransport, http.StatusBadGateway, codes.Unavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.err); got != tc.outcome {
				t.Errorf("classify: got %q, want %q", got, tc.outcome)
			}
			if tc.err == nil {
				return
			}
			if got := httpStatus(tc.err); got != tc.status {
				t.Errorf("httpStatus: got %d, want %d", got, tc.status)
			}
			if got := grpcCode(tc.err); got != tc.code {
				t.Errorf("grpcCode: got %v, want %v", got, tc.code)
			}
		})
	}
}

func TestNetworkLabel(t *testing.T) {
	if got := networkLabel("btc-mainnet"); got != "btc-mainnet" {
		t.Errorf("got %q", got)
	}
	if got := networkLabel("made-up-chain"); got != "other" {
		t.Errorf("got %q", got)
	}
}
