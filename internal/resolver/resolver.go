// Package resolver implements the PayID resolver service.
//
// The service resolves PayIDs on behalf of callers that cannot or should not
// speak the PayID protocol themselves. It is exposed over HTTP/JSON (gin) and
// gRPC. Every lookup goes to the PayID host; nothing is cached.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/intelliot/payid-core/pkg/client"
	"github.com/intelliot/payid-core/pkg/payid"
	"go.uber.org/zap"
)

var (
	// ErrInsecureNotAllowed is returned for insecure lookups when
	// Config.AllowInsecureHTTP is false.
	ErrInsecureNotAllowed = errors.New("insecure http lookups are disabled")

	// ErrBatchTooLarge is returned by ResolveMany when the batch exceeds Config.MaxBatch.
	ErrBatchTooLarge = errors.New("batch too large")
)

const defaultMaxBatch = 100

// Config holds resolver service configuration.
type Config struct {
	DefaultNetwork    payid.PaymentNetwork // used when a request names no network; default "payid"
	AllowInsecureHTTP bool                 // permit plain-http lookups (local testing)
	MaxBatch          int                  // ResolveMany limit; default 100
}

// Request is a single lookup.
type Request struct {
	PayID    string `json:"payid"`
	Network  string `json:"network,omitempty"`
	Insecure bool   `json:"insecure,omitempty"`
}

// Result is the outcome of one Request in a batch.
type Result struct {
	PayID  string                    `json:"payid"`
	Result *payid.PaymentInformation `json:"result,omitempty"`
	Error  string                    `json:"error,omitempty"`

	Err error `json:"-"`
}

// Service resolves PayIDs with a shared client.
type Service struct {
	cfg    Config
	client *client.Client
	logger *zap.Logger
}

// New creates a resolver Service.
func New(cfg Config, c *client.Client, logger *zap.Logger) *Service {
	if cfg.DefaultNetwork == "" {
		cfg.DefaultNetwork = payid.NetworkAll
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = defaultMaxBatch
	}
	return &Service{cfg: cfg, client: c, logger: logger}
}

// Resolve performs one lookup.
func (s *Service) Resolve(ctx context.Context, req Request) (*payid.PaymentInformation, error) {
	network := payid.PaymentNetwork(req.Network)
	if network == "" {
		network = s.cfg.DefaultNetwork
	}

	if req.Insecure && !s.cfg.AllowInsecureHTTP {
		recordResolution(network, outcomeRejected, 0)
		return nil, ErrInsecureNotAllowed
	}

	start := time.Now()
	info, err := s.client.Resolve(ctx, req.PayID, client.ResolveOptions{
		Network:         network,
		UseInsecureHTTP: req.Insecure,
	})
	elapsed := time.Since(start)
	recordResolution(network, classify(err), elapsed)

	if err != nil {
		s.logger.Warn("resolve failed",
			zap.String("payid", req.PayID),
			zap.String("network", string(network)),
			zap.Duration("latency", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("resolved",
		zap.String("payid", req.PayID),
		zap.String("network", string(network)),
		zap.String("address_details_type", string(info.AddressDetailsType)),
		zap.Bool("insecure", req.Insecure),
		zap.Duration("latency", elapsed),
	)
	return info, nil
}

// ResolveMany fans out concurrent Resolve calls, one per request, and
// returns results in request order. A failed lookup is reported in its
// Result and does not abort the batch.
func (s *Service) ResolveMany(ctx context.Context, reqs []Request) ([]Result, error) {
	if len(reqs) == 0 {
		return []Result{}, nil
	}
	if len(reqs) > s.cfg.MaxBatch {
		return nil, fmt.Errorf("%w: %d requests, limit is %d", ErrBatchTooLarge, len(reqs), s.cfg.MaxBatch)
	}

	type indexedResult struct {
		idx    int
		result Result
	}

	resultCh := make(chan indexedResult, len(reqs))

	for i, r := range reqs {
		i, r := i, r
		go func() {
			info, err := s.Resolve(ctx, r)
			res := Result{PayID: r.PayID, Result: info, Err: err}
			if err != nil {
				res.Error = err.Error()
			}
			resultCh <- indexedResult{idx: i, result: res}
		}()
	}

	results := make([]Result, len(reqs))
	for range reqs {
		ir := <-resultCh
		results[ir.idx] = ir.result
	}
	return results, nil
}

// Validate parses payID without any network access.
func (s *Service) Validate(payID string) (payid.Components, bool) {
	return payid.Parse(payID)
}
