package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/intelliot/payid-core/pkg/payid"
)

const (
	// VersionHeader carries the PayID protocol version on every lookup.
	VersionHeader = "PayID-Version"
	// ProtocolVersion is the protocol version this client speaks.
	ProtocolVersion = "1.0"

	maxBodySize = 1 << 20
)

// ResolveOptions controls a single lookup. The zero value asks for every
// address over https.
type ResolveOptions struct {
	// Network selects the payment network. Empty means payid.NetworkAll.
	Network payid.PaymentNetwork
	// UseInsecureHTTP switches the lookup to plain http. Testing only.
	UseInsecureHTTP bool
}

func (o ResolveOptions) network() payid.PaymentNetwork {
	if o.Network == "" {
		return payid.NetworkAll
	}
	return o.Network
}

// Client resolves PayIDs. It holds only immutable configuration and is safe
// for concurrent use.
type Client struct {
	httpClient     *http.Client
	validateSchema bool
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets the http.Client used for lookups. Its timeout, redirect
// and transport settings apply unchanged.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithTimeout uses a fresh http.Client with the given overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("timeout must not be negative, got %s", d)
		}
		c.httpClient = &http.Client{Timeout: d}
		return nil
	}
}

// WithSchemaValidation checks every successful response body against the
// PaymentInformation JSON Schema before decoding it. Mismatches are
// reported as *SchemaError.
func WithSchemaValidation() Option {
	return func(c *Client) error {
		c.validateSchema = true
		return nil
	}
}

// New creates a Client.
//
//	c, err := client.New(
//	    client.WithTimeout(10*time.Second),
//	    client.WithSchemaValidation(),
//	)
func New(opts ...Option) (*Client, error) {
	c := &Client{httpClient: &http.Client{}}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. Useful in tests and program init.
func MustNew(opts ...Option) *Client {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultClient = MustNew()

// Resolve looks up payID with a default Client.
func Resolve(ctx context.Context, payID string, opts ResolveOptions) (*payid.PaymentInformation, error) {
	return defaultClient.Resolve(ctx, payID, opts)
}

// Resolve retrieves the payment information for payID.
//
// The lookup is a single GET to {scheme}://{host}/{local-part} with
// Accept: application/{network}+json and PayID-Version: 1.0. It fails with
// ErrInvalidPayID before any I/O if payID is malformed, with *StatusError on
// a non-2xx response, and with the transport's error otherwise.
func (c *Client) Resolve(ctx context.Context, payID string, opts ResolveOptions) (*payid.PaymentInformation, error) {
	parsed, ok := payid.Parse(payID)
	if !ok {
		return nil, ErrInvalidPayID
	}

	req, err := NewLookupRequest(ctx, parsed, opts)
	if err != nil {
		return nil, err
	}

	resp, body, err := c.doStatusBody(req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, &StatusError{StatusCode: resp.StatusCode, Reason: reasonPhrase(resp)}
	}

	info, err := c.decode(body)
	if err != nil {
		return nil, err
	}
	if opts.UseInsecureHTTP {
		return info.WithInsecureFlag(), nil
	}
	return info, nil
}

// NewLookupRequest builds the content-negotiated GET request for a parsed PayID.
func NewLookupRequest(ctx context.Context, c payid.Components, opts ResolveOptions) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(opts.UseInsecureHTTP), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", opts.network().MediaType())
	// Assigned directly so the header goes out as "PayID-Version" rather
	// than the canonical "Payid-Version".
	req.Header[VersionHeader] = []string{ProtocolVersion}
	return req, nil
}

// ResolveViaService resolves payID through a resolver service's
// GET /v1/resolve endpoint instead of contacting the PayID host directly.
//
// serviceBase is the base URL of the service, e.g. "http://localhost:9091".
// The service applies its own insecure-http policy.
func (c *Client) ResolveViaService(ctx context.Context, serviceBase, payID string, opts ResolveOptions) (*payid.PaymentInformation, error) {
	if !payid.IsValid(payID) {
		return nil, ErrInvalidPayID
	}

	q := url.Values{}
	q.Set("payid", payID)
	// An empty network defers to the service's configured default.
	if opts.Network != "" {
		q.Set("network", string(opts.Network))
	}
	if opts.UseInsecureHTTP {
		q.Set("insecure", "true")
	}
	target := strings.TrimRight(serviceBase, "/") + "/v1/resolve?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, body, err := c.doStatusBody(req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		var payload struct {
			Error string `json:"error"`
		}
		reason := reasonPhrase(resp)
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			reason = payload.Error
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Reason: reason}
	}

	return c.decode(body)
}

func (c *Client) decode(body []byte) (*payid.PaymentInformation, error) {
	if c.validateSchema {
		if err := validatePaymentInformation(body); err != nil {
			return nil, err
		}
	}
	info, err := payid.DecodePaymentInformation(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return info, nil
}

// doStatusBody executes req and returns the response with its body read,
// without interpreting the status code. Transport errors are returned as-is.
func (c *Client) doStatusBody(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return resp, nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxBodySize {
		// Error bodies are only informational; keep the status.
		if !isSuccess(resp.StatusCode) {
			return resp, body[:maxBodySize], nil
		}
		return resp, nil, fmt.Errorf("read response: %w: limit is %d bytes", ErrResponseTooLarge, maxBodySize)
	}
	return resp, body, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
