// Package client is the PayID resolution SDK.
//
// It turns a PayID such as alice$example.com into a content-negotiated
// lookup against https://example.com/alice and returns the payment
// information the server publishes.
//
// # Resolving a PayID
//
// The zero ResolveOptions asks for every address over https:
//
//	info, err := client.Resolve(ctx, "alice$example.com", client.ResolveOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(info.Raw()))
//
// To ask for one payment network, set Network. The value is sent verbatim in
// the Accept header as application/{network}+json:
//
//	info, err := client.Resolve(ctx, "alice$example.com", client.ResolveOptions{
//	    Network: payid.NetworkXRPLTestnet,
//	})
//	addr, err := info.CryptoAddress()
//
// # Transport
//
// A Client adds no timeout, retry or caching of its own. Configure the
// transport with WithHTTPClient or WithTimeout, and cancel through ctx:
//
//	c, _ := client.New(client.WithTimeout(5 * time.Second))
//
// # Errors
//
// Resolve reports three kinds of failure:
//
//	errors.Is(err, client.ErrInvalidPayID)   // malformed PayID, no request made
//	var se *client.StatusError               // non-2xx; se.Error() is the reason phrase
//	errors.As(err, &se)
//	var ue *url.Error                        // DNS, connect, TLS, cancellation
//	errors.As(err, &ue)
//
// A successful body larger than 1 MiB fails with ErrResponseTooLarge.
//
// With WithSchemaValidation, bodies that do not match the PaymentInformation
// shape fail with *SchemaError.
//
// # Insecure lookups
//
// UseInsecureHTTP switches to plain http for local testing. Results obtained
// this way carry UsedInsecureHTTP = true; the server payload itself is left
// untouched.
package client
