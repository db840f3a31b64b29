// Package payid provides parsing and validation for PayIDs.
//
// PayID format: local-part$host
//
// Examples:
//
//	alice$example.com
//	georgewashington$xpring.money
//	pay$me$wallet.example.com   (local-part "pay$me")
//
// The host is everything after the last '$' and is used verbatim as an HTTP
// authority. The local-part is everything before it and becomes the request
// path. Only 7-bit ASCII input is accepted.
package payid

import (
	"fmt"
	"strings"
)

const separator = '$'

// Components is a parsed PayID.
type Components struct {
	Host string // e.g. "example.com" or "127.0.0.1:8080"
	Path string // "/" + local-part, e.g. "/alice"
}

// Parse splits a PayID into its host and path.
//
// The second result is false when raw is not a syntactically valid PayID:
// it contains a non-ASCII character, has no '$', or has an empty local-part
// or host around its last '$'.
func Parse(raw string) (Components, bool) {
	if !isASCII(raw) {
		return Components{}, false
	}

	i := strings.LastIndexByte(raw, separator)
	if i == -1 {
		return Components{}, false
	}

	local, host := raw[:i], raw[i+1:]
	if local == "" || host == "" {
		return Components{}, false
	}

	return Components{Host: host, Path: "/" + local}, true
}

// IsValid reports whether raw is a syntactically valid PayID.
func IsValid(raw string) bool {
	_, ok := Parse(raw)
	return ok
}

// MustParse parses a PayID and panics if it is invalid. Useful in tests and init blocks.
func MustParse(raw string) Components {
	c, ok := Parse(raw)
	if !ok {
		panic(fmt.Sprintf("payid: invalid PayID %q", raw))
	}
	return c
}

// String returns the canonical local-part$host form.
func (c Components) String() string {
	return strings.TrimPrefix(c.Path, "/") + string(separator) + c.Host
}

// URL returns the lookup URL for the PayID. insecure selects http over https.
func (c Components) URL(insecure bool) string {
	scheme := "https"
	if insecure {
		scheme = "http"
	}
	return scheme + "://" + c.Host + c.Path
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}
