package payid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrWrongAddressDetailsType is returned by the typed AddressDetails
// accessors when the discriminator names a different variant.
var ErrWrongAddressDetailsType = errors.New("address details type mismatch")

// PaymentInformation is the body a PayID server returns for a lookup.
//
// The server payload is kept verbatim: MarshalJSON reproduces every field the
// server sent, including fields not modelled here, plus usedInsecureHttp when
// UsedInsecureHTTP is set.
type PaymentInformation struct {
	AddressDetailsType      AddressDetailsType `json:"addressDetailsType"`
	AddressDetails          json.RawMessage    `json:"addressDetails,omitempty"`
	ProofOfControlSignature string             `json:"proofOfControlSignature,omitempty"`
	PayID                   string             `json:"payId,omitempty"`
	Memo                    string             `json:"memo,omitempty"`

	// UsedInsecureHTTP is true when the lookup went over plain http.
	UsedInsecureHTTP bool `json:"usedInsecureHttp,omitempty"`

	raw json.RawMessage
}

// CryptoAddressDetails is the AddressDetails variant for crypto networks.
type CryptoAddressDetails struct {
	Address string `json:"address"`
	// Tag, when set, must be used by the sender as the destination tag.
	Tag string `json:"tag,omitempty"`
}

// AchAddressDetails is the AddressDetails variant for bank transfers.
type AchAddressDetails struct {
	AccountNumber string `json:"accountNumber"`
	RoutingNumber string `json:"routingNumber"`
}

// plainPaymentInformation has PaymentInformation's fields without its methods.
type plainPaymentInformation PaymentInformation

// DecodePaymentInformation decodes a server response body. Any JSON value is
// accepted; only syntactically invalid bodies fail.
func DecodePaymentInformation(body []byte) (*PaymentInformation, error) {
	var p PaymentInformation
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UnmarshalJSON retains a copy of data and fills the known fields from it
// where their types match. A field of an unexpected type is left at its zero
// value, and a payload that is not an object leaves every field unset.
func (p *PaymentInformation) UnmarshalJSON(data []byte) error {
	*p = PaymentInformation{raw: bytes.Clone(data)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}
	decodeField(fields, "addressDetailsType", &p.AddressDetailsType)
	decodeField(fields, "proofOfControlSignature", &p.ProofOfControlSignature)
	decodeField(fields, "payId", &p.PayID)
	decodeField(fields, "memo", &p.Memo)
	if d, ok := fields["addressDetails"]; ok {
		p.AddressDetails = d
	}
	return nil
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) {
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}

// MarshalJSON encodes the original server payload, adding usedInsecureHttp
// when set. Values built in code, with no server payload, encode their fields.
// Payloads that are not objects are encoded verbatim.
func (p PaymentInformation) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return json.Marshal(plainPaymentInformation(p))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(p.raw, &fields); err != nil || fields == nil {
		return bytes.Clone(p.raw), nil
	}
	if p.UsedInsecureHTTP {
		fields["usedInsecureHttp"] = json.RawMessage("true")
	}
	return json.Marshal(fields)
}

// Raw returns a copy of the payload as received from the server, or nil for
// values not produced by decoding.
func (p *PaymentInformation) Raw() json.RawMessage {
	return bytes.Clone(p.raw)
}

// WithInsecureFlag returns a copy of p with UsedInsecureHTTP set. p is not modified.
func (p *PaymentInformation) WithInsecureFlag() *PaymentInformation {
	cp := *p
	cp.AddressDetails = bytes.Clone(p.AddressDetails)
	cp.raw = bytes.Clone(p.raw)
	cp.UsedInsecureHTTP = true
	return &cp
}

// CryptoAddress decodes AddressDetails as CryptoAddressDetails.
func (p *PaymentInformation) CryptoAddress() (*CryptoAddressDetails, error) {
	if p.AddressDetailsType != CryptoAddressDetailsType {
		return nil, fmt.Errorf("%w: have %q", ErrWrongAddressDetailsType, p.AddressDetailsType)
	}
	var d CryptoAddressDetails
	if err := json.Unmarshal(p.AddressDetails, &d); err != nil {
		return nil, fmt.Errorf("decode crypto address details: %w", err)
	}
	return &d, nil
}

// AchAddress decodes AddressDetails as AchAddressDetails.
func (p *PaymentInformation) AchAddress() (*AchAddressDetails, error) {
	if p.AddressDetailsType != AchAddressDetailsType {
		return nil, fmt.Errorf("%w: have %q", ErrWrongAddressDetailsType, p.AddressDetailsType)
	}
	var d AchAddressDetails
	if err := json.Unmarshal(p.AddressDetails, &d); err != nil {
		return nil, fmt.Errorf("decode ACH address details: %w", err)
	}
	return &d, nil
}
