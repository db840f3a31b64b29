package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// PaymentInformationSchema is the JSON Schema applied by WithSchemaValidation.
// Address details are checked against the variant named by
// addressDetailsType; unrecognised types only need an object.
const PaymentInformationSchema = `{
  "type": "object",
  "required": ["addressDetailsType", "addressDetails"],
  "properties": {
    "addressDetailsType": {"type": "string", "minLength": 1},
    "addressDetails": {"type": "object"},
    "proofOfControlSignature": {"type": "string"},
    "payId": {"type": "string"},
    "memo": {"type": "string"}
  },
  "allOf": [
    {
      "if": {"properties": {"addressDetailsType": {"const": "CryptoAddressDetails"}}},
      "then": {
        "properties": {
          "addressDetails": {
            "required": ["address"],
            "properties": {
              "address": {"type": "string", "minLength": 1},
              "tag": {"type": "string"}
            }
          }
        }
      }
    },
    {
      "if": {"properties": {"addressDetailsType": {"const": "AchAddressDetails"}}},
      "then": {
        "properties": {
          "addressDetails": {
            "required": ["accountNumber", "routingNumber"],
            "properties": {
              "accountNumber": {"type": "string", "minLength": 1},
              "routingNumber": {"type": "string", "minLength": 1}
            }
          }
        }
      }
    }
  ]
}`

var paymentInformationSchema = jsonschema.MustCompileString("payment-information.json", PaymentInformationSchema)

// validatePaymentInformation checks body against PaymentInformationSchema.
func validatePaymentInformation(body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	err := paymentInformationSchema.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return &SchemaError{Errors: flattenValidationError(verr)}
	}
	return &SchemaError{Errors: ValidationErrors{err}}
}

// flattenValidationError collects the leaf messages of a validation error tree.
func flattenValidationError(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		return ValidationErrors{fmt.Errorf("at %q: %s", err.InstanceLocation, err.Message)}
	}
	var out ValidationErrors
	for _, cause := range err.Causes {
		out = append(out, flattenValidationError(cause)...)
	}
	return out
}
