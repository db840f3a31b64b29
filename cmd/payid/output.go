package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/intelliot/payid-core/pkg/payid"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func isKnownFormat(f string) bool {
	return f == formatText || f == formatJSON || f == formatYAML
}

// resolveRow holds the outcome of a single PayID resolution attempt.
type resolveRow struct {
	payID  string
	result *payid.PaymentInformation
	err    error
}

// colorScheme defines the colours used in text output. Colours are dropped
// automatically when stdout is not a terminal or color.NoColor is set.
type colorScheme struct {
	Label *color.Color
	Value *color.Color
	OK    *color.Color
	Warn  *color.Color
	Error *color.Color
}

func newColorScheme() *colorScheme {
	return &colorScheme{
		Label: color.New(color.FgCyan),
		Value: color.New(color.FgWhite, color.Bold),
		OK:    color.New(color.FgGreen),
		Warn:  color.New(color.FgYellow, color.Bold),
		Error: color.New(color.FgRed),
	}
}

// printRows writes the resolution results in the requested format. A
// non-empty query replaces the format with the extracted value per row.
func printRows(w io.Writer, rows []resolveRow, format, query string, cs *colorScheme) error {
	if query != "" {
		return printQuery(w, rows, query)
	}
	switch format {
	case formatJSON:
		return printStructured(w, rows, func(v any) ([]byte, error) {
			b, err := json.MarshalIndent(v, "", "  ")
			return append(b, '\n'), err
		})
	case formatYAML:
		return printStructured(w, rows, yaml.Marshal)
	default:
		return printText(w, rows, cs)
	}
}

// rowDocument converts a row to a generic document so JSON and YAML output
// carry every field the PayID server returned.
func rowDocument(r resolveRow) (any, error) {
	if r.err != nil {
		return map[string]any{"payid": r.payID, "error": r.err.Error()}, nil
	}
	raw, err := json.Marshal(r.result)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", r.payID, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode %q: %w", r.payID, err)
	}
	return doc, nil
}

func printStructured(w io.Writer, rows []resolveRow, marshal func(any) ([]byte, error)) error {
	// Single result: the payment information itself.
	if len(rows) == 1 {
		r := rows[0]
		if r.err != nil {
			return fmt.Errorf("resolve %q: %w", r.payID, r.err)
		}
		doc, err := rowDocument(r)
		if err != nil {
			return err
		}
		return writeMarshalled(w, doc, marshal)
	}

	docs := make([]any, len(rows))
	for i, r := range rows {
		doc, err := rowDocument(r)
		if err != nil {
			return err
		}
		if r.err == nil {
			doc = map[string]any{"payid": r.payID, "result": doc}
		}
		docs[i] = doc
	}
	return writeMarshalled(w, docs, marshal)
}

func writeMarshalled(w io.Writer, v any, marshal func(any) ([]byte, error)) error {
	b, err := marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func printQuery(w io.Writer, rows []resolveRow, query string) error {
	if len(rows) == 1 {
		r := rows[0]
		if r.err != nil {
			return fmt.Errorf("resolve %q: %w", r.payID, r.err)
		}
		v, err := queryResult(r.result, query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, v)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAYID\tVALUE\tERROR")
	for _, r := range rows {
		if r.err != nil {
			fmt.Fprintf(tw, "%s\t\t%s\n", r.payID, r.err.Error())
			continue
		}
		v, err := queryResult(r.result, query)
		if err != nil {
			fmt.Fprintf(tw, "%s\t\t%s\n", r.payID, err.Error())
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", r.payID, v)
	}
	return tw.Flush()
}

// queryResult evaluates a gjson path against the JSON form of info.
// Scalars are returned unquoted; objects and arrays as raw JSON.
func queryResult(info *payid.PaymentInformation, query string) (string, error) {
	raw, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	res := gjson.GetBytes(raw, query)
	if !res.Exists() {
		return "", fmt.Errorf("query %q matched nothing", query)
	}
	if res.IsObject() || res.IsArray() {
		return res.Raw, nil
	}
	return res.String(), nil
}

func printText(w io.Writer, rows []resolveRow, cs *colorScheme) error {
	if len(rows) == 1 {
		r := rows[0]
		if r.err != nil {
			return fmt.Errorf("resolve %q: %w", r.payID, r.err)
		}
		printPaymentText(w, r.payID, r.result, cs)
		return nil
	}

	// Multiple results: tabulated.
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAYID\tTYPE\tADDRESS\tERROR")
	for _, r := range rows {
		if r.err != nil {
			fmt.Fprintf(tw, "%s\t\t\t%s\n", r.payID, r.err.Error())
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", r.payID, r.result.AddressDetailsType, addressSummary(r.result))
	}
	return tw.Flush()
}

func printPaymentText(w io.Writer, id string, info *payid.PaymentInformation, cs *colorScheme) {
	line := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(w, "%s %s\n", cs.Label.Sprintf("%-15s", label+":"), value)
	}

	line("PayID", cs.Value.Sprint(id))
	line("Type", string(info.AddressDetailsType))
	switch info.AddressDetailsType {
	case payid.CryptoAddressDetailsType:
		if d, err := info.CryptoAddress(); err == nil {
			line("Address", d.Address)
			line("Tag", d.Tag)
		}
	case payid.AchAddressDetailsType:
		if d, err := info.AchAddress(); err == nil {
			line("Account Number", d.AccountNumber)
			line("Routing Number", d.RoutingNumber)
		}
	default:
		line("Details", string(info.AddressDetails))
	}
	if info.PayID != "" && info.PayID != id {
		line("Server PayID", info.PayID)
	}
	line("Memo", info.Memo)
	if info.ProofOfControlSignature != "" {
		line("Proof", cs.OK.Sprint("present"))
	}
	if info.UsedInsecureHTTP {
		line("Transport", cs.Warn.Sprint("insecure http"))
	}
}

// addressSummary renders the address details on one line.
func addressSummary(info *payid.PaymentInformation) string {
	switch info.AddressDetailsType {
	case payid.CryptoAddressDetailsType:
		d, err := info.CryptoAddress()
		if err != nil {
			return ""
		}
		if d.Tag != "" {
			return d.Address + " (tag " + d.Tag + ")"
		}
		return d.Address
	case payid.AchAddressDetailsType:
		d, err := info.AchAddress()
		if err != nil {
			return ""
		}
		return d.RoutingNumber + "/" + d.AccountNumber
	default:
		return strings.TrimSpace(string(info.AddressDetails))
	}
}

// printValidation writes one line per input and returns the number of
// invalid PayIDs.
func printValidation(w io.Writer, ids []string, cs *colorScheme) int {
	invalid := 0
	for _, id := range ids {
		if payid.IsValid(id) {
			fmt.Fprintf(w, "%s %s\n", cs.OK.Sprint("valid  "), id)
			continue
		}
		invalid++
		fmt.Fprintf(w, "%s %s\n", cs.Error.Sprint("invalid"), id)
	}
	return invalid
}

func printComponents(w io.Writer, c payid.Components, insecure bool, cs *colorScheme) {
	fmt.Fprintf(w, "%s %s\n", cs.Label.Sprint("Host:"), c.Host)
	fmt.Fprintf(w, "%s %s\n", cs.Label.Sprint("Path:"), c.Path)
	fmt.Fprintf(w, "%s %s\n", cs.Label.Sprint("URL: "), c.URL(insecure))
}
