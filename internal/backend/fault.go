// Package backend provides the HTTP adapter shared by the Connector and
// Ledger clients. Every failed backend call is normalized here into a Fault.
package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Service names a backend.
type Service string

const (
	ServiceConnector Service = "connector"
	ServiceLedger    Service = "ledger"
)

// Fault is a decoded backend failure. Status is 0 when no response was
// received (timeout, connection refused, cancelled request).
type Fault struct {
	Service    Service
	Status     int
	Identifier string
	Message    string
	// Reason is the backend's machine-readable detail, e.g. a refund status.
	Reason string
	// Timeout is set when the call exceeded the client deadline.
	Timeout bool
	// Malformed is set when a response was received but could not be decoded.
	Malformed bool
	Err       error
}

func (f *Fault) Error() string {
	switch {
	case f.Status == 0:
		return fmt.Sprintf("%s: no response: %v", f.Service, f.Err)
	case f.Malformed:
		return fmt.Sprintf("%s: malformed response (status=%d): %v", f.Service, f.Status, f.Err)
	case f.Identifier != "":
		return fmt.Sprintf("%s: status=%d identifier=%s message=%q", f.Service, f.Status, f.Identifier, f.Message)
	default:
		return fmt.Sprintf("%s: status=%d message=%q", f.Service, f.Status, f.Message)
	}
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// AsFault extracts a *Fault from err.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// errorBody is the structured fault body both backends return. Connector
// sends message as a list, Ledger as a string.
type errorBody struct {
	Message         json.RawMessage `json:"message"`
	ErrorIdentifier string          `json:"error_identifier"`
	Reason          string          `json:"reason,omitempty"`
}

func decodeFault(service Service, status int, body []byte) *Fault {
	f := &Fault{Service: service, Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		// Not a structured body; keep the raw text for logs.
		f.Message = strings.TrimSpace(string(body))
		return f
	}

	f.Identifier = eb.ErrorIdentifier
	f.Message = decodeMessage(eb.Message)
	f.Reason = eb.Reason
	return f
}

func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}

	return string(raw)
}
