package apierror

import (
	"fmt"
	"net/http"

	"paygateway/internal/backend"
)

// Operation names the public operation a backend call was made for. The
// operation picks the code family used for status-based defaults.
type Operation string

const (
	OpGetPayment       Operation = "get_payment"
	OpSearchPayments   Operation = "search_payments"
	OpCreatePayment    Operation = "create_payment"
	OpCancelPayment    Operation = "cancel_payment"
	OpCapturePayment   Operation = "capture_payment"
	OpGetEvents        Operation = "get_payment_events"
	OpCreateRefund     Operation = "create_refund"
	OpGetRefund        Operation = "get_refund"
	OpGetRefunds       Operation = "get_refunds"
	OpSearchRefunds    Operation = "search_refunds"
	OpGetAgreement     Operation = "get_agreement"
	OpSearchAgreements Operation = "search_agreements"
	OpCancelAgreement  Operation = "cancel_agreement"
	OpSearchDisputes   Operation = "search_disputes"
)

type action struct {
	code        string
	description string
}

type family struct {
	notFound            string
	notFoundDescription string
	downstream          string
	badRequest          *action
	conflict            *action
}

var families = map[Operation]family{
	OpGetPayment:       {notFound: "P0200", notFoundDescription: "Not found", downstream: "P0298"},
	OpSearchPayments:   {notFound: "P0402", notFoundDescription: "Page not found", downstream: "P0498"},
	OpCreatePayment:    {notFound: "P0199", notFoundDescription: "There is an error with this account. Please contact support", downstream: "P0198"},
	OpGetEvents:        {notFound: "P0300", notFoundDescription: "Not found", downstream: "P0398"},
	OpGetRefund:        {notFound: "P0700", notFoundDescription: "Not found", downstream: "P0798"},
	OpGetRefunds:       {notFound: "P0800", notFoundDescription: "Not found", downstream: "P0898"},
	OpSearchRefunds:    {notFound: "P1100", notFoundDescription: "Page not found", downstream: "P1898"},
	OpGetAgreement:     {notFound: "P2200", notFoundDescription: "Not found", downstream: "P2298"},
	OpSearchAgreements: {notFound: "P2402", notFoundDescription: "Page not found", downstream: "P2498"},
	OpSearchDisputes:   {notFound: "P0402", notFoundDescription: "Page not found", downstream: "P0498"},
	OpCreateRefund: {
		notFound: "P0600", notFoundDescription: "Not found", downstream: "P0698",
	},
	OpCancelPayment: {
		notFound: "P0500", notFoundDescription: "Not found", downstream: "P0598",
		badRequest: &action{code: "P0501", description: "Cancellation of payment failed"},
		conflict:   &action{code: "P0502", description: "Cancellation of payment failed"},
	},
	OpCapturePayment: {
		notFound: "P1000", notFoundDescription: "Not found", downstream: "P1098",
		badRequest: &action{code: "P1001", description: "Capture of payment failed"},
		conflict:   &action{code: "P1003", description: "Payment cannot be captured"},
	},
	OpCancelAgreement: {
		notFound: "P2500", notFoundDescription: "Not found", downstream: "P2598",
		badRequest: &action{code: "P2501", description: "Cancellation of agreement failed"},
	},
}

type key struct {
	service    backend.Service
	identifier string
}

type entry struct {
	kind     Kind
	code     string
	status   int
	template string
	// field is interpolated into template when set.
	field string
	// useReason interpolates the backend reason into template.
	useReason bool
	// useMessage passes the backend message through as the description.
	useMessage bool
}

// identifiers is the only place backend error identifiers are matched.
// Register new identifiers here.
var identifiers = map[key]entry{
	{backend.ServiceConnector, "IDEMPOTENCY_KEY_USED"}: {
		kind: KindIdempotencyKeyReused, code: "P0191", status: http.StatusConflict,
		template: "The `Idempotency-Key` you sent in the request header has already been used to create a payment.",
	},
	{backend.ServiceConnector, "ACCOUNT_DISABLED"}: {
		kind: KindDownstreamDomain, code: "P0941", status: http.StatusForbidden,
		template: "Payment and refund creation has been disabled on this account. Please contact support.",
	},
	{backend.ServiceConnector, "ACCOUNT_NOT_LINKED_WITH_PSP"}: {
		kind: KindDownstreamDomain, code: "P0199", status: http.StatusForbidden,
		template: "Account is not fully configured. Please refer to documentation to setup your account or contact support.",
	},
	{backend.ServiceConnector, "MOTO_NOT_ALLOWED"}: {
		kind: KindDownstreamDomain, code: "P0196", status: http.StatusUnprocessableEntity,
		template: "MOTO payments are not enabled for this account. Please contact support if you would like to process MOTO payments.",
	},
	{backend.ServiceConnector, "AUTHORISATION_API_NOT_ALLOWED"}: {
		kind: KindDownstreamDomain, code: "P0195", status: http.StatusUnprocessableEntity,
		template: "Using authorisation_mode of moto_api is not allowed for this account",
	},
	{backend.ServiceConnector, "RECURRING_CARD_PAYMENTS_NOT_ALLOWED"}: {
		kind: KindCapabilityMismatch, code: "P0930", status: http.StatusForbidden,
		template: "Recurring card payments are not enabled for this account",
	},
	{backend.ServiceConnector, "ZERO_AMOUNT_NOT_ALLOWED"}: {
		kind: KindValidation, code: "P0102", status: http.StatusUnprocessableEntity,
		template: "Invalid attribute value: %s. Must be greater than or equal to 1", field: "amount",
	},
	{backend.ServiceConnector, "AGREEMENT_NOT_FOUND"}: {
		kind: KindValidation, code: "P0102", status: http.StatusBadRequest,
		template: "Invalid attribute value: %s. Agreement ID does not exist", field: "agreement_id",
	},
	{backend.ServiceConnector, "AGREEMENT_NOT_ACTIVE"}: {
		kind: KindValidation, code: "P0102", status: http.StatusBadRequest,
		template: "Invalid attribute value: %s. Agreement must be active", field: "agreement_id",
	},
	{backend.ServiceConnector, "INVALID_ATTRIBUTE_VALUE"}: {
		kind: KindValidation, code: "P0102", status: http.StatusUnprocessableEntity,
		template: "Invalid attribute value", useMessage: true,
	},
	{backend.ServiceConnector, "MISSING_MANDATORY_ATTRIBUTE"}: {
		kind: KindValidation, code: "P0101", status: http.StatusBadRequest,
		template: "Missing mandatory attribute", useMessage: true,
	},
	{backend.ServiceConnector, "REFUND_NOT_AVAILABLE"}: {
		kind: KindDownstreamDomain, code: "P0603", status: http.StatusBadRequest,
		template: "The payment is not available for refund. Payment refund status: %s", useReason: true,
	},
	{backend.ServiceConnector, "REFUND_AMOUNT_AVAILABLE_MISMATCH"}: {
		kind: KindDownstreamDomain, code: "P0604", status: http.StatusPreconditionFailed,
		template: "Refund amount available mismatch.",
	},
}

// Translate maps a backend fault to exactly one public error.
func Translate(op Operation, f *backend.Fault) *Error {
	fam, ok := families[op]
	if !ok {
		fam = family{notFound: "P0200", notFoundDescription: "Not found", downstream: "P0198"}
	}

	switch {
	case f.Malformed:
		return unknownDownstream(fam)
	case f.Status == 0 || f.Timeout || f.Status >= http.StatusInternalServerError:
		return &Error{
			Kind:        KindDownstreamUnavailable,
			Code:        fam.downstream,
			Description: downstreamDescription,
			HTTPStatus:  http.StatusInternalServerError,
		}
	}

	if e, ok := identifiers[key{f.Service, f.Identifier}]; ok && f.Identifier != "" {
		return e.render(f)
	}

	switch {
	case f.Status == http.StatusNotFound:
		return &Error{
			Kind:        KindNotFound,
			Code:        fam.notFound,
			Description: fam.notFoundDescription,
			HTTPStatus:  http.StatusNotFound,
		}
	case f.Status == http.StatusBadRequest && fam.badRequest != nil:
		return &Error{
			Kind:        KindDownstreamDomain,
			Code:        fam.badRequest.code,
			Description: fam.badRequest.description,
			HTTPStatus:  http.StatusBadRequest,
		}
	case f.Status == http.StatusConflict && fam.conflict != nil:
		return &Error{
			Kind:        KindDownstreamDomain,
			Code:        fam.conflict.code,
			Description: fam.conflict.description,
			HTTPStatus:  http.StatusConflict,
		}
	}

	return unknownDownstream(fam)
}

// FromError translates err for op. Public errors pass through unchanged,
// backend faults are translated, anything else becomes an unknown
// downstream error.
func FromError(op Operation, err error) *Error {
	if e, ok := As(err); ok {
		return e
	}
	if f, ok := backend.AsFault(err); ok {
		return Translate(op, f)
	}
	fam, ok := families[op]
	if !ok {
		fam = family{downstream: "P0198"}
	}
	return unknownDownstream(fam)
}

func unknownDownstream(fam family) *Error {
	return &Error{
		Kind:        KindUnknownDownstream,
		Code:        fam.downstream,
		Description: downstreamDescription,
		HTTPStatus:  http.StatusInternalServerError,
	}
}

func (e entry) render(f *backend.Fault) *Error {
	desc := e.template
	switch {
	case e.field != "":
		desc = fmt.Sprintf(e.template, e.field)
	case e.useReason:
		desc = fmt.Sprintf(e.template, f.Reason)
	case e.useMessage && f.Message != "":
		desc = f.Message
	}
	return &Error{
		Kind:        e.kind,
		Code:        e.code,
		Description: desc,
		HTTPStatus:  e.status,
	}
}
