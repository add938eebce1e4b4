package search

import (
	"strconv"

	"paygateway/internal/apierror"
	"paygateway/internal/common/validation"
	"paygateway/internal/domain"
)

const (
	defaultPage        = 1
	defaultDisplaySize = validation.MaxDisplaySize
)

// PaymentParams are the payment search filters.
type PaymentParams struct {
	Reference             string `query:"reference" validate:"omitempty,max=255"`
	Email                 string `query:"email" validate:"omitempty,max=254"`
	State                 string `query:"state" validate:"omitempty,oneof=created started submitted capturable success failed cancelled error"`
	CardBrand             string `query:"card_brand" validate:"omitempty,max=20"`
	CardholderName        string `query:"cardholder_name" validate:"omitempty,max=255"`
	FirstDigitsCardNumber string `query:"first_digits_card_number" validate:"omitempty,len=6,numeric"`
	LastDigitsCardNumber  string `query:"last_digits_card_number" validate:"omitempty,len=4,numeric"`
	FromDate              string `query:"from_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ToDate                string `query:"to_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	FromSettledDate       string `query:"from_settled_date" validate:"omitempty,datetime=2006-01-02"`
	ToSettledDate         string `query:"to_settled_date" validate:"omitempty,datetime=2006-01-02"`
	AgreementID           string `query:"agreement_id" validate:"omitempty,max=26"`
	Page                  string `query:"page" validate:"omitempty,page"`
	DisplaySize           string `query:"display_size" validate:"omitempty,display_size"`
}

// RefundParams are the refund search filters.
type RefundParams struct {
	FromDate        string `query:"from_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ToDate          string `query:"to_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	FromSettledDate string `query:"from_settled_date" validate:"omitempty,datetime=2006-01-02"`
	ToSettledDate   string `query:"to_settled_date" validate:"omitempty,datetime=2006-01-02"`
	Page            string `query:"page" validate:"omitempty,page"`
	DisplaySize     string `query:"display_size" validate:"omitempty,display_size"`
}

// AgreementParams are the agreement search filters.
type AgreementParams struct {
	Reference   string `query:"reference" validate:"omitempty,max=255"`
	Status      string `query:"status" validate:"omitempty,oneof=created active cancelled expired inactive"`
	Page        string `query:"page" validate:"omitempty,page"`
	DisplaySize string `query:"display_size" validate:"omitempty,display_size"`
}

// DisputeParams are the dispute search filters.
type DisputeParams struct {
	FromDate        string `query:"from_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ToDate          string `query:"to_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	FromSettledDate string `query:"from_settled_date" validate:"omitempty,datetime=2006-01-02"`
	ToSettledDate   string `query:"to_settled_date" validate:"omitempty,datetime=2006-01-02"`
	Status          string `query:"status" validate:"omitempty,oneof=needs_response won lost under_review"`
	Page            string `query:"page" validate:"omitempty,page"`
	DisplaySize     string `query:"display_size" validate:"omitempty,display_size"`
}

// paging is the resolved page request.
type paging struct {
	page        int
	displaySize int
}

func resolvePaging(page, displaySize string) paging {
	p := paging{page: defaultPage, displaySize: defaultDisplaySize}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.page = n
	}
	if n, err := strconv.Atoi(displaySize); err == nil && n > 0 {
		p.displaySize = n
	}
	return p
}

// check validates params and reports every failing field at once, in caller
// order. extra holds fields already known to be invalid.
func check(op apierror.Operation, q Query, params any, extra ...string) error {
	failed := map[string]bool{}
	for _, f := range extra {
		failed[f] = true
	}

	if err := validation.Validate.Struct(params); err != nil {
		fields, ok := validation.FieldErrors(err)
		if !ok {
			return apierror.Internal()
		}
		for _, fe := range fields {
			failed[validation.Field(fe)] = true
		}
	}

	if len(failed) == 0 {
		return nil
	}
	return apierror.InvalidSearchParameters(op, q.orderFields(failed))
}

// parsePayments binds and validates a payment search for account.
func parsePayments(account domain.Account, q Query) (PaymentParams, error) {
	var p PaymentParams
	bind(q, &p)

	var extra []string
	if p.AgreementID != "" && !account.CanUseAgreements() {
		extra = append(extra, "agreement_id")
	}

	if err := check(apierror.OpSearchPayments, q, p, extra...); err != nil {
		return PaymentParams{}, err
	}
	return p, nil
}
