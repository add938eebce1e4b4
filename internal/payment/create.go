package payment

import (
	"context"
	"log/slog"

	"paygateway/internal/apierror"
	"paygateway/internal/common/validation"
	"paygateway/internal/domain"
)

// MaxIdempotencyKeyLength bounds the Idempotency-Key header.
const MaxIdempotencyKeyLength = 255

// CreateRequest is the caller's payment creation body, as received.
type CreateRequest struct {
	Amount                     *int64                             `json:"amount" validate:"required,min=0,max=10000000"`
	Reference                  string                             `json:"reference" validate:"required,max=255"`
	Description                string                             `json:"description" validate:"required,max=255"`
	ReturnURL                  string                             `json:"return_url" validate:"omitempty,max=2000,url"`
	Language                   string                             `json:"language" validate:"omitempty,oneof=en cy"`
	Email                      string                             `json:"email" validate:"omitempty,max=254,email"`
	DelayedCapture             bool                               `json:"delayed_capture"`
	Moto                       bool                               `json:"moto"`
	Metadata                   map[string]any                     `json:"metadata" validate:"omitempty,max=10,dive,keys,min=1,max=30,endkeys"`
	PrefilledCardholderDetails *domain.PrefilledCardholderDetails `json:"prefilled_cardholder_details"`
	AuthorisationMode          string                             `json:"authorisation_mode" validate:"omitempty,oneof=web agreement moto_api"`
	AgreementID                string                             `json:"agreement_id" validate:"omitempty,max=26"`
	SetUpAgreement             string                             `json:"set_up_agreement" validate:"omitempty,max=26"`
}

// Validate checks r for account and returns the request to forward to
// Connector. The first failing attribute is reported.
func (r CreateRequest) Validate(account domain.Account) (domain.ChargeRequest, error) {
	if err := validation.Validate.Struct(r); err != nil {
		fields, ok := validation.FieldErrors(err)
		if !ok || len(fields) == 0 {
			return domain.ChargeRequest{}, apierror.Internal()
		}
		fe := fields[0]
		if validation.IsMissing(fe) {
			return domain.ChargeRequest{}, apierror.MissingAttribute(validation.Field(fe))
		}
		return domain.ChargeRequest{}, apierror.InvalidAttribute(validation.Field(fe), validation.Describe(fe))
	}

	mode := domain.AuthorisationMode(r.AuthorisationMode)
	if mode == "" {
		mode = domain.AuthorisationModeWeb
	}

	switch mode {
	case domain.AuthorisationModeWeb:
		if r.ReturnURL == "" {
			return domain.ChargeRequest{}, apierror.MissingAttribute("return_url")
		}
	case domain.AuthorisationModeAgreement:
		if r.AgreementID == "" {
			return domain.ChargeRequest{}, apierror.MissingAttribute("agreement_id")
		}
	}

	if mode != domain.AuthorisationModeAgreement && r.AgreementID != "" {
		return domain.ChargeRequest{}, apierror.InvalidAttribute("agreement_id",
			"Must only be provided when authorisation_mode is agreement")
	}
	if mode == domain.AuthorisationModeAgreement && r.SetUpAgreement != "" {
		return domain.ChargeRequest{}, apierror.InvalidAttribute("set_up_agreement",
			"Must not be provided when authorisation_mode is agreement")
	}

	if (mode == domain.AuthorisationModeAgreement || r.SetUpAgreement != "") && !account.CanUseAgreements() {
		return domain.ChargeRequest{}, apierror.RecurringNotEnabled()
	}

	req := domain.ChargeRequest{
		Amount:                     *r.Amount,
		Reference:                  r.Reference,
		Description:                r.Description,
		ReturnURL:                  r.ReturnURL,
		Language:                   r.Language,
		Email:                      r.Email,
		DelayedCapture:             r.DelayedCapture,
		Moto:                       r.Moto,
		Metadata:                   r.Metadata,
		PrefilledCardholderDetails: r.PrefilledCardholderDetails,
		AuthorisationMode:          mode,
		AgreementID:                r.AgreementID,
	}
	if r.SetUpAgreement != "" {
		req.AgreementID = r.SetUpAgreement
		req.SavePaymentInstrument = true
	}
	if req.Language == "" {
		req.Language = "en"
	}

	return req, nil
}

// ChargeCreator creates charges in Connector.
type ChargeCreator interface {
	CreateCharge(ctx context.Context, accountID string, req domain.ChargeRequest, idempotencyKey string) (domain.Payment, bool, error)
}

// Coordinator creates payments under an optional idempotency key.
// Deduplication is Connector's: the gateway keeps no record of keys, so
// replays from different gateway instances resolve to the same payment.
type Coordinator struct {
	connector ChargeCreator
	assembler Assembler
	logger    *slog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(connector ChargeCreator, assembler Assembler, logger *slog.Logger) *Coordinator {
	return &Coordinator{connector: connector, assembler: assembler, logger: logger}
}

// CreateOrReuse forwards req with key. created is false when Connector
// replayed the payment originally created under key. Reusing key with a
// different body yields an IdempotencyKeyReused error.
func (c *Coordinator) CreateOrReuse(ctx context.Context, account domain.Account, req domain.ChargeRequest, key string) (Canonical, bool, error) {
	if len(key) > MaxIdempotencyKeyLength {
		return Canonical{}, false, apierror.InvalidAttribute("Idempotency-Key", "Must be less than or equal to 255 characters length")
	}

	p, created, err := c.connector.CreateCharge(ctx, account.ID, req, key)
	if err != nil {
		perr := apierror.FromError(apierror.OpCreatePayment, err)
		c.logger.Warn("payment creation failed",
			"account_id", account.ID,
			"code", perr.Code,
			"error", err,
		)
		return Canonical{}, false, perr
	}

	if created {
		c.logger.Info("payment created", "account_id", account.ID, "payment_id", p.ID)
	} else {
		c.logger.Info("payment replayed for idempotency key", "account_id", account.ID, "payment_id", p.ID)
	}

	return c.assembler.Assemble(p), created, nil
}
