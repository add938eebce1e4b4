// Package api holds the public HTTP endpoints.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paygateway/internal/agreement"
	"paygateway/internal/apierror"
	"paygateway/internal/common/api"
	"paygateway/internal/common/middleware"
	"paygateway/internal/dispute"
	"paygateway/internal/domain"
	"paygateway/internal/payment"
	"paygateway/internal/refund"
	"paygateway/internal/search"
)

// PaymentService is the payment operations the endpoints expose.
type PaymentService interface {
	Get(ctx context.Context, account domain.Account, id string) (payment.Canonical, error)
	Create(ctx context.Context, account domain.Account, req payment.CreateRequest, idempotencyKey string) (payment.Canonical, bool, error)
	Cancel(ctx context.Context, account domain.Account, id string) error
	Capture(ctx context.Context, account domain.Account, id string) error
	Events(ctx context.Context, account domain.Account, id string) (payment.EventsView, error)
}

// RefundService is the refund operations the endpoints expose.
type RefundService interface {
	Get(ctx context.Context, account domain.Account, paymentID, refundID string) (refund.View, error)
	List(ctx context.Context, account domain.Account, paymentID string) (refund.ListView, error)
	Create(ctx context.Context, account domain.Account, paymentID string, req refund.CreateRequest) (refund.View, error)
}

// AgreementService is the agreement operations the endpoints expose.
type AgreementService interface {
	Get(ctx context.Context, account domain.Account, id string) (agreement.View, error)
	Cancel(ctx context.Context, account domain.Account, id string) error
}

// Searcher runs collection searches.
type Searcher interface {
	SearchPayments(ctx context.Context, account domain.Account, q search.Query) (search.Results[payment.Canonical], error)
	SearchRefunds(ctx context.Context, account domain.Account, q search.Query) (search.Results[refund.View], error)
	SearchAgreements(ctx context.Context, account domain.Account, q search.Query) (search.Results[agreement.View], error)
	SearchDisputes(ctx context.Context, account domain.Account, q search.Query) (search.Results[dispute.View], error)
}

// Handler handles public API requests
type Handler struct {
	payments   PaymentService
	refunds    RefundService
	agreements AgreementService
	search     Searcher
	logger     *slog.Logger
}

// NewHandler creates a new public API handler
func NewHandler(payments PaymentService, refunds RefundService, agreements AgreementService, searcher Searcher, logger *slog.Logger) *Handler {
	return &Handler{
		payments:   payments,
		refunds:    refunds,
		agreements: agreements,
		search:     searcher,
		logger:     logger,
	}
}

// Routes returns the /v1 routes. Callers must already be authenticated.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.CreatePayment)
		r.Get("/", h.SearchPayments)
		r.Get("/{paymentID}", h.GetPayment)
		r.Get("/{paymentID}/events", h.GetPaymentEvents)
		r.Post("/{paymentID}/cancel", h.CancelPayment)
		r.Post("/{paymentID}/capture", h.CapturePayment)
		r.Get("/{paymentID}/refunds", h.ListRefunds)
		r.Post("/{paymentID}/refunds", h.CreateRefund)
		r.Get("/{paymentID}/refunds/{refundID}", h.GetRefund)
	})

	r.Get("/refunds", h.SearchRefunds)

	r.Route("/agreements", func(r chi.Router) {
		r.Get("/", h.SearchAgreements)
		r.Get("/{agreementID}", h.GetAgreement)
		r.Post("/{agreementID}/cancel", h.CancelAgreement)
	})

	r.Get("/disputes", h.SearchDisputes)

	return r
}

// account returns the authenticated caller. BearerAuth guarantees one is
// present; its absence is a wiring bug.
func (h *Handler) account(w http.ResponseWriter, r *http.Request) (domain.Account, bool) {
	a, ok := middleware.GetAccount(r.Context())
	if !ok {
		h.logger.Error("request reached handler without an account", "path", r.URL.Path)
		api.WriteError(w, apierror.Unauthorized())
	}
	return a, ok
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := apierror.As(err); ok {
		if e.HTTPStatus >= http.StatusInternalServerError {
			h.logger.Error("request failed",
				"code", e.Code,
				"kind", e.Kind,
				"path", r.URL.Path,
				"correlation_id", middleware.GetCorrelationID(r.Context()),
			)
		}
		api.WriteError(w, e)
		return
	}
	h.logger.Error("unexpected error",
		"error", err,
		"path", r.URL.Path,
		"correlation_id", middleware.GetCorrelationID(r.Context()),
	)
	api.Fail(w, err)
}

// CreatePayment handles POST /payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	var req payment.CreateRequest
	if err := api.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	p, created, err := h.payments.Create(r.Context(), account, req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", p.Links.Self.Href)
	}
	api.WriteJSON(w, status, p)
}

// SearchPayments handles GET /payments
func (h *Handler) SearchPayments(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	results, err := h.search.SearchPayments(r.Context(), account, search.ParseQuery(r.URL.RawQuery))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, results)
}

// GetPayment handles GET /payments/{paymentID}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	p, err := h.payments.Get(r.Context(), account, chi.URLParam(r, "paymentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, p)
}

// GetPaymentEvents handles GET /payments/{paymentID}/events
func (h *Handler) GetPaymentEvents(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	events, err := h.payments.Events(r.Context(), account, chi.URLParam(r, "paymentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, events)
}

// CancelPayment handles POST /payments/{paymentID}/cancel
func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	if err := h.payments.Cancel(r.Context(), account, chi.URLParam(r, "paymentID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CapturePayment handles POST /payments/{paymentID}/capture
func (h *Handler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	if err := h.payments.Capture(r.Context(), account, chi.URLParam(r, "paymentID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRefunds handles GET /payments/{paymentID}/refunds
func (h *Handler) ListRefunds(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	refunds, err := h.refunds.List(r.Context(), account, chi.URLParam(r, "paymentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, refunds)
}

// CreateRefund handles POST /payments/{paymentID}/refunds
func (h *Handler) CreateRefund(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	var req refund.CreateRequest
	if err := api.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.refunds.Create(r.Context(), account, chi.URLParam(r, "paymentID"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", created.Links.Self.Href)
	api.WriteJSON(w, http.StatusAccepted, created)
}

// GetRefund handles GET /payments/{paymentID}/refunds/{refundID}
func (h *Handler) GetRefund(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	ref, err := h.refunds.Get(r.Context(), account, chi.URLParam(r, "paymentID"), chi.URLParam(r, "refundID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, ref)
}

// SearchRefunds handles GET /refunds
func (h *Handler) SearchRefunds(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	results, err := h.search.SearchRefunds(r.Context(), account, search.ParseQuery(r.URL.RawQuery))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, results)
}

// SearchAgreements handles GET /agreements
func (h *Handler) SearchAgreements(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	results, err := h.search.SearchAgreements(r.Context(), account, search.ParseQuery(r.URL.RawQuery))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, results)
}

// GetAgreement handles GET /agreements/{agreementID}
func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	ag, err := h.agreements.Get(r.Context(), account, chi.URLParam(r, "agreementID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, ag)
}

// CancelAgreement handles POST /agreements/{agreementID}/cancel
func (h *Handler) CancelAgreement(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	if err := h.agreements.Cancel(r.Context(), account, chi.URLParam(r, "agreementID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchDisputes handles GET /disputes
func (h *Handler) SearchDisputes(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}

	results, err := h.search.SearchDisputes(r.Context(), account, search.ParseQuery(r.URL.RawQuery))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, results)
}
