package payment

import (
	"net/http"

	"paygateway/internal/domain"
	"paygateway/internal/uris"
)

// Link is one hypermedia relation in a response.
type Link struct {
	Href   string            `json:"href"`
	Method string            `json:"method"`
	Type   string            `json:"type,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// Links is the _links object of a payment. Field order is the order the
// relations are serialized in. Absent relations are omitted.
type Links struct {
	Self        *Link `json:"self"`
	NextURL     *Link `json:"next_url,omitempty"`
	NextURLPost *Link `json:"next_url_post,omitempty"`
	AuthURLPost *Link `json:"auth_url_post,omitempty"`
	Events      *Link `json:"events,omitempty"`
	Refunds     *Link `json:"refunds,omitempty"`
	Cancel      *Link `json:"cancel,omitempty"`
	Capture     *Link `json:"capture,omitempty"`
}

// Relations lists the present relation names in serialization order.
func (l Links) Relations() []string {
	var rels []string
	for _, r := range []struct {
		name string
		link *Link
	}{
		{"self", l.Self},
		{"next_url", l.NextURL},
		{"next_url_post", l.NextURLPost},
		{"auth_url_post", l.AuthURLPost},
		{"events", l.Events},
		{"refunds", l.Refunds},
		{"cancel", l.Cancel},
		{"capture", l.Capture},
	} {
		if r.link != nil {
			rels = append(rels, r.name)
		}
	}
	return rels
}

// LinkBuilder decides which relations a payment advertises.
type LinkBuilder struct {
	uris uris.Public
}

// NewLinkBuilder creates a LinkBuilder that advertises URLs under public.
func NewLinkBuilder(public uris.Public) LinkBuilder {
	return LinkBuilder{uris: public}
}

// Build returns the links for p. It panics if p carries a payment type
// outside the closed set.
func (b LinkBuilder) Build(p domain.Payment) Links {
	links := Links{
		Self: &Link{Href: b.uris.Payment(p.ID), Method: http.MethodGet},
	}

	switch p.Type.(type) {
	case domain.Card:
		links.Events = &Link{Href: b.uris.PaymentEvents(p.ID), Method: http.MethodGet}
		links.Refunds = &Link{Href: b.uris.PaymentRefunds(p.ID), Method: http.MethodGet}
		if !p.State.Finished {
			links.Cancel = &Link{Href: b.uris.PaymentCancel(p.ID), Method: http.MethodPost}
		}
	case domain.DirectDebit:
	default:
		panic(domain.UnknownPaymentTypeError(p.Type))
	}

	if p.Actions.Capture != nil {
		links.Capture = &Link{Href: b.uris.PaymentCapture(p.ID), Method: http.MethodPost}
	}

	switch p.AuthorisationMode {
	case domain.AuthorisationModeWeb:
		if a := p.Actions.NextURL; a != nil {
			links.NextURL = &Link{Href: a.Href, Method: http.MethodGet}
		}
		if a := p.Actions.NextURLPost; a != nil {
			links.NextURLPost = &Link{
				Href:   a.Href,
				Method: http.MethodPost,
				Type:   a.Type,
				Params: copyParams(a.Params),
			}
		}
	case domain.AuthorisationModeMotoAPI:
		if token := p.Actions.OneTimeToken; token != "" {
			links.AuthURLPost = &Link{
				Href:   b.uris.Auth(),
				Method: http.MethodPost,
				Type:   "application/json",
				Params: map[string]string{"one_time_token": token},
			}
		}
	}

	return links
}

func copyParams(params map[string]string) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
