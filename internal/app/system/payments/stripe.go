// internal/app/system/payments/stripe.go
package payments

import (
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
)

// Currency for event tickets; prices are stored in rupees and converted to
// paise for the processor.
const Currency = "inr"

var ErrNotConfigured = errors.New("payments are not configured")

// Client wraps Stripe Checkout for paid event tickets. With an empty API
// key all calls fail with ErrNotConfigured, which the handlers surface as
// an invalid-state error.
type Client struct {
	configured bool
	successURL string
	cancelURL  string
}

// New configures the package-level Stripe key. successURL receives the
// {CHECKOUT_SESSION_ID} placeholder so the confirmation page can verify.
func New(apiKey, successURL, cancelURL string) *Client {
	if apiKey != "" {
		stripe.Key = apiKey
	}
	return &Client{
		configured: apiKey != "",
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CheckoutInput names the purchase a session is created for.
type CheckoutInput struct {
	UserID    string
	EventID   string
	TicketID  string
	EventName string
	Price     float64 // rupees
	UserEmail string
}

// CreateCheckoutSession opens a Stripe Checkout session for one ticket and
// returns its ID and redirect URL. The ticket/user/event identifiers ride
// along as metadata for verification on return.
func (c *Client) CreateCheckoutSession(in CheckoutInput) (sessionID, url string, err error) {
	if !c.configured {
		return "", "", ErrNotConfigured
	}
	amount := int64(math.Round(in.Price * 100))
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(in.UserEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(Currency),
				UnitAmount: stripe.Int64(amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(in.EventName),
					Description: stripe.String(fmt.Sprintf("Event ticket for %s", in.EventName)),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(c.successURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(c.cancelURL),
	}
	params.AddMetadata("user_id", in.UserID)
	params.AddMetadata("event_id", in.EventID)
	params.AddMetadata("ticket_id", in.TicketID)

	s, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return s.ID, s.URL, nil
}

// SessionResult is what ticket verification needs from a completed session.
type SessionResult struct {
	Paid     bool
	UserID   string
	EventID  string
	TicketID string
}

// RetrieveSession fetches a checkout session and reports whether payment
// completed, along with the metadata stamped at creation.
func (c *Client) RetrieveSession(sessionID string) (SessionResult, error) {
	if !c.configured {
		return SessionResult{}, ErrNotConfigured
	}
	s, err := session.Get(sessionID, nil)
	if err != nil {
		return SessionResult{}, err
	}
	return SessionResult{
		Paid:     s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		UserID:   s.Metadata["user_id"],
		EventID:  s.Metadata["event_id"],
		TicketID: s.Metadata["ticket_id"],
	}, nil
}
