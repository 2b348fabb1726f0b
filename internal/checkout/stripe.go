package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeFinder implements SessionFinder against the Stripe API.
type StripeFinder struct {
	client  *client.API
	timeout time.Duration
}

func NewStripeFinder(secretKey string, timeout time.Duration) *StripeFinder {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeFinder{client: sc, timeout: timeout}
}

// FindSessionByPaymentIntent lists checkout sessions filtered by payment
// intent with limit 1. An empty result is ErrNoMatchingSession, never an
// index fault.
func (f *StripeFinder) FindSessionByPaymentIntent(ctx context.Context, paymentIntentID string) (*CheckoutRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Limit = stripe.Int64(1)
	params.Context = ctx

	iter := f.client.CheckoutSessions.List(params)
	for iter.Next() {
		return recordFromSession(iter.CheckoutSession()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, mapStripeError("list checkout sessions", err)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoMatchingSession, paymentIntentID)
}

// ListLineItems fetches the ordered line items of a session. Only the first
// page is read; see DESIGN.md on pagination.
func (f *StripeFinder) ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx

	var items []LineItem
	iter := f.client.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		item := LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			TotalMinor:  li.AmountTotal,
		}
		if li.Price != nil {
			item.UnitAmountMinor = li.Price.UnitAmount
		}
		items = append(items, item)
	}
	if err := iter.Err(); err != nil {
		return nil, mapStripeError("list line items", err)
	}
	return items, nil
}

func recordFromSession(s *stripe.CheckoutSession) *CheckoutRecord {
	rec := &CheckoutRecord{
		SessionID:     s.ID,
		Currency:      string(s.Currency),
		SubtotalMinor: s.AmountSubtotal,
		TotalMinor:    s.AmountTotal,
	}
	if s.CustomerDetails != nil {
		rec.CustomerName = s.CustomerDetails.Name
		rec.CustomerEmail = s.CustomerDetails.Email
	}
	if s.ShippingCost != nil {
		rec.ShippingMinor = s.ShippingCost.AmountTotal
	}
	return rec
}

// mapStripeError keeps stripe-go types out of callers.
func mapStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s: payments provider unavailable: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
