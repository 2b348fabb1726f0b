package checkout

import (
	"context"
	"errors"
)

var ErrNoMatchingSession = errors.New("no checkout session matches payment intent")

// CheckoutRecord is the read-only view of a completed purchase owned by the
// payments provider. Amounts are in minor currency units.
type CheckoutRecord struct {
	SessionID     string
	CustomerName  string
	CustomerEmail string
	Currency      string
	SubtotalMinor int64
	ShippingMinor int64
	TotalMinor    int64
}

// LineItem is one purchased product entry within a checkout session.
type LineItem struct {
	Description     string
	Quantity        int64
	UnitAmountMinor int64
	TotalMinor      int64
}

// SessionFinder is the query surface of the payments provider. Both calls are
// read-only and must respect the context deadline.
type SessionFinder interface {
	FindSessionByPaymentIntent(ctx context.Context, paymentIntentID string) (*CheckoutRecord, error)
	ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error)
}
