package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	TypeOrderCreated   = "order_created"
	TypePackageShipped = "package_shipped"
)

var (
	ErrBodyParse        = errors.New("webhook body is not valid JSON")
	ErrUnrecognizedType = errors.New("webhook type is missing or not recognized")
)

// Event is the inbound notification envelope pushed by the fulfillment
// provider. Raw keeps the undecoded body for the admin audit dump, since the
// payload shape varies by event type and is not fully known upfront.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`

	Raw json.RawMessage `json:"-"`
}

type EventData struct {
	Order    *OrderInfo    `json:"order"`
	Shipment *ShipmentInfo `json:"shipment"`
}

// OrderInfo carries the cross-reference to the payments provider:
// ExternalID is expected to be a payment-intent identifier.
type OrderInfo struct {
	ExternalID string    `json:"external_id"`
	Recipient  Recipient `json:"recipient"`
}

type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ShipmentInfo struct {
	TrackingNumber string      `json:"tracking_number"`
	Carrier        string      `json:"carrier"`
	Service        string      `json:"service"`
	EstimatedDates *DateWindow `json:"estimated_delivery_dates"`
}

// DateWindow is an estimated delivery range as Unix timestamps. The provider
// sends from <= to but that is not enforced here.
type DateWindow struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Parse decodes a webhook body exactly once. A decode failure is a distinct,
// named outcome (ErrBodyParse) because the caller answers it with the generic
// fallback response instead of a rejection.
func Parse(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBodyParse, err)
	}
	evt.Raw = append(json.RawMessage(nil), body...)
	return &evt, nil
}

// Classify checks the declared event type against the recognized set.
func Classify(evt *Event) (string, error) {
	switch evt.Type {
	case TypeOrderCreated, TypePackageShipped:
		return evt.Type, nil
	default:
		return "", ErrUnrecognizedType
	}
}
