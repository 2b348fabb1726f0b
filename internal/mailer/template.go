package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/robotson/iyb-printful-webhook/internal/checkout"
)

// Shipment is the builder's view of a package_shipped event.
type Shipment struct {
	CustomerName   string
	CustomerEmail  string
	TrackingNumber string
	Carrier        string
	Service        string
	Window         *DeliveryWindow
}

// DeliveryWindow is an estimated delivery range as Unix timestamps.
type DeliveryWindow struct {
	From int64
	To   int64
}

// Builder renders provider-agnostic messages from checkout and shipment
// data. All methods are pure functions of the builder and their arguments.
type Builder struct {
	AdminEmail string
	AdminName  string

	// ShipToCustomer switches the shipment notice To field to the real
	// customer address. Defaults to false, which preserves the historical
	// behavior of addressing the notice to the admin with the customer's
	// display name.
	ShipToCustomer bool

	// Loc is the timezone used to render delivery date timestamps.
	// Rendering is local, not normalized to UTC.
	Loc *time.Location
}

// OrderConfirmation renders the customer-facing order receipt.
// To = customer, Bcc = admin.
func (b *Builder) OrderConfirmation(rec *checkout.CheckoutRecord, items []checkout.LineItem) Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", rec.CustomerName)
	sb.WriteString("Your order was received:\n\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "• %q (x%d) - %s each\n  Item subtotal: %s\n\n",
			item.Description,
			item.Quantity,
			formatMinor(item.UnitAmountMinor, rec.Currency),
			formatMinor(item.TotalMinor, rec.Currency),
		)
	}
	sb.WriteString("=====\n")
	fmt.Fprintf(&sb, "Subtotal: %s\n", formatMinor(rec.SubtotalMinor, rec.Currency))
	fmt.Fprintf(&sb, "Shipping: %s\n", formatMinor(rec.ShippingMinor, rec.Currency))
	fmt.Fprintf(&sb, "Total: %s\n\n", formatMinor(rec.TotalMinor, rec.Currency))
	sb.WriteString("Thanks for shopping with us!\n\n")
	sb.WriteString("You should receive another email when your order is ready.\n")
	fmt.Fprintf(&sb, "If you have any questions, please email %s\n\n", b.AdminEmail)
	sb.WriteString(b.signature())

	return Message{
		From:     Address{Email: b.AdminEmail, Name: b.AdminName},
		To:       []Address{{Email: rec.CustomerEmail, Name: rec.CustomerName}},
		Bcc:      []Address{{Email: b.AdminEmail, Name: b.AdminName}},
		Subject:  "Your order has been received",
		TextPart: sb.String(),
	}
}

// ShipmentNotice renders the tracking notification for a shipped package.
func (b *Builder) ShipmentNotice(s Shipment) Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", s.CustomerName)
	fmt.Fprintf(&sb, "You have an order shipping %s - via %s.\n\n", s.Service, s.Carrier)
	sb.WriteString("A tracking number has been created:\n\n")
	fmt.Fprintf(&sb, "%s\n\n", s.TrackingNumber)

	if s.Window != nil {
		toDate := formatDate(s.Window.To, b.location())
		fromDate := formatDate(s.Window.From, b.location())
		if toDate == fromDate {
			fmt.Fprintf(&sb, "Estimated delivery date: %s\n\n", toDate)
		} else {
			// The to-before-from ordering is the existing contract; do not
			// reorder without a deliberate decision.
			fmt.Fprintf(&sb, "Estimated delivery window: %s - %s\n\n", toDate, fromDate)
		}
	}

	sb.WriteString("=====\n")
	sb.WriteString("Thank you for shopping with us!\n")
	sb.WriteString("(Note: if you ordered multiple items that ship separately,\n")
	sb.WriteString("you may receive additional tracking number emails for each item)\n\n")
	fmt.Fprintf(&sb, "If you have any questions, please email: %s\n\n", b.AdminEmail)
	sb.WriteString(b.signature())

	to := Address{Email: b.AdminEmail, Name: s.CustomerName}
	if b.ShipToCustomer {
		to.Email = s.CustomerEmail
	}

	return Message{
		From:     Address{Email: b.AdminEmail, Name: b.AdminName},
		To:       []Address{to},
		Bcc:      []Address{{Email: b.AdminEmail, Name: b.AdminName}},
		Subject:  "Your order has shipped!",
		TextPart: sb.String(),
	}
}

// ShipmentAudit wraps the raw inbound event as a pretty-printed JSON dump
// addressed to the admin, for manual inspection of payload shapes we do not
// fully model yet.
func (b *Builder) ShipmentAudit(raw []byte) Message {
	var body bytes.Buffer
	if err := json.Indent(&body, raw, "", "  "); err != nil {
		body.Reset()
		body.Write(raw)
	}
	return Message{
		From:     Address{Email: b.AdminEmail, Name: b.AdminName + " dev log"},
		To:       []Address{{Email: b.AdminEmail, Name: b.AdminName}},
		Subject:  "An order has shipped",
		TextPart: body.String(),
	}
}

func (b *Builder) signature() string {
	return fmt.Sprintf("Best regards,\n- %s", b.AdminName)
}

func (b *Builder) location() *time.Location {
	if b.Loc != nil {
		return b.Loc
	}
	return time.Local
}

var groupedPrinter = message.NewPrinter(language.English)

var currencySymbols = map[string]string{
	"usd": "$",
	"cad": "$",
	"aud": "$",
	"eur": "€",
	"gbp": "£",
}

// formatMinor renders an integer minor-unit amount as a major-unit display
// string with digit grouping, e.g. 1234567 -> "$12,345.67".
func formatMinor(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	symbol, ok := currencySymbols[strings.ToLower(currency)]
	if !ok {
		symbol = "$"
	}
	major := groupedPrinter.Sprintf("%d", amount/100)
	return fmt.Sprintf("%s%s%s.%02d", sign, symbol, major, amount%100)
}

// formatDate renders a Unix timestamp as month/day/year without zero
// padding, in the given timezone.
func formatDate(unix int64, loc *time.Location) string {
	t := time.Unix(unix, 0).In(loc)
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
