package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robotson/iyb-printful-webhook/internal/checkout"
	"github.com/robotson/iyb-printful-webhook/internal/mailer"
	"github.com/robotson/iyb-printful-webhook/internal/webhook"
)

// --- fakes ---

type fakeFinder struct {
	record *checkout.CheckoutRecord
	items  []checkout.LineItem

	findErr error
	listErr error

	findCalls []string
	listCalls []string
}

func (f *fakeFinder) FindSessionByPaymentIntent(ctx context.Context, paymentIntentID string) (*checkout.CheckoutRecord, error) {
	f.findCalls = append(f.findCalls, paymentIntentID)
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.record, nil
}

func (f *fakeFinder) ListLineItems(ctx context.Context, sessionID string) ([]checkout.LineItem, error) {
	f.listCalls = append(f.listCalls, sessionID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

// fakeSender records sends and can fail selectively by subject. It is
// mutex-guarded because the shipped flow sends concurrently.
type fakeSender struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]error
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) (*mailer.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[msg.Subject]; ok {
		return nil, err
	}
	f.sent = append(f.sent, msg)
	return &mailer.SendResult{Messages: []mailer.MessageResult{{Status: "success"}}}, nil
}

func (f *fakeSender) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

func newTestService(finder *fakeFinder, sender *fakeSender) *Service {
	builder := &mailer.Builder{
		AdminEmail: "admin@webstore.test",
		AdminName:  "webstore",
		Loc:        time.UTC,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(finder, sender, builder, logger)
}

// --- tests ---

func TestOrderCreated(t *testing.T) {
	finder := &fakeFinder{
		record: &checkout.CheckoutRecord{
			SessionID:     "cs_test_1",
			CustomerName:  "Ada Lovelace",
			CustomerEmail: "ada@example.com",
			Currency:      "usd",
			SubtotalMinor: 5000,
			ShippingMinor: 500,
			TotalMinor:    5500,
		},
		items: []checkout.LineItem{
			{Description: "Widget", Quantity: 2, UnitAmountMinor: 2000, TotalMinor: 4000},
		},
	}
	sender := &fakeSender{}
	svc := newTestService(finder, sender)

	evt, err := webhook.Parse([]byte(`{"type":"order_created","data":{"order":{"external_id":"pi_123"}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := svc.OrderCreated(context.Background(), evt); err != nil {
		t.Fatalf("OrderCreated: %v", err)
	}

	if len(finder.findCalls) != 1 || finder.findCalls[0] != "pi_123" {
		t.Errorf("find calls = %v, want [pi_123]", finder.findCalls)
	}
	if len(finder.listCalls) != 1 || finder.listCalls[0] != "cs_test_1" {
		t.Errorf("list calls = %v, want [cs_test_1]", finder.listCalls)
	}

	sent := sender.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want exactly 1", len(sent))
	}
	msg := sent[0]
	if msg.To[0].Email != "ada@example.com" {
		t.Errorf("to = %+v", msg.To)
	}
	if msg.CustomID == "" {
		t.Error("delivery id not set")
	}
	for _, want := range []string{"Item subtotal: $40.00", "Subtotal: $50.00", "Shipping: $5.00", "Total: $55.00"} {
		if !strings.Contains(msg.TextPart, want) {
			t.Errorf("body missing %q:\n%s", want, msg.TextPart)
		}
	}
}

func TestOrderCreatedNoMatchingSession(t *testing.T) {
	finder := &fakeFinder{findErr: checkout.ErrNoMatchingSession}
	sender := &fakeSender{}
	svc := newTestService(finder, sender)

	evt, _ := webhook.Parse([]byte(`{"type":"order_created","data":{"order":{"external_id":"pi_missing"}}}`))
	err := svc.OrderCreated(context.Background(), evt)
	if !errors.Is(err, checkout.ErrNoMatchingSession) {
		t.Fatalf("err = %v, want ErrNoMatchingSession", err)
	}
	if len(sender.messages()) != 0 {
		t.Errorf("no email must be sent on lookup failure, got %d", len(sender.messages()))
	}
}

func TestOrderCreatedMissingExternalID(t *testing.T) {
	svc := newTestService(&fakeFinder{}, &fakeSender{})
	evt, _ := webhook.Parse([]byte(`{"type":"order_created","data":{}}`))
	if err := svc.OrderCreated(context.Background(), evt); err == nil {
		t.Fatal("want error for missing external_id")
	}
}

func TestOrderCreatedSendFailureIsSwallowed(t *testing.T) {
	finder := &fakeFinder{record: &checkout.CheckoutRecord{SessionID: "cs_1"}}
	sender := &fakeSender{failFor: map[string]error{
		"Your order has been received": mailer.ErrSendRejected,
	}}
	svc := newTestService(finder, sender)

	evt, _ := webhook.Parse([]byte(`{"type":"order_created","data":{"order":{"external_id":"pi_123"}}}`))
	if err := svc.OrderCreated(context.Background(), evt); err != nil {
		t.Fatalf("delivery failure must not surface, got %v", err)
	}
}

func TestPackageShippedSendsAuditAndNotice(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(&fakeFinder{}, sender)

	body := `{"type":"package_shipped","data":{"order":{"recipient":{"name":"Ada Lovelace","email":"ada@example.com"}},"shipment":{"tracking_number":"1Z999","carrier":"UPS","service":"Ground"}}}`
	evt, err := webhook.Parse([]byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := svc.PackageShipped(context.Background(), evt); err != nil {
		t.Fatalf("PackageShipped: %v", err)
	}

	sent := sender.messages()
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want 2 (audit + notice)", len(sent))
	}

	var audit, notice *mailer.Message
	for i := range sent {
		switch sent[i].Subject {
		case "An order has shipped":
			audit = &sent[i]
		case "Your order has shipped!":
			notice = &sent[i]
		}
	}
	if audit == nil || notice == nil {
		t.Fatalf("missing audit or notice: %+v", sent)
	}
	if !strings.Contains(audit.TextPart, `"tracking_number": "1Z999"`) {
		t.Errorf("audit body missing raw payload:\n%s", audit.TextPart)
	}
	for _, want := range []string{"1Z999", "UPS", "Ground"} {
		if !strings.Contains(notice.TextPart, want) {
			t.Errorf("notice body missing %q:\n%s", want, notice.TextPart)
		}
	}
	if strings.Contains(notice.TextPart, "Estimated delivery") {
		t.Errorf("notice should omit delivery date line:\n%s", notice.TextPart)
	}
}

func TestPackageShippedAuditSentWhenNoticeFails(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"Your order has shipped!": mailer.ErrSendRejected,
	}}
	svc := newTestService(&fakeFinder{}, sender)

	evt, _ := webhook.Parse([]byte(`{"type":"package_shipped","data":{"shipment":{"tracking_number":"1Z999"}}}`))
	if err := svc.PackageShipped(context.Background(), evt); err != nil {
		t.Fatalf("send failures must not surface, got %v", err)
	}

	sent := sender.messages()
	if len(sent) != 1 || sent[0].Subject != "An order has shipped" {
		t.Fatalf("audit must still be attempted exactly once, sent = %+v", sent)
	}
}

func TestPackageShippedNoticeSentWhenAuditFails(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"An order has shipped": mailer.ErrSendRejected,
	}}
	svc := newTestService(&fakeFinder{}, sender)

	evt, _ := webhook.Parse([]byte(`{"type":"package_shipped","data":{"shipment":{"tracking_number":"1Z999"}}}`))
	if err := svc.PackageShipped(context.Background(), evt); err != nil {
		t.Fatalf("send failures must not surface, got %v", err)
	}

	sent := sender.messages()
	if len(sent) != 1 || sent[0].Subject != "Your order has shipped!" {
		t.Fatalf("notice must still be sent when audit fails, sent = %+v", sent)
	}
}
