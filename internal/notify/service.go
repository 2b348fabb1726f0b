// Package notify orchestrates the two webhook flows: order confirmations
// cross-referenced against the payments provider, and shipment
// notifications with their admin audit copy.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/robotson/iyb-printful-webhook/internal/checkout"
	"github.com/robotson/iyb-printful-webhook/internal/mailer"
	"github.com/robotson/iyb-printful-webhook/internal/metrics"
	"github.com/robotson/iyb-printful-webhook/internal/webhook"
)

type Service struct {
	finder  checkout.SessionFinder
	sender  mailer.Sender
	builder *mailer.Builder
	logger  *slog.Logger
}

func NewService(finder checkout.SessionFinder, sender mailer.Sender, builder *mailer.Builder, logger *slog.Logger) *Service {
	return &Service{
		finder:  finder,
		sender:  sender,
		builder: builder,
		logger:  logger,
	}
}

// OrderCreated resolves the event's external id against the payments
// provider and sends the customer an order confirmation. The chain is
// strictly sequential: session lookup, line items, render, send. A lookup
// failure is returned to the caller; a delivery failure is logged and
// swallowed, matching the upstream interface.
func (s *Service) OrderCreated(ctx context.Context, evt *webhook.Event) error {
	if evt.Data.Order == nil || evt.Data.Order.ExternalID == "" {
		return fmt.Errorf("order_created event has no external_id")
	}
	paymentIntentID := evt.Data.Order.ExternalID

	record, err := s.finder.FindSessionByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		s.logger.Error("checkout session lookup failed", "payment_intent", paymentIntentID, "err", err)
		return fmt.Errorf("find session: %w", err)
	}

	items, err := s.finder.ListLineItems(ctx, record.SessionID)
	if err != nil {
		s.logger.Error("line items lookup failed", "payment_intent", paymentIntentID, "session_id", record.SessionID, "err", err)
		return fmt.Errorf("list line items: %w", err)
	}

	msg := s.builder.OrderConfirmation(record, items)
	s.send(ctx, "order_confirmation", msg)
	return nil
}

// PackageShipped sends the raw-payload audit copy to the admin and the
// tracking notice to the customer. The two sends have no data dependency;
// they run concurrently and a failure of either never blocks the other.
// The audit copy is attempted exactly once per event.
func (s *Service) PackageShipped(ctx context.Context, evt *webhook.Event) error {
	audit := s.builder.ShipmentAudit(evt.Raw)

	shipment := mailer.Shipment{}
	if evt.Data.Order != nil {
		shipment.CustomerName = evt.Data.Order.Recipient.Name
		shipment.CustomerEmail = evt.Data.Order.Recipient.Email
	}
	if evt.Data.Shipment != nil {
		shipment.TrackingNumber = evt.Data.Shipment.TrackingNumber
		shipment.Carrier = evt.Data.Shipment.Carrier
		shipment.Service = evt.Data.Shipment.Service
		if w := evt.Data.Shipment.EstimatedDates; w != nil {
			shipment.Window = &mailer.DeliveryWindow{From: w.From, To: w.To}
		}
	}
	notice := s.builder.ShipmentNotice(shipment)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.send(ctx, "shipment_audit", audit)
	}()
	go func() {
		defer wg.Done()
		s.send(ctx, "shipment_notice", notice)
	}()
	wg.Wait()
	return nil
}

// send delivers one message, tagging it with a delivery id for log
// correlation. Delivery failures are terminal for the message but never for
// the request.
func (s *Service) send(ctx context.Context, kind string, msg mailer.Message) {
	deliveryID := uuid.NewString()
	msg.CustomID = deliveryID

	result, err := s.sender.Send(ctx, msg)
	if err != nil {
		metrics.EmailSendsTotal.WithLabelValues(kind, "failure").Inc()
		s.logger.Error("email send failed", "kind", kind, "delivery_id", deliveryID, "err", err)
		return
	}

	metrics.EmailSendsTotal.WithLabelValues(kind, "success").Inc()
	status := ""
	if len(result.Messages) > 0 {
		status = result.Messages[0].Status
	}
	s.logger.Info("email sent", "kind", kind, "delivery_id", deliveryID, "status", status)
}
