package event

import (
	"context"
	"fmt"

	"github.com/Sathursan-S/Ticketer/contract"
	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Payment outcomes come from the payment service as plain JSON, so they are
// consumed with raw handlers instead of the event processor.

func (h Handler) PaymentSucceeded(msg *message.Message) error {
	p, err := contract.ParsePaymentSucceeded(msg.Payload)
	if err != nil {
		return err
	}

	log.FromContext(msg.Context()).WithFields(logrus.Fields{
		"booking_id":  p.BookingID,
		"customer_id": p.CustomerID,
		"amount":      p.Amount.String(),
		"currency":    p.Currency,
	}).Info("Payment succeeded")

	return h.recordPayment(msg.Context(), contract.TypePaymentSucceeded, p.BookingID, p.CustomerID,
		"Payment Succeeded",
		fmt.Sprintf("Payment of %s %s for booking %s succeeded (payment intent %s).", p.Amount.StringFixed(2), p.Currency, p.BookingID, p.PaymentIntentID),
	)
}

func (h Handler) PaymentFailed(msg *message.Message) error {
	p, err := contract.ParsePaymentFailed(msg.Payload)
	if err != nil {
		return err
	}

	log.FromContext(msg.Context()).WithFields(logrus.Fields{
		"booking_id":  p.BookingID,
		"customer_id": p.CustomerID,
		"reason":      p.Reason,
	}).Warn("Payment failed")

	return h.recordPayment(msg.Context(), contract.TypePaymentFailed, p.BookingID, p.CustomerID,
		"Payment Failed",
		fmt.Sprintf("Payment for booking %s failed: %s.", p.BookingID, p.Reason),
	)
}

func (h Handler) recordPayment(ctx context.Context, t contract.Type, bookingID, customerID, subject, body string) error {
	key := string(t) + ":" + bookingID

	inserted, err := h.notifications.Add(ctx, entity.NotificationRecord{
		ID:             uuid.NewString(),
		Recipient:      customerID,
		Subject:        subject,
		Body:           body,
		SentAt:         h.clock.Now(),
		CorrelationKey: &key,
		SourceID:       bookingID,
		DeliveryStatus: entity.DeliveryRecorded,
	})
	if err != nil {
		return fmt.Errorf("recording payment outcome: %w", err)
	}
	if !inserted {
		log.FromContext(ctx).WithField("booking_id", bookingID).Info("Payment outcome already recorded")
	}

	return nil
}
