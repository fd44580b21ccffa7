package email

import (
	"context"

	"github.com/avdonin/shareit/internal/kafka"
	"github.com/avdonin/shareit/internal/logger"
)

// Sender dispatches booking notifications. Delivery is a log line for now;
// TODO: plug in SMTP once an outbound relay is provisioned.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send notifies the counterparty of the event: the owner learns about new
// bookings, the booker learns about decisions.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	recipient := event.BookerEmail
	if event.Type == kafka.EventBookingCreated {
		recipient = event.OwnerEmail
	}
	logger.Info("sending booking notification", map[string]any{
		"recipient":  recipient,
		"type":       event.Type,
		"booking_id": event.BookingID,
		"item":       event.ItemName,
	})
	return nil
}
