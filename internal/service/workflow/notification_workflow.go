package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/okosten/hallbook/internal/mailer"
	"github.com/okosten/hallbook/internal/model"
	"github.com/okosten/hallbook/internal/mq"
	"github.com/okosten/hallbook/internal/repository"
	"github.com/okosten/hallbook/internal/retry"
	"github.com/okosten/hallbook/internal/service/domain"
)

// NotificationWorkflow drains the confirmation-email queue. A failed send is
// parked in the retry delay queue with a growing backoff; after the attempt
// budget is spent the job is dropped and logged.
type NotificationWorkflow struct {
	BookingService domain.BookingService
	RowRepo        repository.SeatRowRepo
	Sender         mailer.Sender
	Logger         *zap.Logger

	Policy retry.Policy
}

func NewNotificationWorkflow(bookingService domain.BookingService, rowRepo repository.SeatRowRepo, sender mailer.Sender, logger *zap.Logger) *NotificationWorkflow {
	return &NotificationWorkflow{
		BookingService: bookingService,
		RowRepo:        rowRepo,
		Sender:         sender,
		Logger:         logger,
		Policy:         retry.DefaultNotify,
	}
}

func (w *NotificationWorkflow) Start(mqConn *amqp.Connection) error {
	ch, err := mq.NewChannel(mqConn)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(mq.BookingNotifyQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			w.handleNotification(ch, msg)
		}
	}()

	return nil
}

func (w *NotificationWorkflow) handleNotification(ch *amqp.Channel, msg amqp.Delivery) {
	var message mq.NotificationMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		w.Logger.Error("bad notification payload", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	ctx := context.Background()
	booking, err := w.BookingService.Get(ctx, message.BookingID)
	if err != nil {
		if model.IsNotFound(err) {
			// booking deleted before the job ran, nothing to confirm
			msg.Ack(false)
			return
		}
		w.Logger.Error("failed to load booking for notification",
			zap.Uint("booking_id", message.BookingID), zap.Error(err))
		msg.Nack(false, true)
		return
	}

	result := w.Sender.SendConfirmation(booking.User.Email, booking.User.Name,
		seatLabels(ctx, w.RowRepo, booking))
	if result.Success {
		msg.Ack(false)
		return
	}

	if message.Attempt >= w.Policy.MaxAttempts {
		w.Logger.Warn("confirmation email given up",
			zap.Uint("booking_id", booking.ID),
			zap.Int("attempts", message.Attempt),
			zap.String("detail", result.Detail))
		msg.Ack(false)
		return
	}

	delay := w.Policy.Backoff(message.Attempt)
	err = mq.SendDelayedMessage(ch, mq.BookingNotifyRetryQueue, mq.NotificationMessage{
		BookingID: message.BookingID,
		Attempt:   message.Attempt + 1,
	}, delay)
	if err != nil {
		w.Logger.Error("failed to park notification for retry",
			zap.Uint("booking_id", booking.ID), zap.Error(err))
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}

// seatLabels renders a booking's seats for the confirmation email, resolving
// row names where the rows still exist.
func seatLabels(ctx context.Context, rowRepo repository.SeatRowRepo, booking *model.Booking) []string {
	names := make(map[uint]string)
	labels := make([]string, 0, len(booking.Assignments))
	for _, a := range booking.Assignments {
		name, ok := names[a.SeatRowID]
		if !ok {
			if row, err := rowRepo.GetByID(ctx, a.SeatRowID); err == nil {
				name = row.Name
			}
			names[a.SeatRowID] = name
		}
		if name == "" {
			labels = append(labels, fmt.Sprintf("row #%d seat %d", a.SeatRowID, a.SeatNumber))
			continue
		}
		labels = append(labels, fmt.Sprintf("row %s seat %d", name, a.SeatNumber))
	}
	return labels
}
