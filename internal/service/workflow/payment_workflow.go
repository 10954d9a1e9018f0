package workflow

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/okosten/hallbook/internal/mailer"
	"github.com/okosten/hallbook/internal/model"
	"github.com/okosten/hallbook/internal/mq"
	"github.com/okosten/hallbook/internal/repository"
	"github.com/okosten/hallbook/internal/service/domain"
)

// PaymentWorkflow confirms payments. The flag flip is the primary operation;
// the confirmation email is queued behind it and must never fail it.
type PaymentWorkflow struct {
	BookingService domain.BookingService
	RowRepo        repository.SeatRowRepo
	Sender         mailer.Sender
	MQConn         *amqp.Connection
	Logger         *zap.Logger
}

func NewPaymentWorkflow(bookingService domain.BookingService, rowRepo repository.SeatRowRepo, sender mailer.Sender, mqConn *amqp.Connection, logger *zap.Logger) *PaymentWorkflow {
	return &PaymentWorkflow{
		BookingService: bookingService,
		RowRepo:        rowRepo,
		Sender:         sender,
		MQConn:         mqConn,
		Logger:         logger,
	}
}

func (w *PaymentWorkflow) SetPaid(ctx context.Context, bookingID uint, paid bool) (*model.Booking, error) {
	booking, transitioned, err := w.BookingService.SetPaid(ctx, bookingID, paid)
	if err != nil {
		return nil, err
	}
	if transitioned {
		w.notify(ctx, booking)
	}
	return booking, nil
}

// notify enqueues the confirmation job; when the broker is unreachable it
// degrades to a direct synchronous send.
func (w *PaymentWorkflow) notify(ctx context.Context, booking *model.Booking) {
	if w.MQConn != nil {
		ch, err := mq.NewChannel(w.MQConn)
		if err == nil {
			defer ch.Close()
			err = mq.SendImmediateMessage(ch, mq.BookingNotifyQueue, mq.NotificationMessage{
				BookingID: booking.ID,
				Attempt:   1,
			})
			if err == nil {
				return
			}
		}
		w.Logger.Warn("notification enqueue failed, sending directly",
			zap.Uint("booking_id", booking.ID), zap.Error(err))
	}

	result := w.Sender.SendConfirmation(booking.User.Email, booking.User.Name,
		seatLabels(ctx, w.RowRepo, booking))
	if !result.Success {
		w.Logger.Warn("confirmation email failed",
			zap.Uint("booking_id", booking.ID), zap.String("detail", result.Detail))
	}
}
