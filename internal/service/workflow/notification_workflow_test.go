package workflow

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/okosten/hallbook/internal/mailer"
	"github.com/okosten/hallbook/internal/model"
	"github.com/okosten/hallbook/internal/mq"
	"github.com/okosten/hallbook/internal/repository"
	"github.com/okosten/hallbook/internal/service/domain"
)

type fakeBookingService struct {
	booking *model.Booking
	getErr  error

	transitioned bool
}

var _ domain.BookingService = (*fakeBookingService)(nil)

func (f *fakeBookingService) Create(ctx context.Context, in domain.CreateBookingInput) (*model.Booking, error) {
	return f.booking, nil
}

func (f *fakeBookingService) Get(ctx context.Context, id uint) (*model.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.booking, nil
}

func (f *fakeBookingService) List(ctx context.Context, page, pageSize int) ([]model.Booking, bool, error) {
	return nil, false, nil
}

func (f *fakeBookingService) Delete(ctx context.Context, id uint) (int, error) {
	return 0, nil
}

func (f *fakeBookingService) SetPaid(ctx context.Context, id uint, paid bool) (*model.Booking, bool, error) {
	return f.booking, f.transitioned, nil
}

func (f *fakeBookingService) UpdateReceipt(ctx context.Context, id uint, receipt domain.ReceiptPayload) (*model.Booking, error) {
	return f.booking, nil
}

type fakeRowRepo struct {
	rows map[uint]*model.SeatRow
}

var _ repository.SeatRowRepo = (*fakeRowRepo)(nil)

func (f *fakeRowRepo) WithTx(tx *gorm.DB) repository.SeatRowRepo { return f }

func (f *fakeRowRepo) Create(ctx context.Context, row *model.SeatRow) error { return nil }

func (f *fakeRowRepo) GetByID(ctx context.Context, id uint) (*model.SeatRow, error) {
	if row, ok := f.rows[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRowRepo) GetByName(ctx context.Context, name string) (*model.SeatRow, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRowRepo) List(ctx context.Context, category *model.RowCategory, includeHidden bool) ([]model.SeatRow, error) {
	return nil, nil
}

type fakeSender struct {
	success bool
	calls   int

	lastEmail string
	lastSeats []string
}

func (f *fakeSender) SendConfirmation(email, name string, seats []string) mailer.Result {
	f.calls++
	f.lastEmail = email
	f.lastSeats = seats
	if f.success {
		return mailer.Result{Success: true, Detail: "sent"}
	}
	return mailer.Result{Success: false, Detail: "smtp refused"}
}

type fakeAcker struct {
	acks    int
	nacks   int
	requeue bool
}

func (f *fakeAcker) Ack(tag uint64, multiple bool) error {
	f.acks++
	return nil
}

func (f *fakeAcker) Nack(tag uint64, multiple, requeue bool) error {
	f.nacks++
	f.requeue = requeue
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error { return nil }

func paidBooking() *model.Booking {
	return &model.Booking{
		ID:     5,
		UserID: 7,
		User:   model.User{ID: 7, Name: "Olga K", Email: "olga@example.com"},
		Paid:   true,
		Assignments: []model.SeatAssignment{
			{BookingID: 5, SeatRowID: 1, SeatNumber: 2, FirstName: "Olga", LastName: "K"},
		},
	}
}

func delivery(t *testing.T, acker *fakeAcker, message mq.NotificationMessage) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return amqp.Delivery{Acknowledger: acker, Body: body}
}

func TestPaymentWorkflow_SendsDirectlyWithoutBroker(t *testing.T) {
	sender := &fakeSender{success: true}
	w := NewPaymentWorkflow(
		&fakeBookingService{booking: paidBooking(), transitioned: true},
		&fakeRowRepo{rows: map[uint]*model.SeatRow{1: {ID: 1, Name: "A"}}},
		sender, nil, zap.NewNop(),
	)

	booking, err := w.SetPaid(context.Background(), 5, true)
	if err != nil {
		t.Fatalf("set paid failed: %v", err)
	}
	if !booking.Paid {
		t.Fatal("booking should be paid")
	}
	if sender.calls != 1 {
		t.Fatalf("expected 1 confirmation, got %d", sender.calls)
	}
	if sender.lastEmail != "olga@example.com" {
		t.Fatalf("sent to %s", sender.lastEmail)
	}
	if len(sender.lastSeats) != 1 || sender.lastSeats[0] != "row A seat 2" {
		t.Fatalf("unexpected seat labels: %v", sender.lastSeats)
	}
}

func TestPaymentWorkflow_NoEmailWithoutTransition(t *testing.T) {
	sender := &fakeSender{success: true}
	w := NewPaymentWorkflow(
		&fakeBookingService{booking: paidBooking(), transitioned: false},
		&fakeRowRepo{}, sender, nil, zap.NewNop(),
	)

	if _, err := w.SetPaid(context.Background(), 5, true); err != nil {
		t.Fatalf("set paid failed: %v", err)
	}
	if sender.calls != 0 {
		t.Fatalf("no transition must send no email, got %d calls", sender.calls)
	}
}

func TestHandleNotification_AcksOnSuccess(t *testing.T) {
	sender := &fakeSender{success: true}
	w := NewNotificationWorkflow(
		&fakeBookingService{booking: paidBooking()},
		&fakeRowRepo{rows: map[uint]*model.SeatRow{1: {ID: 1, Name: "A"}}},
		sender, zap.NewNop(),
	)

	acker := &fakeAcker{}
	w.handleNotification(nil, delivery(t, acker, mq.NotificationMessage{BookingID: 5, Attempt: 1}))

	if acker.acks != 1 {
		t.Fatalf("expected 1 ack, got %d", acker.acks)
	}
	if sender.calls != 1 {
		t.Fatalf("expected 1 send, got %d", sender.calls)
	}
}

// A booking deleted before the job runs has nothing to confirm.
func TestHandleNotification_DropsDeletedBooking(t *testing.T) {
	sender := &fakeSender{success: true}
	w := NewNotificationWorkflow(
		&fakeBookingService{getErr: model.NotFoundError{Resource: "booking"}},
		&fakeRowRepo{}, sender, zap.NewNop(),
	)

	acker := &fakeAcker{}
	w.handleNotification(nil, delivery(t, acker, mq.NotificationMessage{BookingID: 99, Attempt: 1}))

	if acker.acks != 1 {
		t.Fatalf("expected the job to be dropped with an ack, got %d", acker.acks)
	}
	if sender.calls != 0 {
		t.Fatalf("no email for a deleted booking, got %d calls", sender.calls)
	}
}

func TestHandleNotification_GivesUpAfterBudget(t *testing.T) {
	sender := &fakeSender{success: false}
	w := NewNotificationWorkflow(
		&fakeBookingService{booking: paidBooking()},
		&fakeRowRepo{rows: map[uint]*model.SeatRow{1: {ID: 1, Name: "A"}}},
		sender, zap.NewNop(),
	)

	acker := &fakeAcker{}
	w.handleNotification(nil, delivery(t, acker, mq.NotificationMessage{
		BookingID: 5,
		Attempt:   w.Policy.MaxAttempts,
	}))

	if acker.acks != 1 {
		t.Fatalf("spent budget must ack and drop, got %d acks", acker.acks)
	}
}

func TestHandleNotification_NacksBadPayload(t *testing.T) {
	w := NewNotificationWorkflow(&fakeBookingService{}, &fakeRowRepo{}, &fakeSender{}, zap.NewNop())

	acker := &fakeAcker{}
	w.handleNotification(nil, amqp.Delivery{Acknowledger: acker, Body: []byte("not json")})

	if acker.nacks != 1 {
		t.Fatalf("expected 1 nack, got %d", acker.nacks)
	}
	if acker.requeue {
		t.Fatal("a malformed payload must not be requeued")
	}
}

func TestSeatLabels_FallsBackToRowID(t *testing.T) {
	booking := paidBooking()
	booking.Assignments = append(booking.Assignments,
		model.SeatAssignment{BookingID: 5, SeatRowID: 9, SeatNumber: 1})

	labels := seatLabels(context.Background(), &fakeRowRepo{rows: map[uint]*model.SeatRow{1: {ID: 1, Name: "A"}}}, booking)
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %v", labels)
	}
	if labels[0] != "row A seat 2" {
		t.Fatalf("label[0] = %s", labels[0])
	}
	if labels[1] != "row #9 seat 1" {
		t.Fatalf("label[1] = %s", labels[1])
	}
}
