package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/okosten/hallbook/internal/cache"
	"github.com/okosten/hallbook/internal/model"
	"github.com/okosten/hallbook/internal/repository"
)

// SeatSelection is one requested (row, seat) pair with its passenger.
type SeatSelection struct {
	RowID      uint
	SeatNumber uint
	FirstName  string
	LastName   string
}

type ReceiptPayload struct {
	Data        []byte
	ContentType string
}

type CreateBookingInput struct {
	Name    string
	Email   string
	Phone   string
	Seats   []SeatSelection
	Receipt *ReceiptPayload
}

// ReceiptUploader is the blob-storage collaborator. Upload failures during
// booking creation are logged, never surfaced.
type ReceiptUploader interface {
	Upload(ctx context.Context, data []byte, contentType, ref string) (string, error)
}

type BookingService interface {
	Create(ctx context.Context, in CreateBookingInput) (*model.Booking, error)
	Get(ctx context.Context, id uint) (*model.Booking, error)
	List(ctx context.Context, page, pageSize int) ([]model.Booking, bool, error)
	Delete(ctx context.Context, id uint) (int, error)
	// SetPaid flips the paid flag and reports whether the booking just
	// transitioned to paid. Inventory is never touched here.
	SetPaid(ctx context.Context, id uint, paid bool) (*model.Booking, bool, error)
	UpdateReceipt(ctx context.Context, id uint, receipt ReceiptPayload) (*model.Booking, error)
}

type bookingService struct {
	DB     *gorm.DB
	Cache  *cache.RedisCache
	Logger *zap.Logger

	BookingRepo repository.BookingRepo
	UserRepo    repository.UserRepo
	RowRepo     repository.SeatRowRepo
	SeatRepo    repository.SeatRepo

	Uploader ReceiptUploader

	// MaxPerEmail caps bookings per customer email, zero means unlimited.
	MaxPerEmail int
}

var _ BookingService = (*bookingService)(nil)

func NewBookingService(
	db *gorm.DB,
	redisCache *cache.RedisCache,
	logger *zap.Logger,
	bookingRepo repository.BookingRepo,
	userRepo repository.UserRepo,
	rowRepo repository.SeatRowRepo,
	seatRepo repository.SeatRepo,
	uploader ReceiptUploader,
	maxPerEmail int,
) *bookingService {
	return &bookingService{
		DB:          db,
		Cache:       redisCache,
		Logger:      logger,
		BookingRepo: bookingRepo,
		UserRepo:    userRepo,
		RowRepo:     rowRepo,
		SeatRepo:    seatRepo,
		Uploader:    uploader,
		MaxPerEmail: maxPerEmail,
	}
}

func (s *bookingService) Create(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	// Pre-check every pair before mutating anything. This enumerates all
	// conflicts for the caller; the conditional update inside the
	// transaction below remains the authoritative guard.
	rowNames, err := s.precheckSeats(ctx, in.Seats)
	if err != nil {
		return nil, err
	}

	user, err := s.findOrCreateUser(ctx, in)
	if err != nil {
		return nil, err
	}

	var receiptURL *string
	if in.Receipt != nil && s.Uploader != nil {
		ref := fmt.Sprintf("%d-%d", user.ID, time.Now().UnixNano())
		url, err := s.Uploader.Upload(ctx, in.Receipt.Data, in.Receipt.ContentType, ref)
		if err != nil {
			// non-fatal, the receipt can be attached later
			s.Logger.Warn("receipt upload failed, booking proceeds without receipt",
				zap.String("email", in.Email), zap.Error(err))
		} else {
			receiptURL = &url
		}
	}

	var bookingID uint
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		seatRepo := s.SeatRepo.WithTx(tx)

		var conflicts []model.SeatRef
		for _, sel := range in.Seats {
			ok, err := seatRepo.MarkBooked(ctx, sel.RowID, sel.SeatNumber)
			if err != nil {
				return err
			}
			if !ok {
				conflicts = append(conflicts, model.SeatRef{
					RowID:      sel.RowID,
					RowName:    rowNames[sel.RowID],
					SeatNumber: sel.SeatNumber,
				})
			}
		}
		if len(conflicts) > 0 {
			return model.SeatUnavailableError{Seats: conflicts}
		}

		assignments := make([]model.SeatAssignment, 0, len(in.Seats))
		for _, sel := range in.Seats {
			assignments = append(assignments, model.SeatAssignment{
				SeatRowID:  sel.RowID,
				SeatNumber: sel.SeatNumber,
				FirstName:  strings.TrimSpace(sel.FirstName),
				LastName:   strings.TrimSpace(sel.LastName),
			})
		}
		booking := model.Booking{
			UserID:      user.ID,
			TotalPrice:  len(in.Seats) * model.PerSeatPrice,
			ReceiptURL:  receiptURL,
			Assignments: assignments,
		}
		if err := s.BookingRepo.WithTx(tx).Create(ctx, &booking); err != nil {
			return err
		}
		bookingID = booking.ID
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.Logger.Error("booking creation failed", zap.Error(err))
		return nil, model.CreationFailedError{Err: err}
	}

	s.invalidateRows(ctx, in.Seats)

	return s.Get(ctx, bookingID)
}

func (s *bookingService) Get(ctx context.Context, id uint) (*model.Booking, error) {
	booking, err := s.BookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError{Resource: "booking"}
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, page, pageSize int) ([]model.Booking, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	// one extra row decides HasNextPage without a count query
	bookings, err := s.BookingRepo.List(ctx, (page-1)*pageSize, pageSize+1)
	if err != nil {
		return nil, false, err
	}
	hasNext := len(bookings) > pageSize
	if hasNext {
		bookings = bookings[:pageSize]
	}
	return bookings, hasNext, nil
}

// Delete removes a booking and returns its seats to their rows. Releasing a
// seat whose row disappeared in the meantime is logged, not fatal. The
// returned count is the number of seats actually released.
func (s *bookingService) Delete(ctx context.Context, id uint) (int, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	released := 0
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.BookingRepo.WithTx(tx).Delete(ctx, booking.ID); err != nil {
			return err
		}

		inv := NewInventoryService(tx, s.Cache, s.RowRepo.WithTx(tx), s.SeatRepo.WithTx(tx))
		for _, a := range booking.Assignments {
			if err := inv.AddSeat(ctx, a.SeatRowID, a.SeatNumber); err != nil {
				if model.IsNotFound(err) || model.IsConflict(err) {
					s.Logger.Warn("seat release skipped",
						zap.Uint("booking_id", booking.ID),
						zap.Uint("row_id", a.SeatRowID),
						zap.Uint("seat_number", a.SeatNumber),
						zap.Error(err))
					continue
				}
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, a := range booking.Assignments {
		if s.Cache != nil {
			_ = s.Cache.InvalidateRows(ctx, a.SeatRowID)
		}
	}
	return released, nil
}

func (s *bookingService) SetPaid(ctx context.Context, id uint, paid bool) (*model.Booking, bool, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if booking.Paid == paid {
		return booking, false, nil
	}

	ok, err := s.BookingRepo.SetPaid(ctx, id, paid)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, model.NotFoundError{Resource: "booking"}
	}
	booking.Paid = paid
	return booking, paid, nil
}

func (s *bookingService) UpdateReceipt(ctx context.Context, id uint, receipt ReceiptPayload) (*model.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Uploader == nil {
		return nil, model.UploadError{Err: errors.New("no blob store configured")}
	}

	ref := fmt.Sprintf("%d-%d", booking.ID, time.Now().UnixNano())
	url, err := s.Uploader.Upload(ctx, receipt.Data, receipt.ContentType, ref)
	if err != nil {
		// attaching the receipt is the whole point here, so the failure
		// is surfaced
		return nil, model.UploadError{Err: err}
	}
	if _, err := s.BookingRepo.SetReceiptURL(ctx, id, url); err != nil {
		return nil, err
	}
	booking.ReceiptURL = &url
	return booking, nil
}

func validateCreateInput(in CreateBookingInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return model.ValidationError{Field: "name", Msg: "required"}
	}
	if strings.TrimSpace(in.Email) == "" {
		return model.ValidationError{Field: "email", Msg: "required"}
	}
	if len(in.Seats) == 0 {
		return model.ValidationError{Field: "seats", Msg: "at least one seat required"}
	}
	seen := make(map[[2]uint]bool, len(in.Seats))
	for _, sel := range in.Seats {
		if strings.TrimSpace(sel.FirstName) == "" || strings.TrimSpace(sel.LastName) == "" {
			return model.ValidationError{Field: "seats", Msg: "passenger first and last name required"}
		}
		key := [2]uint{sel.RowID, sel.SeatNumber}
		if seen[key] {
			return model.ValidationError{Field: "seats", Msg: "duplicate seat in request"}
		}
		seen[key] = true
	}
	return nil
}

func (s *bookingService) precheckSeats(ctx context.Context, seats []SeatSelection) (map[uint]string, error) {
	rowNames := make(map[uint]string)
	var conflicts []model.SeatRef
	for _, sel := range seats {
		name, ok := rowNames[sel.RowID]
		if !ok {
			row, err := s.RowRepo.GetByID(ctx, sel.RowID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, model.NotFoundError{Resource: "seat row"}
				}
				return nil, err
			}
			name = row.Name
			rowNames[sel.RowID] = name
		}

		seat, err := s.SeatRepo.Get(ctx, sel.RowID, sel.SeatNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				conflicts = append(conflicts, model.SeatRef{RowID: sel.RowID, RowName: name, SeatNumber: sel.SeatNumber})
				continue
			}
			return nil, err
		}
		if seat.Status != model.SeatAvailable {
			conflicts = append(conflicts, model.SeatRef{RowID: sel.RowID, RowName: name, SeatNumber: sel.SeatNumber})
		}
	}
	if len(conflicts) > 0 {
		return nil, model.SeatUnavailableError{Seats: conflicts}
	}
	return rowNames, nil
}

// findOrCreateUser resolves the customer by email. Existing emails are fine,
// multiple bookings per email are allowed unless a cap is configured.
func (s *bookingService) findOrCreateUser(ctx context.Context, in CreateBookingInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.UserRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &model.User{
			Name:  strings.TrimSpace(in.Name),
			Email: email,
			Phone: strings.TrimSpace(in.Phone),
		}
		if err := s.UserRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if s.MaxPerEmail > 0 {
		count, err := s.BookingRepo.CountByUserID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if count >= int64(s.MaxPerEmail) {
			return nil, model.ConflictError{Resource: "booking", Msg: "booking limit reached for this email"}
		}
	}
	return user, nil
}

func (s *bookingService) invalidateRows(ctx context.Context, seats []SeatSelection) {
	if s.Cache == nil {
		return
	}
	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(seats))
	for _, sel := range seats {
		if !seen[sel.RowID] {
			seen[sel.RowID] = true
			ids = append(ids, sel.RowID)
		}
	}
	if err := s.Cache.InvalidateRows(ctx, ids...); err != nil {
		s.Logger.Warn("cache invalidation failed", zap.Error(err))
	}
}

func isDomainError(err error) bool {
	return model.IsNotFound(err) || model.IsValidation(err) ||
		model.IsConflict(err) || model.IsSeatUnavailable(err)
}
