package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/okosten/hallbook/internal/model"
)

type BookingRepo interface {
	WithTx(tx *gorm.DB) BookingRepo
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uint) (*model.Booking, error)
	// List returns bookings ordered unpaid-first, then newest-first.
	List(ctx context.Context, offset, limit int) ([]model.Booking, error)
	Delete(ctx context.Context, id uint) error
	SetPaid(ctx context.Context, id uint, paid bool) (bool, error)
	SetReceiptURL(ctx context.Context, id uint, url string) (bool, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
}

type bookingRepoGorm struct {
	db *gorm.DB
}

var _ BookingRepo = (*bookingRepoGorm)(nil)

func NewBookingRepoGorm(db *gorm.DB) *bookingRepoGorm {
	return &bookingRepoGorm{
		db: db,
	}
}

func (r *bookingRepoGorm) WithTx(tx *gorm.DB) BookingRepo {
	return &bookingRepoGorm{
		db: tx,
	}
}

func (r *bookingRepoGorm) Create(ctx context.Context, booking *model.Booking) error {
	// Inserts the booking and its assignments in one go.
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepoGorm) GetByID(ctx context.Context, id uint) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Assignments").
		First(&booking, "bookings.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepoGorm) List(ctx context.Context, offset, limit int) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Assignments").
		Order("paid asc").
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepoGorm) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", id).
		Delete(&model.SeatAssignment{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&model.Booking{}, id).Error
}

func (r *bookingRepoGorm) SetPaid(ctx context.Context, id uint, paid bool) (bool, error) {
	affected, err := gorm.G[model.Booking](r.db).
		Where("id = ?", id).
		Update(ctx, "paid", paid)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *bookingRepoGorm) SetReceiptURL(ctx context.Context, id uint, url string) (bool, error) {
	affected, err := gorm.G[model.Booking](r.db).
		Where("id = ?", id).
		Update(ctx, "receipt_url", url)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *bookingRepoGorm) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	return gorm.G[model.Booking](r.db).Where("user_id = ?", userID).Count(ctx, "*")
}
