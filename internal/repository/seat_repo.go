package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/okosten/hallbook/internal/model"
)

type SeatRepo interface {
	WithTx(tx *gorm.DB) SeatRepo
	Insert(ctx context.Context, seat *model.Seat) error
	Get(ctx context.Context, rowID, number uint) (*model.Seat, error)
	ListAvailableNumbers(ctx context.Context, rowID uint) ([]uint, error)
	// MarkBooked flips a seat from available to booked and reports whether
	// the conditional update hit a row. This is the atomic reservation
	// primitive; a false return means the seat was already taken or absent.
	MarkBooked(ctx context.Context, rowID, number uint) (bool, error)
	// MarkAvailable is the reverse flip used when a booking is deleted.
	MarkAvailable(ctx context.Context, rowID, number uint) (bool, error)
}

type seatRepoGorm struct {
	db *gorm.DB
}

var _ SeatRepo = (*seatRepoGorm)(nil)

func NewSeatRepoGorm(db *gorm.DB) *seatRepoGorm {
	return &seatRepoGorm{
		db: db,
	}
}

func (r *seatRepoGorm) WithTx(tx *gorm.DB) SeatRepo {
	return &seatRepoGorm{
		db: tx,
	}
}

func (r *seatRepoGorm) Insert(ctx context.Context, seat *model.Seat) error {
	if err := gorm.G[model.Seat](r.db).Create(ctx, seat); err != nil {
		return err
	}
	return nil
}

func (r *seatRepoGorm) Get(ctx context.Context, rowID, number uint) (*model.Seat, error) {
	seat, err := gorm.G[model.Seat](r.db).
		Where("seat_row_id = ? AND number = ?", rowID, number).
		First(ctx)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepoGorm) ListAvailableNumbers(ctx context.Context, rowID uint) ([]uint, error) {
	seats, err := gorm.G[model.Seat](r.db).
		Where("seat_row_id = ? AND status = ?", rowID, model.SeatAvailable).
		Order("number asc").
		Find(ctx)
	if err != nil {
		return nil, err
	}
	numbers := make([]uint, 0, len(seats))
	for _, s := range seats {
		numbers = append(numbers, s.Number)
	}
	return numbers, nil
}

func (r *seatRepoGorm) MarkBooked(ctx context.Context, rowID, number uint) (bool, error) {
	return r.flipStatus(ctx, rowID, number, model.SeatAvailable, model.SeatBooked)
}

func (r *seatRepoGorm) MarkAvailable(ctx context.Context, rowID, number uint) (bool, error) {
	return r.flipStatus(ctx, rowID, number, model.SeatBooked, model.SeatAvailable)
}

func (r *seatRepoGorm) flipStatus(ctx context.Context, rowID, number uint, from, to model.SeatStatus) (bool, error) {
	affected, err := gorm.G[model.Seat](r.db).
		Where("seat_row_id = ? AND number = ? AND status = ?", rowID, number, from).
		Update(ctx, "status", to)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
