package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/okosten/hallbook/internal/cache"
	"github.com/okosten/hallbook/internal/model"
	"github.com/okosten/hallbook/internal/repository"
)

// InventoryService owns the available-seat set of every row. RemoveSeat and
// AddSeat are conditional status flips, so the authoritative "is this seat
// still free" decision happens in the same statement that consumes it.
type InventoryService interface {
	WithTx(tx *gorm.DB) InventoryService
	RemoveSeat(ctx context.Context, rowID, number uint) error
	AddSeat(ctx context.Context, rowID, number uint) error
	ListAvailable(ctx context.Context, rowID uint) ([]uint, error)
}

type inventoryService struct {
	DB    *gorm.DB
	Cache *cache.RedisCache

	RowRepo  repository.SeatRowRepo
	SeatRepo repository.SeatRepo
}

var _ InventoryService = (*inventoryService)(nil)

func NewInventoryService(db *gorm.DB, redisCache *cache.RedisCache, rowRepo repository.SeatRowRepo, seatRepo repository.SeatRepo) *inventoryService {
	return &inventoryService{
		DB:       db,
		Cache:    redisCache,
		RowRepo:  rowRepo,
		SeatRepo: seatRepo,
	}
}

func (s *inventoryService) WithTx(tx *gorm.DB) InventoryService {
	return &inventoryService{
		DB:       tx,
		Cache:    s.Cache,
		RowRepo:  s.RowRepo.WithTx(tx),
		SeatRepo: s.SeatRepo.WithTx(tx),
	}
}

// RemoveSeat consumes one available seat. A seat that is already booked or
// never existed fails the conditional update, which is reported as
// unavailable; calling it twice for the same seat fails the second time.
func (s *inventoryService) RemoveSeat(ctx context.Context, rowID, number uint) error {
	ok, err := s.SeatRepo.MarkBooked(ctx, rowID, number)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	row, err := s.RowRepo.GetByID(ctx, rowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NotFoundError{Resource: "seat row"}
		}
		return err
	}
	return model.SeatUnavailableError{
		Seats: []model.SeatRef{{RowID: rowID, RowName: row.Name, SeatNumber: number}},
	}
}

// AddSeat returns a seat to the pool. A booked seat is flipped back to
// available, an unknown number is inserted, and a seat that is already
// available conflicts. That is the double-release guard.
func (s *inventoryService) AddSeat(ctx context.Context, rowID, number uint) error {
	if _, err := s.RowRepo.GetByID(ctx, rowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NotFoundError{Resource: "seat row"}
		}
		return err
	}

	seat, err := s.SeatRepo.Get(ctx, rowID, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.SeatRepo.Insert(ctx, &model.Seat{
				SeatRowID: rowID,
				Number:    number,
				Status:    model.SeatAvailable,
			})
		}
		return err
	}
	if seat.Status == model.SeatAvailable {
		return model.ConflictError{Resource: "seat", Msg: "already available"}
	}

	ok, err := s.SeatRepo.MarkAvailable(ctx, rowID, number)
	if err != nil {
		return err
	}
	if !ok {
		// lost a race with another release
		return model.ConflictError{Resource: "seat", Msg: "already available"}
	}
	return nil
}

// ListAvailable serves the UI listing. It reads through the cache; entries
// only need to eventually reflect committed changes.
func (s *inventoryService) ListAvailable(ctx context.Context, rowID uint) ([]uint, error) {
	if s.Cache != nil {
		if numbers, err := s.Cache.GetRowAvailable(ctx, rowID); err == nil {
			return numbers, nil
		}
	}

	if _, err := s.RowRepo.GetByID(ctx, rowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError{Resource: "seat row"}
		}
		return nil, err
	}
	numbers, err := s.SeatRepo.ListAvailableNumbers(ctx, rowID)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		_ = s.Cache.SetRowAvailable(ctx, rowID, numbers)
	}
	return numbers, nil
}
