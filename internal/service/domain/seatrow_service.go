package domain

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/okosten/hallbook/internal/cache"
	"github.com/okosten/hallbook/internal/model"
	"github.com/okosten/hallbook/internal/repository"
)

// RowView is a seat row together with its currently available numbers,
// the shape the UI renders.
type RowView struct {
	Row       model.SeatRow `json:"row"`
	Available []uint        `json:"available"`
}

type SeatRowService interface {
	CreateRow(ctx context.Context, name string, category model.RowCategory, numbers []uint) (*RowView, error)
	List(ctx context.Context, category *model.RowCategory, includeHidden bool) ([]RowView, error)
	AddSeat(ctx context.Context, rowID, number uint) (*RowView, error)
}

type seatRowService struct {
	DB    *gorm.DB
	Cache *cache.RedisCache

	RowRepo   repository.SeatRowRepo
	SeatRepo  repository.SeatRepo
	Inventory InventoryService
	Settings  SettingsService
}

var _ SeatRowService = (*seatRowService)(nil)

func NewSeatRowService(db *gorm.DB, redisCache *cache.RedisCache, rowRepo repository.SeatRowRepo, seatRepo repository.SeatRepo, inventory InventoryService, settings SettingsService) *seatRowService {
	return &seatRowService{
		DB:        db,
		Cache:     redisCache,
		RowRepo:   rowRepo,
		SeatRepo:  seatRepo,
		Inventory: inventory,
		Settings:  settings,
	}
}

func (s *seatRowService) CreateRow(ctx context.Context, name string, category model.RowCategory, numbers []uint) (*RowView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ValidationError{Field: "name", Msg: "required"}
	}
	if category != model.CategoryGround && category != model.CategoryBalcony {
		return nil, model.ValidationError{Field: "category", Msg: "must be ground or balcony"}
	}
	if len(numbers) == 0 {
		return nil, model.ValidationError{Field: "seats", Msg: "at least one seat required"}
	}

	if _, err := s.RowRepo.GetByName(ctx, name); err == nil {
		return nil, model.ConflictError{Resource: "seat row", Msg: "name exists"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	unique := dedupeSorted(numbers)
	seats := make([]model.Seat, 0, len(unique))
	for _, n := range unique {
		seats = append(seats, model.Seat{Number: n, Status: model.SeatAvailable})
	}
	row := model.SeatRow{
		Name:     name,
		Category: category,
		Seats:    seats,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return s.RowRepo.WithTx(tx).Create(ctx, &row)
	})
	if err != nil {
		return nil, err
	}

	return &RowView{Row: row, Available: unique}, nil
}

func (s *seatRowService) List(ctx context.Context, category *model.RowCategory, includeHidden bool) ([]RowView, error) {
	rows, err := s.RowRepo.List(ctx, category, includeHidden)
	if err != nil {
		return nil, err
	}

	showBalcony := true
	if !includeHidden && s.Settings != nil {
		showBalcony, err = s.Settings.ShowBalcony(ctx)
		if err != nil {
			return nil, err
		}
	}

	views := make([]RowView, 0, len(rows))
	for _, row := range rows {
		if row.Category == model.CategoryBalcony && !showBalcony {
			continue
		}
		available, err := s.Inventory.ListAvailable(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		row.Seats = nil
		views = append(views, RowView{Row: row, Available: available})
	}
	return views, nil
}

// AddSeat extends a row with a brand-new seat number. Unlike the release
// path, a number that already exists in the row conflicts regardless of its
// status, otherwise an admin could free a booked seat by accident.
func (s *seatRowService) AddSeat(ctx context.Context, rowID, number uint) (*RowView, error) {
	row, err := s.RowRepo.GetByID(ctx, rowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError{Resource: "seat row"}
		}
		return nil, err
	}

	if _, err := s.SeatRepo.Get(ctx, rowID, number); err == nil {
		return nil, model.ConflictError{Resource: "seat", Msg: "exists"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.SeatRepo.Insert(ctx, &model.Seat{
		SeatRowID: rowID,
		Number:    number,
		Status:    model.SeatAvailable,
	}); err != nil {
		return nil, err
	}
	if s.Cache != nil {
		_ = s.Cache.InvalidateRows(ctx, rowID)
	}

	available, err := s.SeatRepo.ListAvailableNumbers(ctx, rowID)
	if err != nil {
		return nil, err
	}
	return &RowView{Row: *row, Available: available}, nil
}

func dedupeSorted(numbers []uint) []uint {
	seen := make(map[uint]bool, len(numbers))
	out := make([]uint, 0, len(numbers))
	for _, n := range numbers {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
