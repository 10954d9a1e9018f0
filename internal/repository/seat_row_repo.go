package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/okosten/hallbook/internal/model"
)

type SeatRowRepo interface {
	WithTx(tx *gorm.DB) SeatRowRepo
	Create(ctx context.Context, row *model.SeatRow) error
	GetByID(ctx context.Context, id uint) (*model.SeatRow, error)
	GetByName(ctx context.Context, name string) (*model.SeatRow, error)
	List(ctx context.Context, category *model.RowCategory, includeHidden bool) ([]model.SeatRow, error)
}

type seatRowRepoGorm struct {
	db *gorm.DB
}

var _ SeatRowRepo = (*seatRowRepoGorm)(nil)

func NewSeatRowRepoGorm(db *gorm.DB) *seatRowRepoGorm {
	return &seatRowRepoGorm{
		db: db,
	}
}

func (r *seatRowRepoGorm) WithTx(tx *gorm.DB) SeatRowRepo {
	return &seatRowRepoGorm{
		db: tx,
	}
}

func (r *seatRowRepoGorm) Create(ctx context.Context, row *model.SeatRow) error {
	if err := gorm.G[model.SeatRow](r.db).Create(ctx, row); err != nil {
		return err
	}
	return nil
}

func (r *seatRowRepoGorm) GetByID(ctx context.Context, id uint) (*model.SeatRow, error) {
	row, err := gorm.G[model.SeatRow](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *seatRowRepoGorm) GetByName(ctx context.Context, name string) (*model.SeatRow, error) {
	row, err := gorm.G[model.SeatRow](r.db).Where("name = ?", name).First(ctx)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *seatRowRepoGorm) List(ctx context.Context, category *model.RowCategory, includeHidden bool) ([]model.SeatRow, error) {
	q := gorm.G[model.SeatRow](r.db).Order("name asc")
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	if !includeHidden {
		q = q.Where("hidden = ?", false)
	}
	rows, err := q.Find(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
