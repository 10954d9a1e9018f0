package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/okosten/hallbook/internal/model"
)

type SettingRepo interface {
	WithTx(tx *gorm.DB) SettingRepo
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type settingRepoGorm struct {
	db *gorm.DB
}

var _ SettingRepo = (*settingRepoGorm)(nil)

func NewSettingRepoGorm(db *gorm.DB) *settingRepoGorm {
	return &settingRepoGorm{
		db: db,
	}
}

func (r *settingRepoGorm) WithTx(tx *gorm.DB) SettingRepo {
	return &settingRepoGorm{
		db: tx,
	}
}

func (r *settingRepoGorm) Get(ctx context.Context, key string) (string, error) {
	setting, err := gorm.G[model.Setting](r.db).Where("key = ?", key).First(ctx)
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (r *settingRepoGorm) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&model.Setting{Key: key, Value: value}).Error
}
