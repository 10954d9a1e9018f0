package domain

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/okosten/hallbook/internal/cache"
	"github.com/okosten/hallbook/internal/model"
	"github.com/okosten/hallbook/internal/repository"
)

// SettingsService reads and writes persisted config flags. The balcony
// toggle used to be an in-process boolean; keeping it in the settings table
// makes it survive restarts and stay consistent across instances.
type SettingsService interface {
	ShowBalcony(ctx context.Context) (bool, error)
	SetShowBalcony(ctx context.Context, visible bool) error
}

type settingsService struct {
	Cache *cache.RedisCache
	Repo  repository.SettingRepo
}

var _ SettingsService = (*settingsService)(nil)

func NewSettingsService(redisCache *cache.RedisCache, repo repository.SettingRepo) *settingsService {
	return &settingsService{
		Cache: redisCache,
		Repo:  repo,
	}
}

func (s *settingsService) ShowBalcony(ctx context.Context) (bool, error) {
	key := cache.MakeSettingKey(model.SettingShowBalcony)
	if s.Cache != nil {
		if v, err := s.Cache.GetBool(ctx, key); err == nil {
			return v, nil
		}
	}

	value, err := s.Repo.Get(ctx, model.SettingShowBalcony)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// balcony is visible until an admin hides it
			return true, nil
		}
		return false, err
	}
	visible, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	if s.Cache != nil {
		_ = s.Cache.SetBool(ctx, key, visible, cache.SettingTTL)
	}
	return visible, nil
}

func (s *settingsService) SetShowBalcony(ctx context.Context, visible bool) error {
	if err := s.Repo.Set(ctx, model.SettingShowBalcony, strconv.FormatBool(visible)); err != nil {
		return err
	}
	if s.Cache != nil {
		_ = s.Cache.SetBool(ctx, cache.MakeSettingKey(model.SettingShowBalcony), visible, cache.SettingTTL)
	}
	return nil
}
