package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/internal/repository"
	"github.com/biblioenspy/biblio-service/pkg/redis"
)

const (
	settingsCacheKey = "settings:v1"
	settingsCacheTTL = 5 * time.Minute
)

// SettingsService serves the organization configuration singleton and the
// department list, with a short-lived redis cache in front of the store.
type SettingsService struct {
	log   *zap.Logger
	repo  repository.SettingsRepository
	cache *redis.Client
}

func NewSettingsService(repo repository.SettingsRepository, cache *redis.Client, log *zap.Logger) *SettingsService {
	return &SettingsService{
		log:   log,
		repo:  repo,
		cache: cache,
	}
}

func (s *SettingsService) GetSettings(ctx context.Context) (model.Settings, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, settingsCacheKey).Bytes(); err == nil {
			var cached model.Settings
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return model.Settings{}, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(settings); err == nil {
			if err := s.cache.Set(ctx, settingsCacheKey, data, settingsCacheTTL).Err(); err != nil {
				s.log.Warn("settings cache write", zap.Error(err))
			}
		}
	}
	return settings, nil
}

func (s *SettingsService) UpdateSettings(ctx context.Context, settings model.Settings) error {
	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, settingsCacheKey).Err(); err != nil {
			s.log.Warn("settings cache invalidate", zap.Error(err))
		}
	}
	return nil
}

func (s *SettingsService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	return s.repo.ListDepartments(ctx)
}
