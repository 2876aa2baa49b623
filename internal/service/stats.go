package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/internal/repository"
)

type StatsService struct {
	log      *zap.Logger
	repo     repository.StatsRepository
	users    repository.UserRepository
	settings repository.SettingsRepository
}

func NewStatsService(
	repo repository.StatsRepository,
	users repository.UserRepository,
	settings repository.SettingsRepository,
	log *zap.Logger,
) *StatsService {
	return &StatsService{
		log:      log,
		repo:     repo,
		users:    users,
		settings: settings,
	}
}

func (s *StatsService) LibraryStats(ctx context.Context) (model.LibraryStats, error) {
	return s.repo.LibraryStats(ctx)
}

// UserSummary re-derives the per-user counts by scanning the slot bank.
func (s *StatsService) UserSummary(ctx context.Context, username string) (model.UserSummary, error) {
	var (
		cfg   model.Settings
		slots []model.LoanSlot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = s.settings.GetSettings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		slots, err = s.users.GetSlots(gctx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.UserSummary{}, err
	}

	summary := model.UserSummary{
		Username: username,
		MaxLoans: cfg.MaxLoans,
	}
	now := time.Now().UTC()
	for _, slot := range slots {
		switch slot.DisplayState(now) {
		case model.SlotReserved:
			summary.Reserved++
		case model.SlotBorrowed:
			summary.Borrowed++
		case model.SlotOverdue:
			summary.Borrowed++
			summary.Overdue++
		default:
			summary.FreeSlots++
		}
	}
	return summary, nil
}
