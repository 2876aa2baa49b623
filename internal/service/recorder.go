package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/internal/repository"
	"github.com/biblioenspy/biblio-service/pkg/kafka"
)

// RecorderService is the append-only history/notification writer. Writes
// arrive via the loan-event topic; reads serve the history and
// notification views.
type RecorderService struct {
	log  *zap.Logger
	repo repository.HistoryRepository
}

func NewRecorderService(repo repository.HistoryRepository, log *zap.Logger) *RecorderService {
	return &RecorderService{
		log:  log,
		repo: repo,
	}
}

var notificationTitles = map[string]string{
	"RESERVED":  "Réservation confirmée",
	"CANCELLED": "Réservation annulée",
	"BORROWED":  "Emprunt enregistré",
	"RETURNED":  "Retour enregistré",
}

// Record is invoked by the kafka consumer for every committed mutation.
func (s *RecorderService) Record(ctx context.Context, event kafka.LoanEvent) error {
	if err := s.repo.AppendHistory(ctx, model.HistoryEvent{
		Username:  event.UserName,
		ItemUid:   event.ItemUid,
		ItemName:  event.ItemName,
		EventType: event.EventType,
	}); err != nil {
		return err
	}

	title, ok := notificationTitles[event.EventType]
	if !ok {
		s.log.Warn("unknown loan event type", zap.String("type", event.EventType))
		return nil
	}
	body := title
	if event.ItemName != "" {
		body = fmt.Sprintf("%s: %s", title, event.ItemName)
	}
	return s.repo.AppendNotification(ctx, model.Notification{
		Username: event.UserName,
		Title:    title,
		Body:     body,
	})
}

func (s *RecorderService) History(ctx context.Context, username string, limit int) ([]model.HistoryEvent, error) {
	return s.repo.ListHistory(ctx, username, limit)
}

func (s *RecorderService) Notifications(ctx context.Context, username string, limit int) ([]model.Notification, error) {
	return s.repo.ListNotifications(ctx, username, limit)
}

func (s *RecorderService) MarkRead(ctx context.Context, username string, id int) error {
	return s.repo.MarkRead(ctx, username, id)
}

func (s *RecorderService) MarkAllRead(ctx context.Context, username string) error {
	return s.repo.MarkAllRead(ctx, username)
}

func (s *RecorderService) ReservationEvents(ctx context.Context, username string, limit int) ([]model.ReservationEvent, error) {
	return s.repo.ListReservationEvents(ctx, username, limit)
}
