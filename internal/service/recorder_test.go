package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/internal/service"
	"github.com/biblioenspy/biblio-service/pkg/kafka"
)

type memHistory struct {
	history       []model.HistoryEvent
	notifications []model.Notification
}

func (s *memHistory) AppendHistory(_ context.Context, event model.HistoryEvent) error {
	s.history = append(s.history, event)
	return nil
}

func (s *memHistory) ListHistory(context.Context, string, int) ([]model.HistoryEvent, error) {
	return s.history, nil
}

func (s *memHistory) AppendNotification(_ context.Context, n model.Notification) error {
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *memHistory) ListNotifications(context.Context, string, int) ([]model.Notification, error) {
	return s.notifications, nil
}

func (s *memHistory) MarkRead(context.Context, string, int) error { return nil }

func (s *memHistory) MarkAllRead(context.Context, string) error { return nil }

func (s *memHistory) ListReservationEvents(context.Context, string, int) ([]model.ReservationEvent, error) {
	return nil, nil
}

func TestRecorder_Record(t *testing.T) {
	t.Parallel()
	store := &memHistory{}
	svc := service.NewRecorderService(store, zap.NewExample().Named("test"))

	err := svc.Record(context.Background(), kafka.LoanEvent{
		EventUid:  "e1",
		UserName:  "alice",
		ItemUid:   "11111111-1111-1111-1111-111111111111",
		ItemName:  "Thermodynamique",
		EventType: "RESERVED",
	})
	require.NoError(t, err)
	require.Len(t, store.history, 1)
	require.Equal(t, "RESERVED", store.history[0].EventType)
	require.Len(t, store.notifications, 1)
	require.Equal(t, "Réservation confirmée", store.notifications[0].Title)
	require.Equal(t, "Réservation confirmée: Thermodynamique", store.notifications[0].Body)
}

func TestRecorder_Record_UnknownType(t *testing.T) {
	t.Parallel()
	store := &memHistory{}
	svc := service.NewRecorderService(store, zap.NewExample().Named("test"))

	err := svc.Record(context.Background(), kafka.LoanEvent{
		UserName:  "alice",
		EventType: "SOMETHING_ELSE",
	})
	require.NoError(t, err)
	// history keeps the raw event, no notification is produced
	require.Len(t, store.history, 1)
	require.Empty(t, store.notifications)
}
