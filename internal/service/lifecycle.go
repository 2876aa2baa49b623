package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/internal/repository"
	"github.com/biblioenspy/biblio-service/pkg/kafka"
	"github.com/biblioenspy/biblio-service/pkg/metrics"
)

// LifecycleService is the only path that mutates slot banks and copy
// counts. Transitions per slot: FREE -> RESERVED -> BORROWED -> FREE, with
// RESERVED -> FREE on cancel. Overdue is derived on read, never stored.
type LifecycleService struct {
	log      *zap.Logger
	repo     repository.LifecycleRepository
	users    repository.UserRepository
	settings repository.SettingsRepository
	producer sarama.SyncProducer
}

func NewLifecycleService(
	repo repository.LifecycleRepository,
	users repository.UserRepository,
	settings repository.SettingsRepository,
	producer sarama.SyncProducer,
	log *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		log:      log,
		repo:     repo,
		users:    users,
		settings: settings,
		producer: producer,
	}
}

func (s *LifecycleService) Reserve(ctx context.Context, username, itemUid string) (model.LoanSlot, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		metrics.ObserveOp("reserve", err)
		return model.LoanSlot{}, err
	}
	if !user.EmailVerified {
		metrics.ObserveOp("reserve", errs.ErrNotVerified)
		return model.LoanSlot{}, errs.ErrNotVerified
	}

	slot, err := s.repo.Reserve(ctx, username, itemUid)
	metrics.ObserveOp("reserve", err)
	if err != nil {
		return model.LoanSlot{}, err
	}
	s.emit(username, itemUid, deref(slot.ItemName), deref(slot.Category), "RESERVED")
	return slot, nil
}

func (s *LifecycleService) Cancel(ctx context.Context, username, itemUid string) error {
	err := s.repo.Cancel(ctx, username, itemUid)
	metrics.ObserveOp("cancel", err)
	if err != nil {
		return err
	}
	s.emit(username, itemUid, "", "", "CANCELLED")
	return nil
}

func (s *LifecycleService) MarkBorrowed(ctx context.Context, username, itemUid string) (time.Time, error) {
	cfg, err := s.settings.GetSettings(ctx)
	if err != nil {
		return time.Time{}, err
	}
	duration := time.Duration(cfg.LoanDurationDays) * 24 * time.Hour

	dueDate, err := s.repo.MarkBorrowed(ctx, username, itemUid, duration)
	metrics.ObserveOp("borrow", err)
	if err != nil {
		return time.Time{}, err
	}
	s.emit(username, itemUid, "", "", "BORROWED")
	return dueDate, nil
}

func (s *LifecycleService) Return(ctx context.Context, username, itemUid string) error {
	err := s.repo.Return(ctx, username, itemUid)
	metrics.ObserveOp("return", err)
	if err != nil {
		return err
	}
	s.emit(username, itemUid, "", "", "RETURNED")
	return nil
}

// Loans projects the slot bank for the "my loans" view. A missing payload
// field is tolerated and rendered as a free slot.
func (s *LifecycleService) Loans(ctx context.Context, username string) ([]model.Loan, error) {
	slots, err := s.users.GetSlots(ctx, username)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	loans := make([]model.Loan, 0, len(slots))
	for _, slot := range slots {
		loan := model.Loan{
			SlotIndex: slot.SlotIndex,
			State:     slot.DisplayState(now),
		}
		if slot.State != model.SlotFree && slot.ItemUid != nil {
			loan.ItemUid = *slot.ItemUid
			loan.ItemName = deref(slot.ItemName)
			loan.Category = deref(slot.Category)
			loan.ImageURL = deref(slot.ImageURL)
			loan.EventTs = slot.EventTs
			loan.DueDate = slot.DueDate
		} else {
			loan.State = model.SlotFree
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

// emit publishes the committed mutation for the recorder. Delivery is best
// effort: a dead broker must not fail an already-committed reservation.
func (s *LifecycleService) emit(username, itemUid, itemName, category, eventType string) {
	if s.producer == nil {
		return
	}
	event := kafka.LoanEvent{
		EventUid:  uuid.NewString(),
		UserName:  username,
		ItemUid:   itemUid,
		ItemName:  itemName,
		Category:  category,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Warn("marshal loan event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{Topic: kafka.LoanTopic, Value: sarama.StringEncoder(data)}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		s.log.Warn("emit loan event", zap.String("type", eventType), zap.Error(err))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
