package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"
)

const (
	historyTableName       = `history_events`
	notificationsTableName = `notifications`
)

type HistoryRepository interface {
	AppendHistory(ctx context.Context, event model.HistoryEvent) error
	ListHistory(ctx context.Context, username string, limit int) ([]model.HistoryEvent, error)
	AppendNotification(ctx context.Context, n model.Notification) error
	ListNotifications(ctx context.Context, username string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, username string, id int) error
	MarkAllRead(ctx context.Context, username string) error
	ListReservationEvents(ctx context.Context, username string, limit int) ([]model.ReservationEvent, error)
}

type historyRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewHistoryRepository(db *sqlx.DB, log *zap.Logger) (*historyRepository, error) {
	return &historyRepository{
		db:  db,
		log: log.Named("history-repo"),
	}, nil
}

func (r *historyRepository) AppendHistory(ctx context.Context, event model.HistoryEvent) error {
	q, args, err := qb.Insert(historyTableName).
		Columns("username", "item_uid", "item_name", "event_type").
		Values(event.Username, event.ItemUid, event.ItemName, event.EventType).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *historyRepository) ListHistory(ctx context.Context, username string, limit int) ([]model.HistoryEvent, error) {
	q, args, err := qb.Select("id", "username", "item_uid", "item_name", "event_type", "created_at").
		From(historyTableName).
		Where(sq.Eq{"username": username}).
		OrderBy("created_at desc").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var events []model.HistoryEvent
	if err := r.db.SelectContext(ctx, &events, q, args...); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *historyRepository) AppendNotification(ctx context.Context, n model.Notification) error {
	q, args, err := qb.Insert(notificationsTableName).
		Columns("username", "title", "body").
		Values(n.Username, n.Title, n.Body).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *historyRepository) ListNotifications(ctx context.Context, username string, limit int) ([]model.Notification, error) {
	q, args, err := qb.Select("id", "username", "title", "body", "read", "created_at").
		From(notificationsTableName).
		Where(sq.Eq{"username": username}).
		OrderBy("created_at desc").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Notification
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *historyRepository) MarkRead(ctx context.Context, username string, id int) error {
	q := `update notifications set read = true where id = $1 and username = $2`
	res, err := r.db.ExecContext(ctx, q, id, username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *historyRepository) MarkAllRead(ctx context.Context, username string) error {
	q := `update notifications set read = true where username = $1 and not read`
	_, err := r.db.ExecContext(ctx, q, username)
	return err
}

func (r *historyRepository) ListReservationEvents(ctx context.Context, username string, limit int) ([]model.ReservationEvent, error) {
	q, args, err := qb.Select("id", "event_uid", "username", "item_uid", "item_name", "category", "copies", "status", "created_at").
		From(reservationEventsTableName).
		Where(sq.Eq{"username": username}).
		OrderBy("created_at desc").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var events []model.ReservationEvent
	if err := r.db.SelectContext(ctx, &events, q, args...); err != nil {
		return nil, err
	}
	return events, nil
}
