package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"
)

const reservationEventsTableName = `reservation_events`

// LifecycleRepository owns every mutation that touches a slot bank together
// with a catalog copy count. Each operation is a single serializable-enough
// transaction: the copy-count check happens at write time via a conditional
// update, so two clients cannot both take the last copy.
type LifecycleRepository interface {
	Reserve(ctx context.Context, username, itemUid string) (model.LoanSlot, error)
	Cancel(ctx context.Context, username, itemUid string) error
	MarkBorrowed(ctx context.Context, username, itemUid string, loanDuration time.Duration) (time.Time, error)
	Return(ctx context.Context, username, itemUid string) error
}

type lifecycleRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewLifecycleRepository(db *sqlx.DB, log *zap.Logger) (*lifecycleRepository, error) {
	return &lifecycleRepository{
		db:  db,
		log: log.Named("lifecycle-repo"),
	}, nil
}

// withRetry re-runs fn once when the store reports a serialization conflict.
func (r *lifecycleRepository) withRetry(fn func() error) error {
	err := fn()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		(pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected) {
		r.log.Debug("serialization conflict, retrying", zap.String("code", pgErr.Code))
		return fn()
	}
	return err
}

func (r *lifecycleRepository) Reserve(ctx context.Context, username, itemUid string) (model.LoanSlot, error) {
	var slot model.LoanSlot
	err := r.withRetry(func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck

		// Lock the whole bank so two devices of one user serialize here.
		var slots []model.LoanSlot
		q := `select username, slot_index, state from loan_slots
		where username = $1 order by slot_index for update`
		if err := tx.SelectContext(ctx, &slots, q, username); err != nil {
			return err
		}
		if len(slots) == 0 {
			return errs.ErrNotFound
		}
		freeIdx := -1
		for _, s := range slots {
			if s.State == model.SlotFree {
				freeIdx = s.SlotIndex
				break
			}
		}
		if freeIdx == -1 {
			return errs.ErrCapacityExceeded
		}

		// Conditional decrement: validated at write time, not read time.
		q = `update catalog_items
		set available_copies = available_copies - 1
		where item_uid = $1 and available_copies > 0
		returning title, category, image_url, kind`
		var (
			title, category, imageURL string
			kind                      model.ItemKind
		)
		if err := tx.QueryRowContext(ctx, q, itemUid).Scan(&title, &category, &imageURL, &kind); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				var exists bool
				if err := tx.QueryRowContext(ctx,
					`select exists(select 1 from catalog_items where item_uid = $1)`, itemUid).Scan(&exists); err != nil {
					return err
				}
				if !exists {
					return errs.ErrNotFound
				}
				return errs.ErrItemUnavailable
			}
			return err
		}

		now := time.Now().UTC()
		sourceCollection := "books"
		if kind == model.KindThesis {
			sourceCollection = "theses"
		}
		q = `update loan_slots
		set state = 'RESERVED', item_uid = $3, item_name = $4, category = $5,
		    image_url = $6, source_collection = $7, event_ts = $8, copies = 1
		where username = $1 and slot_index = $2`
		if _, err := tx.ExecContext(ctx, q, username, freeIdx, itemUid, title, category, imageURL, sourceCollection, now); err != nil {
			return err
		}

		q = `insert into reservation_events (event_uid, username, item_uid, item_name, category, copies, status)
		values ($1, $2, $3, $4, $5, 1, 'RESERVED')`
		if _, err := tx.ExecContext(ctx, q, uuid.New(), username, itemUid, title, category); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		copies := 1
		slot = model.LoanSlot{
			Username:         username,
			SlotIndex:        freeIdx,
			State:            model.SlotReserved,
			ItemUid:          &itemUid,
			ItemName:         &title,
			Category:         &category,
			ImageURL:         &imageURL,
			SourceCollection: &sourceCollection,
			EventTs:          &now,
			Copies:           &copies,
		}
		return nil
	})
	if err != nil {
		return model.LoanSlot{}, err
	}
	return slot, nil
}

func (r *lifecycleRepository) Cancel(ctx context.Context, username, itemUid string) error {
	return r.withRetry(func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck

		if err := r.freeSlot(ctx, tx, username, itemUid, model.SlotReserved); err != nil {
			return err
		}

		// Restore the copy taken at reservation time, capped at the total.
		q := `update catalog_items
		set available_copies = least(available_copies + 1, initial_copies)
		where item_uid = $1`
		if _, err := tx.ExecContext(ctx, q, itemUid); err != nil {
			return err
		}

		q = `update reservation_events set status = 'CANCELLED'
		where id = (
			select id from reservation_events
			where username = $1 and item_uid = $2 and status = 'RESERVED'
			order by created_at desc limit 1
		)`
		if _, err := tx.ExecContext(ctx, q, username, itemUid); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (r *lifecycleRepository) MarkBorrowed(ctx context.Context, username, itemUid string, loanDuration time.Duration) (time.Time, error) {
	dueDate := time.Now().UTC().Add(loanDuration)
	q := `update loan_slots
	set state = 'BORROWED', due_date = $4
	where username = $1 and item_uid = $2 and state = $3`
	res, err := r.db.ExecContext(ctx, q, username, itemUid, model.SlotReserved, dueDate)
	if err != nil {
		return time.Time{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return time.Time{}, errs.ErrNotFound
	}
	return dueDate, nil
}

func (r *lifecycleRepository) Return(ctx context.Context, username, itemUid string) error {
	return r.withRetry(func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck

		if err := r.freeSlot(ctx, tx, username, itemUid, model.SlotBorrowed); err != nil {
			return err
		}

		q := `update catalog_items
		set available_copies = least(available_copies + 1, initial_copies)
		where item_uid = $1`
		if _, err := tx.ExecContext(ctx, q, itemUid); err != nil {
			return err
		}

		q = `update reservation_events set status = 'RETURNED'
		where id = (
			select id from reservation_events
			where username = $1 and item_uid = $2 and status = 'RESERVED'
			order by created_at desc limit 1
		)`
		if _, err := tx.ExecContext(ctx, q, username, itemUid); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// freeSlot clears the slot holding itemUid in the expected state, or
// reports ErrNotFound when no such slot exists.
func (r *lifecycleRepository) freeSlot(ctx context.Context, tx *sqlx.Tx, username, itemUid string, expected model.SlotState) error {
	q := `update loan_slots
	set state = 'FREE', item_uid = null, item_name = null, category = null,
	    image_url = null, source_collection = null, event_ts = null,
	    due_date = null, copies = null
	where (username, slot_index) = (
		select username, slot_index from loan_slots
		where username = $1 and item_uid = $2 and state = $3
		order by slot_index limit 1
		for update
	)`
	res, err := tx.ExecContext(ctx, q, username, itemUid, expected)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
