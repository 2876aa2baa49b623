package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"
)

const (
	usersTableName     = `users`
	loanSlotsTableName = `loan_slots`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type UserRepository interface {
	CreateUser(ctx context.Context, user model.User, verifyToken string, maxLoans int) error
	GetUser(ctx context.Context, username string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UpdateProfile(ctx context.Context, username string, upd model.ProfileUpdate) error
	SetAvatar(ctx context.Context, username, url string) error
	VerifyEmail(ctx context.Context, token string) (string, error)
	SetResetToken(ctx context.Context, email, token string, expires time.Time) error
	ResetPassword(ctx context.Context, token, passwordHash string) error
	DeleteUser(ctx context.Context, username string) error
	GetSlots(ctx context.Context, username string) ([]model.LoanSlot, error)
	ActiveSlotCount(ctx context.Context, username string) (int, error)
}

type userRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewUserRepository(db *sqlx.DB, log *zap.Logger) (*userRepository, error) {
	return &userRepository{
		db:  db,
		log: log.Named("user-repo"),
	}, nil
}

// CreateUser inserts the user row together with its fixed slot bank, all
// slots free, in one transaction.
func (r *userRepository) CreateUser(ctx context.Context, user model.User, verifyToken string, maxLoans int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	q, args, err := qb.Insert(usersTableName).
		Columns("username", "email", "password_hash", "full_name", "phone", "status", "department", "level", "verify_token").
		Values(user.Username, user.Email, user.PasswordHash, user.FullName, user.Phone, user.Status, user.Department, user.Level, verifyToken).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errs.ErrAlreadyRegistered
		}
		return err
	}

	ins := qb.Insert(loanSlotsTableName).Columns("username", "slot_index")
	for i := 0; i < maxLoans; i++ {
		ins = ins.Values(user.Username, i)
	}
	q, args, err = ins.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *userRepository) GetUser(ctx context.Context, username string) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"username": username})
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"email": email})
}

func (r *userRepository) getUser(ctx context.Context, where sq.Eq) (model.User, error) {
	q, args, err := qb.Select("username", "email", "password_hash", "full_name", "phone", "status", "department", "level", "avatar_url", "email_verified", "created_at").
		From(usersTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, username string, upd model.ProfileUpdate) error {
	if upd.FullName == nil && upd.Phone == nil && upd.Status == nil && upd.Department == nil && upd.Level == nil {
		return nil
	}
	b := qb.Update(usersTableName).Where(sq.Eq{"username": username})
	if upd.FullName != nil {
		b = b.Set("full_name", *upd.FullName)
	}
	if upd.Phone != nil {
		b = b.Set("phone", *upd.Phone)
	}
	if upd.Status != nil {
		b = b.Set("status", *upd.Status)
	}
	if upd.Department != nil {
		b = b.Set("department", *upd.Department)
	}
	if upd.Level != nil {
		b = b.Set("level", *upd.Level)
	}
	q, args, err := b.ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *userRepository) SetAvatar(ctx context.Context, username, url string) error {
	q := `update users set avatar_url = $2 where username = $1`
	res, err := r.db.ExecContext(ctx, q, username, url)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// VerifyEmail flips the verified flag for the token's owner and returns the
// username. The token is single-use.
func (r *userRepository) VerifyEmail(ctx context.Context, token string) (string, error) {
	q := `update users set email_verified = true, verify_token = null
	where verify_token = $1
	returning username`
	var username string
	if err := r.db.QueryRowContext(ctx, q, token).Scan(&username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errs.ErrInvalidToken
		}
		return "", err
	}
	return username, nil
}

func (r *userRepository) SetResetToken(ctx context.Context, email, token string, expires time.Time) error {
	q := `update users set reset_token = $2, reset_expires = $3 where email = $1`
	res, err := r.db.ExecContext(ctx, q, email, token, expires)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *userRepository) ResetPassword(ctx context.Context, token, passwordHash string) error {
	q := `update users set password_hash = $2, reset_token = null, reset_expires = null
	where reset_token = $1 and reset_expires > now()`
	res, err := r.db.ExecContext(ctx, q, token, passwordHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrInvalidToken
	}
	return nil
}

func (r *userRepository) DeleteUser(ctx context.Context, username string) error {
	q := `delete from users where username = $1`
	res, err := r.db.ExecContext(ctx, q, username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *userRepository) GetSlots(ctx context.Context, username string) ([]model.LoanSlot, error) {
	q, args, err := qb.Select("username", "slot_index", "state", "item_uid", "item_name", "category", "image_url", "source_collection", "event_ts", "due_date", "copies").
		From(loanSlotsTableName).
		Where(sq.Eq{"username": username}).
		OrderBy("slot_index").
		ToSql()
	if err != nil {
		return nil, err
	}
	var slots []model.LoanSlot
	if err := r.db.SelectContext(ctx, &slots, q, args...); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *userRepository) ActiveSlotCount(ctx context.Context, username string) (int, error) {
	q := `
	select count(*) from loan_slots
	where username = $1 and state in ('RESERVED', 'BORROWED')
`
	var count int
	if err := r.db.QueryRowContext(ctx, q, username).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
