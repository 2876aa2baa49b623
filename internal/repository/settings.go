package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"
)

type SettingsRepository interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, s model.Settings) error
	ListDepartments(ctx context.Context) ([]model.Department, error)
}

type settingsRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewSettingsRepository(db *sqlx.DB, log *zap.Logger) (*settingsRepository, error) {
	return &settingsRepository{
		db:  db,
		log: log.Named("settings-repo"),
	}, nil
}

func (r *settingsRepository) GetSettings(ctx context.Context) (model.Settings, error) {
	q := `select org_name, theme, max_loans, loan_duration_days from settings where id = 1`
	var s model.Settings
	if err := r.db.GetContext(ctx, &s, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Settings{}, errs.ErrNotFound
		}
		return model.Settings{}, err
	}
	return s, nil
}

func (r *settingsRepository) UpdateSettings(ctx context.Context, s model.Settings) error {
	q := `update settings
	set org_name = $1, theme = $2, max_loans = $3, loan_duration_days = $4
	where id = 1`
	_, err := r.db.ExecContext(ctx, q, s.OrgName, s.Theme, s.MaxLoans, s.LoanDurationDays)
	return err
}

func (r *settingsRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	q := `select id, name, code from departments order by name`
	var deps []model.Department
	if err := r.db.SelectContext(ctx, &deps, q); err != nil {
		return nil, err
	}
	return deps, nil
}
