package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/model"
)

type StatsRepository interface {
	LibraryStats(ctx context.Context) (model.LibraryStats, error)
}

type statsRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewStatsRepository(db *pgxpool.Pool, log *zap.Logger) (*statsRepository, error) {
	return &statsRepository{
		db:  db,
		log: log.Named("stats-repo"),
	}, nil
}

type categoryCount struct {
	Category string `db:"category"`
	Count    int    `db:"cnt"`
}

func (r *statsRepository) LibraryStats(ctx context.Context) (model.LibraryStats, error) {
	const totalsQ = `
	select count(*), coalesce(sum(initial_copies), 0), coalesce(sum(available_copies), 0)
	from catalog_items
`
	var stats model.LibraryStats
	if err := r.db.QueryRow(ctx, totalsQ).
		Scan(&stats.TotalItems, &stats.TotalCopies, &stats.AvailableCopies); err != nil {
		return model.LibraryStats{}, err
	}
	if stats.TotalCopies > 0 {
		stats.AvailabilityRate = float64(stats.AvailableCopies) / float64(stats.TotalCopies)
	}

	const loansQ = `
	select count(*) from loan_slots where state in ('RESERVED', 'BORROWED')
`
	if err := r.db.QueryRow(ctx, loansQ).Scan(&stats.ActiveLoans); err != nil {
		return model.LibraryStats{}, err
	}

	const categoriesQ = `
	select category, count(*) as cnt from catalog_items
	group by category
	order by category
`
	rows, err := r.db.Query(ctx, categoriesQ)
	if err != nil {
		return model.LibraryStats{}, err
	}
	defer rows.Close()
	counts, err := pgx.CollectRows(rows, pgx.RowToStructByName[categoryCount])
	if err != nil {
		return model.LibraryStats{}, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	stats.ItemsByCategory = make(map[string]int, len(counts))
	for _, c := range counts {
		stats.ItemsByCategory[c.Category] = c.Count
	}
	return stats, nil
}
