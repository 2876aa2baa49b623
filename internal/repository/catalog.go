package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"
)

const (
	catalogTableName  = `catalog_items`
	commentsTableName = `item_comments`
)

type CatalogRepository interface {
	ListItems(ctx context.Context, filter model.CatalogFilter) (model.ListItems, error)
	GetItem(ctx context.Context, itemUid string) (model.CatalogItem, error)
	ListComments(ctx context.Context, itemUid string) ([]model.Comment, error)
	AddComment(ctx context.Context, comment model.Comment) (model.Comment, error)
}

type catalogRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewCatalogRepository(db *sqlx.DB, log *zap.Logger) (*catalogRepository, error) {
	return &catalogRepository{
		db:  db,
		log: log.Named("catalog-repo"),
	}, nil
}

func (r *catalogRepository) ListItems(ctx context.Context, filter model.CatalogFilter) (model.ListItems, error) {
	q := qb.Select("id", "item_uid", "kind", "title", "author", "category", "shelf", "initial_copies", "available_copies", "description", "image_url").
		From(catalogTableName).
		OrderBy("title")

	if filter.Kind != "" {
		q = q.Where(sq.Eq{"kind": filter.Kind})
	}
	if filter.Category != "" {
		q = q.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"author": pattern},
		})
	}
	if !filter.ShowAll {
		q = q.Where(sq.Gt{"available_copies": 0})
	}
	if filter.Page != 0 && filter.Size != 0 {
		q = q.Limit(uint64(filter.Size)).Offset(uint64((filter.Page - 1) * filter.Size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListItems{}, err
	}
	r.log.Debug("ListItems", zap.String("query", query), zap.Any("args", args))

	var items []model.CatalogItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return model.ListItems{}, err
	}

	return model.ListItems{
		Paging: model.Paging{
			Page:          filter.Page,
			PageSize:      filter.Size,
			TotalElements: len(items),
		},
		Items: items,
	}, nil
}

func (r *catalogRepository) GetItem(ctx context.Context, itemUid string) (model.CatalogItem, error) {
	query, args, err := qb.Select("id", "item_uid", "kind", "title", "author", "category", "shelf", "initial_copies", "available_copies", "description", "image_url").
		From(catalogTableName).
		Where(sq.Eq{"item_uid": itemUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.CatalogItem{}, err
	}

	var item model.CatalogItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CatalogItem{}, errs.ErrNotFound
		}
		return model.CatalogItem{}, err
	}
	return item, nil
}

func (r *catalogRepository) ListComments(ctx context.Context, itemUid string) ([]model.Comment, error) {
	query, args, err := qb.Select("id", "item_uid", "author", "rating", "text", "created_at").
		From(commentsTableName).
		Where(sq.Eq{"item_uid": itemUid}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *catalogRepository) AddComment(ctx context.Context, comment model.Comment) (model.Comment, error) {
	q, args, err := qb.Insert(commentsTableName).
		Columns("item_uid", "author", "rating", "text").
		Values(comment.ItemUid, comment.Author, comment.Rating, comment.Text).
		Suffix("returning id, created_at").
		ToSql()
	if err != nil {
		return model.Comment{}, err
	}
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		r.log.Error("AddComment", zap.String("q", q), zap.Any("args", args))
		return model.Comment{}, err
	}
	return comment, nil
}
