package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/internal/repository"
)

type CatalogService struct {
	log  *zap.Logger
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{
		log:  log,
		repo: repo,
	}
}

func (s *CatalogService) ListItems(ctx context.Context, filter model.CatalogFilter) (model.ListItems, error) {
	return s.repo.ListItems(ctx, filter)
}

func (s *CatalogService) GetItem(ctx context.Context, itemUid string) (model.CatalogItem, error) {
	return s.repo.GetItem(ctx, itemUid)
}

func (s *CatalogService) ListComments(ctx context.Context, itemUid string) ([]model.Comment, error) {
	return s.repo.ListComments(ctx, itemUid)
}

func (s *CatalogService) AddComment(ctx context.Context, comment model.Comment) (model.Comment, error) {
	if _, err := s.repo.GetItem(ctx, comment.ItemUid); err != nil {
		return model.Comment{}, err
	}
	return s.repo.AddComment(ctx, comment)
}
