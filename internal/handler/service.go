package handler

import (
	"context"
	"io"
	"time"

	"github.com/biblioenspy/biblio-service/internal/imagestore"
	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LifecycleService interface {
	Reserve(ctx context.Context, username, itemUid string) (model.LoanSlot, error)
	Cancel(ctx context.Context, username, itemUid string) error
	MarkBorrowed(ctx context.Context, username, itemUid string) (time.Time, error)
	Return(ctx context.Context, username, itemUid string) error
	Loans(ctx context.Context, username string) ([]model.Loan, error)
}

type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) error
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, username, password string) (service.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	DeleteAccount(ctx context.Context, username string) error
	Profile(ctx context.Context, username string) (model.User, error)
	UpdateProfile(ctx context.Context, username string, upd model.ProfileUpdate) error
	SetAvatar(ctx context.Context, username, url string) error
}

type CatalogService interface {
	ListItems(ctx context.Context, filter model.CatalogFilter) (model.ListItems, error)
	GetItem(ctx context.Context, itemUid string) (model.CatalogItem, error)
	ListComments(ctx context.Context, itemUid string) ([]model.Comment, error)
	AddComment(ctx context.Context, comment model.Comment) (model.Comment, error)
}

type StatsService interface {
	LibraryStats(ctx context.Context) (model.LibraryStats, error)
	UserSummary(ctx context.Context, username string) (model.UserSummary, error)
}

type RecorderService interface {
	History(ctx context.Context, username string, limit int) ([]model.HistoryEvent, error)
	Notifications(ctx context.Context, username string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, username string, id int) error
	MarkAllRead(ctx context.Context, username string) error
	ReservationEvents(ctx context.Context, username string, limit int) ([]model.ReservationEvent, error)
}

type SettingsService interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, settings model.Settings) error
	ListDepartments(ctx context.Context) ([]model.Department, error)
}

type Uploader interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, progress imagestore.ProgressFunc) (imagestore.UploadResult, error)
}

var (
	_ LifecycleService = (*service.LifecycleService)(nil)
	_ AuthService      = (*service.AuthService)(nil)
	_ CatalogService   = (*service.CatalogService)(nil)
	_ StatsService     = (*service.StatsService)(nil)
	_ RecorderService  = (*service.RecorderService)(nil)
	_ SettingsService  = (*service.SettingsService)(nil)
	_ Uploader         = (*imagestore.Client)(nil)
)
