package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/pkg/validate"
)

type Handler struct {
	lifecycleSvc LifecycleService
	authSvc      AuthService
	catalogSvc   CatalogService
	statsSvc     StatsService
	recorderSvc  RecorderService
	settingsSvc  SettingsService
	uploader     Uploader
	log          *zap.Logger
}

func New(
	lifecycleSvc LifecycleService,
	authSvc AuthService,
	catalogSvc CatalogService,
	statsSvc StatsService,
	recorderSvc RecorderService,
	settingsSvc SettingsService,
	uploader Uploader,
	log *zap.Logger,
) *Handler {
	return &Handler{
		lifecycleSvc: lifecycleSvc,
		authSvc:      authSvc,
		catalogSvc:   catalogSvc,
		statsSvc:     statsSvc,
		recorderSvc:  recorderSvc,
		settingsSvc:  settingsSvc,
		uploader:     uploader,
		log:          log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig(h.log)),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
	)

	api.POST("/auth/register", h.Register)
	api.GET("/auth/verify", h.VerifyEmail)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/password-reset", h.RequestPasswordReset)
	api.POST("/auth/password-reset/confirm", h.ResetPassword)

	api.GET("/catalog/items", h.ListItems)
	api.GET("/catalog/items/:itemUid", h.GetItem)
	api.GET("/catalog/items/:itemUid/comments", h.ListComments)

	api.GET("/settings", h.GetSettings)
	api.GET("/departments", h.ListDepartments)

	authed := api.Group("", jwtAuthentication)
	authed.DELETE("/auth/account", h.DeleteAccount)

	authed.GET("/profile", h.Profile)
	authed.PATCH("/profile", h.UpdateProfile)
	authed.POST("/profile/avatar", h.UploadAvatar)

	authed.POST("/catalog/items/:itemUid/comments", h.AddComment)
	authed.PATCH("/settings", h.UpdateSettings, requireRole(string(model.StatusTeacher)))

	authed.GET("/reservations", h.Loans)
	authed.GET("/reservations/events", h.ReservationEvents)
	authed.POST("/reservations", h.Reserve)
	authed.DELETE("/reservations/:itemUid", h.Cancel)
	authed.POST("/reservations/:itemUid/borrow", h.MarkBorrowed)
	authed.POST("/reservations/:itemUid/return", h.Return)

	authed.GET("/history", h.History)
	authed.GET("/notifications", h.Notifications)
	authed.PATCH("/notifications/:id/read", h.MarkRead)
	authed.POST("/notifications/read-all", h.MarkAllRead)

	authed.GET("/stats/me", h.UserSummary)
	api.GET("/stats", h.LibraryStats)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the error taxonomy to transport codes. Raw store errors
// never cross this boundary.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotAuthenticated),
		errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrRequiresRecentLogin):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrNotVerified),
		errors.Is(err, errs.ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrCapacityExceeded),
		errors.Is(err, errs.ErrItemUnavailable),
		errors.Is(err, errs.ErrAlreadyRegistered):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
