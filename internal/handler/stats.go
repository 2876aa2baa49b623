package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biblioenspy/biblio-service/internal/model"
)

func (h *Handler) LibraryStats(c echo.Context) error {
	stats, err := h.statsSvc.LibraryStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) UserSummary(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	summary, err := h.statsSvc.UserSummary(c.Request().Context(), username)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetSettings(c echo.Context) error {
	settings, err := h.settingsSvc.GetSettings(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var settings model.Settings
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if settings.MaxLoans <= 0 || settings.LoanDurationDays <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "maxLoans and loanDurationDays must be positive")
	}
	if err := h.settingsSvc.UpdateSettings(c.Request().Context(), settings); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListDepartments(c echo.Context) error {
	deps, err := h.settingsSvc.ListDepartments(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, deps)
}
