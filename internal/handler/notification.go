package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const defaultRecentLimit = 20

// recentLimit reads the "limit" query param, clamped to something sane.
func recentLimit(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		return defaultRecentLimit
	}
	return limit
}

func (h *Handler) History(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	events, err := h.recorderSvc.History(c.Request().Context(), username, recentLimit(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) Notifications(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	items, err := h.recorderSvc.Notifications(c.Request().Context(), username, recentLimit(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MarkRead(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}
	if err := h.recorderSvc.MarkRead(c.Request().Context(), username, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	if err := h.recorderSvc.MarkAllRead(c.Request().Context(), username); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
