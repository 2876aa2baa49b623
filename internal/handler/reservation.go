package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Reserve(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	var req struct {
		ItemUid string `json:"itemUid" validate:"required,uuid"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slot, err := h.lifecycleSvc.Reserve(c.Request().Context(), username, req.ItemUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *Handler) Cancel(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	itemUid, err := itemUidParam(c)
	if err != nil {
		return err
	}
	if err := h.lifecycleSvc.Cancel(c.Request().Context(), username, itemUid); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkBorrowed(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	itemUid, err := itemUidParam(c)
	if err != nil {
		return err
	}
	dueDate, err := h.lifecycleSvc.MarkBorrowed(c.Request().Context(), username, itemUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, struct {
		DueDate time.Time `json:"dueDate"`
	}{DueDate: dueDate})
}

func (h *Handler) Return(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	itemUid, err := itemUidParam(c)
	if err != nil {
		return err
	}
	if err := h.lifecycleSvc.Return(c.Request().Context(), username, itemUid); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Loans(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	loans, err := h.lifecycleSvc.Loans(c.Request().Context(), username)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) ReservationEvents(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	events, err := h.recorderSvc.ReservationEvents(c.Request().Context(), username, recentLimit(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, events)
}
