package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/biblioenspy/biblio-service/internal/model"
)

func (h *Handler) ListItems(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	showAll, _ := strconv.ParseBool(c.QueryParam("showAll"))

	filter := model.CatalogFilter{
		Kind:     model.ItemKind(c.QueryParam("kind")),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		ShowAll:  showAll,
		Page:     page,
		Size:     size,
	}
	items, err := h.catalogSvc.ListItems(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetItem(c echo.Context) error {
	itemUid, err := itemUidParam(c)
	if err != nil {
		return err
	}
	item, err := h.catalogSvc.GetItem(c.Request().Context(), itemUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) ListComments(c echo.Context) error {
	itemUid, err := itemUidParam(c)
	if err != nil {
		return err
	}
	comments, err := h.catalogSvc.ListComments(c.Request().Context(), itemUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *Handler) AddComment(c echo.Context) error {
	username, err := userName(c)
	if err != nil {
		return err
	}
	itemUid, err := itemUidParam(c)
	if err != nil {
		return err
	}
	var req struct {
		Rating int    `json:"rating" validate:"required,min=1,max=5"`
		Text   string `json:"text" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	comment, err := h.catalogSvc.AddComment(c.Request().Context(), model.Comment{
		ItemUid: itemUid,
		Author:  username,
		Rating:  req.Rating,
		Text:    req.Text,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}
