package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"

	service_mocks "github.com/biblioenspy/biblio-service/internal/handler/mocks"
)

func TestHandler_ListItems(t *testing.T) {
	t.Parallel()
	type input struct {
		kind       string
		category   string
		page, size int
		showAll    bool
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService, req input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCatalogService, req input) {
				r.EXPECT().
					ListItems(gomock.Any(), model.CatalogFilter{
						Kind:     model.ItemKind(req.kind),
						Category: req.category,
						ShowAll:  req.showAll,
						Page:     req.page,
						Size:     req.size,
					}).
					Return(model.ListItems{
						Paging: model.Paging{
							Page:          req.page,
							PageSize:      req.size,
							TotalElements: 1,
						},
						Items: []model.CatalogItem{
							{
								ItemUid:         "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
								Kind:            model.KindBook,
								Title:           "Analyse numérique",
								Author:          "J. Tagoudjeu",
								Category:        "mathematiques",
								Shelf:           "B-12",
								InitialCopies:   4,
								AvailableCopies: 2,
							},
						},
					}, nil)
			},
			input: input{
				kind:     "BOOK",
				category: "mathematiques",
				page:     1,
				size:     20,
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":20,"totalElements":1,"items":[{"itemUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","kind":"BOOK","title":"Analyse numérique","author":"J. Tagoudjeu","category":"mathematiques","shelf":"B-12","initialCopies":4,"availableCopies":2,"description":"","imageUrl":""}]}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockCatalogService, req input) {
				r.EXPECT().
					ListItems(gomock.Any(), model.CatalogFilter{
						Kind:     model.ItemKind(req.kind),
						Category: req.category,
						ShowAll:  req.showAll,
						Page:     req.page,
						Size:     req.size,
					}).
					Return(model.ListItems{}, errors.New("db internal"))
			},
			input: input{kind: "BOOK"},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, m := newTestRouter(t)
			e.GET("/catalog/items", h.ListItems)

			r := httptest.NewRequest(http.MethodGet,
				fmt.Sprintf("/catalog/items?kind=%s&category=%s&page=%d&size=%d&showAll=%v",
					tt.input.kind, tt.input.category, tt.input.page, tt.input.size, tt.input.showAll),
				http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(m.catalog, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetItem(t *testing.T) {
	t.Parallel()
	itemUid := "f7cdc58f-2caf-4b15-9727-f89dcc629b27"

	e, h, m := newTestRouter(t)
	e.GET("/catalog/items/:itemUid", h.GetItem)

	m.catalog.EXPECT().
		GetItem(gomock.Any(), itemUid).
		Return(model.CatalogItem{}, errs.ErrNotFound)

	r := httptest.NewRequest(http.MethodGet, "/catalog/items/"+itemUid, http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, `{"message":"not found"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_GetItem_InvalidItemUid(t *testing.T) {
	t.Parallel()
	e, h, _ := newTestRouter(t)
	e.GET("/catalog/items/:itemUid", h.GetItem)

	r := httptest.NewRequest(http.MethodGet, "/catalog/items/abc", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, `{"message":"itemUid must be a uuid"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_AddComment(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
	}
	type mockBehavior func(r *service_mocks.MockCatalogService)

	itemUid := "f7cdc58f-2caf-4b15-9727-f89dcc629b27"

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					AddComment(gomock.Any(), model.Comment{
						ItemUid: itemUid,
						Author:  "alice",
						Rating:  5,
						Text:    "très utile",
					}).
					Return(model.Comment{
						ID:      1,
						ItemUid: itemUid,
						Author:  "alice",
						Rating:  5,
						Text:    "très utile",
					}, nil)
			},
			body:     `{"rating":5,"text":"très utile"}`,
			response: response{expectedCode: http.StatusCreated},
		},
		{
			name:         "err. rating out of range",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			body:         `{"rating":6,"text":"x"}`,
			response:     response{expectedCode: http.StatusBadRequest},
		},
		{
			name:         "err. empty text",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			body:         `{"rating":3}`,
			response:     response{expectedCode: http.StatusBadRequest},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, m := newTestRouter(t)
			e.POST("/catalog/items/:itemUid/comments", h.AddComment, asUser("alice"))

			r := httptest.NewRequest(http.MethodPost, "/catalog/items/"+itemUid+"/comments", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(m.catalog)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
		})
	}
}
