package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/handler"
	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/pkg/auth"
	"github.com/biblioenspy/biblio-service/pkg/validate"

	service_mocks "github.com/biblioenspy/biblio-service/internal/handler/mocks"
)

type mocks struct {
	lifecycle *service_mocks.MockLifecycleService
	auth      *service_mocks.MockAuthService
	catalog   *service_mocks.MockCatalogService
	stats     *service_mocks.MockStatsService
	recorder  *service_mocks.MockRecorderService
	settings  *service_mocks.MockSettingsService
	uploader  *service_mocks.MockUploader
}

func newTestRouter(t *testing.T) (*echo.Echo, *handler.Handler, mocks) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	m := mocks{
		lifecycle: service_mocks.NewMockLifecycleService(c),
		auth:      service_mocks.NewMockAuthService(c),
		catalog:   service_mocks.NewMockCatalogService(c),
		stats:     service_mocks.NewMockStatsService(c),
		recorder:  service_mocks.NewMockRecorderService(c),
		settings:  service_mocks.NewMockSettingsService(c),
		uploader:  service_mocks.NewMockUploader(c),
	}
	log := zap.NewExample().Named("test")
	h := handler.New(m.lifecycle, m.auth, m.catalog, m.stats, m.recorder, m.settings, m.uploader, log)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	return e, h, m
}

// asUser stands in for the jwt middleware in tests.
func asUser(username string) echo.MiddlewareFunc {
	return asRole(username, "STUDENT")
}

func asRole(username, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := auth.SetAuthContext(req.Context(), username, role, true)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func TestHandler_Reserve(t *testing.T) {
	t.Parallel()
	type input struct {
		username string
		body     string
		itemUid  string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLifecycleService, req input)

	itemUid := "f7cdc58f-2caf-4b15-9727-f89dcc629b27"
	itemName := "Algorithmique avancée"
	category := "informatique"

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLifecycleService, req input) {
				r.EXPECT().
					Reserve(gomock.Any(), req.username, req.itemUid).
					Return(model.LoanSlot{
						SlotIndex: 0,
						State:     model.SlotReserved,
						ItemUid:   &itemUid,
						ItemName:  &itemName,
						Category:  &category,
					}, nil)
			},
			input: input{
				username: "alice",
				body:     `{"itemUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27"}`,
				itemUid:  itemUid,
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"slotIndex":0,"state":"RESERVED","itemUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","itemName":"Algorithmique avancée","category":"informatique"}`,
			},
		},
		{
			name: "err. no free slot",
			mockBehavior: func(r *service_mocks.MockLifecycleService, req input) {
				r.EXPECT().
					Reserve(gomock.Any(), req.username, req.itemUid).
					Return(model.LoanSlot{}, errs.ErrCapacityExceeded)
			},
			input: input{
				username: "alice",
				body:     `{"itemUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27"}`,
				itemUid:  itemUid,
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"no free loan slot left"}`,
			},
			wantErr: true,
		},
		{
			name: "err. no copies",
			mockBehavior: func(r *service_mocks.MockLifecycleService, req input) {
				r.EXPECT().
					Reserve(gomock.Any(), req.username, req.itemUid).
					Return(model.LoanSlot{}, errs.ErrItemUnavailable)
			},
			input: input{
				username: "alice",
				body:     `{"itemUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27"}`,
				itemUid:  itemUid,
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"no copies of this item are available"}`,
			},
			wantErr: true,
		},
		{
			name: "err. not verified",
			mockBehavior: func(r *service_mocks.MockLifecycleService, req input) {
				r.EXPECT().
					Reserve(gomock.Any(), req.username, req.itemUid).
					Return(model.LoanSlot{}, errs.ErrNotVerified)
			},
			input: input{
				username: "alice",
				body:     `{"itemUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27"}`,
				itemUid:  itemUid,
			},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"email address is not verified"}`,
			},
			wantErr: true,
		},
		{
			name:         "err. itemUid not a uuid",
			mockBehavior: func(r *service_mocks.MockLifecycleService, req input) {},
			input: input{
				username: "alice",
				body:     `{"itemUid":"not-a-uuid"}`,
			},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, m := newTestRouter(t)
			e.POST("/reservations", h.Reserve, asUser(tt.input.username))

			r := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(tt.input.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(m.lifecycle, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_Cancel(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLifecycleService)

	itemUid := "f7cdc58f-2caf-4b15-9727-f89dcc629b27"

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLifecycleService) {
				r.EXPECT().
					Cancel(gomock.Any(), "alice", itemUid).
					Return(nil)
			},
			response: response{expectedCode: http.StatusNoContent},
		},
		{
			name: "err. nothing reserved",
			mockBehavior: func(r *service_mocks.MockLifecycleService) {
				r.EXPECT().
					Cancel(gomock.Any(), "alice", itemUid).
					Return(errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockLifecycleService) {
				r.EXPECT().
					Cancel(gomock.Any(), "alice", itemUid).
					Return(errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, m := newTestRouter(t)
			e.DELETE("/reservations/:itemUid", h.Cancel, asUser("alice"))

			r := httptest.NewRequest(http.MethodDelete, "/reservations/"+itemUid, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(m.lifecycle)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_Cancel_InvalidItemUid(t *testing.T) {
	t.Parallel()
	// a malformed uid must be rejected before it reaches the store
	e, h, _ := newTestRouter(t)
	e.DELETE("/reservations/:itemUid", h.Cancel, asUser("alice"))
	e.POST("/reservations/:itemUid/borrow", h.MarkBorrowed, asUser("alice"))
	e.POST("/reservations/:itemUid/return", h.Return, asUser("alice"))

	for _, target := range []struct {
		method, path string
	}{
		{http.MethodDelete, "/reservations/abc"},
		{http.MethodPost, "/reservations/abc/borrow"},
		{http.MethodPost, "/reservations/abc/return"},
	} {
		r := httptest.NewRequest(target.method, target.path, http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, `{"message":"itemUid must be a uuid"}`, strings.Trim(w.Body.String(), "\n"))
	}
}

func TestHandler_Loans_Unauthenticated(t *testing.T) {
	t.Parallel()
	e, h, _ := newTestRouter(t)
	e.GET("/reservations", h.Loans)

	r := httptest.NewRequest(http.MethodGet, "/reservations", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
