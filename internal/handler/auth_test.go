package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/biblioenspy/biblio-service/internal/errs"
	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/internal/service"

	service_mocks "github.com/biblioenspy/biblio-service/internal/handler/mocks"
)

func TestHandler_Register(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Register(gomock.Any(), service.RegisterRequest{
						Username:   "alice",
						Email:      "alice@enspy.cm",
						Password:   "s3cret-pass",
						FullName:   "Alice Ngo",
						Status:     model.StatusStudent,
						Department: "GIT",
						Level:      "3",
					}).
					Return(nil)
			},
			body:     `{"username":"alice","email":"alice@enspy.cm","password":"s3cret-pass","fullName":"Alice Ngo","status":"STUDENT","department":"GIT","level":"3"}`,
			response: response{expectedCode: http.StatusCreated, expectedBody: "ok"},
		},
		{
			name: "err. duplicate",
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Register(gomock.Any(), gomock.Any()).
					Return(errs.ErrAlreadyRegistered)
			},
			body: `{"username":"alice","email":"alice@enspy.cm","password":"s3cret-pass","fullName":"Alice Ngo","status":"STUDENT"}`,
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"username or email already registered"}`,
			},
		},
		{
			name:         "err. short password",
			mockBehavior: func(r *service_mocks.MockAuthService) {},
			body:         `{"username":"alice","email":"alice@enspy.cm","password":"short","fullName":"Alice Ngo","status":"STUDENT"}`,
			response:     response{expectedCode: http.StatusBadRequest},
		},
		{
			name:         "err. bad status",
			mockBehavior: func(r *service_mocks.MockAuthService) {},
			body:         `{"username":"alice","email":"alice@enspy.cm","password":"s3cret-pass","fullName":"Alice Ngo","status":"ADMIN"}`,
			response:     response{expectedCode: http.StatusBadRequest},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, m := newTestRouter(t)
			e.POST("/auth/register", h.Register)

			r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(m.auth)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Login(gomock.Any(), "alice", "s3cret-pass").
					Return(service.AuthResponse{AccessToken: "token", ExpiresIn: 86400}, nil)
			},
			body: `{"username":"alice","password":"s3cret-pass"}`,
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"access_token":"token","expires_in":86400}`,
			},
		},
		{
			name: "err. bad credentials",
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Login(gomock.Any(), "alice", "wrong").
					Return(service.AuthResponse{}, errs.ErrInvalidCredentials)
			},
			body: `{"username":"alice","password":"wrong"}`,
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"invalid credentials"}`,
			},
		},
		{
			name:         "err. missing password",
			mockBehavior: func(r *service_mocks.MockAuthService) {},
			body:         `{"username":"alice"}`,
			response:     response{expectedCode: http.StatusBadRequest},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, m := newTestRouter(t)
			e.POST("/auth/login", h.Login)

			r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(m.auth)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_DeleteAccount(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().DeleteAccount(gomock.Any(), "alice").Return(nil)
			},
			response: response{expectedCode: http.StatusNoContent},
		},
		{
			name: "err. stale login",
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().DeleteAccount(gomock.Any(), "alice").Return(errs.ErrRequiresRecentLogin)
			},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"sensitive operation requires a recent login"}`,
			},
		},
		{
			name: "err. active loans",
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().DeleteAccount(gomock.Any(), "alice").Return(errs.ErrPermissionDenied)
			},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"permission denied"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, m := newTestRouter(t)
			e.DELETE("/auth/account", h.DeleteAccount, asUser("alice"))

			r := httptest.NewRequest(http.MethodDelete, "/auth/account", http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(m.auth)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}
