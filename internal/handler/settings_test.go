package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/biblioenspy/biblio-service/internal/model"
	"github.com/biblioenspy/biblio-service/pkg/auth"

	service_mocks "github.com/biblioenspy/biblio-service/internal/handler/mocks"
)

func bearerToken(t *testing.T, username, role string) string {
	t.Helper()
	token, _, err := auth.NewToken(username, role, username+"@enspy.cm", true, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

// Settings mutation goes through the full router so the role gate on the
// route is exercised, not just the handler.
func TestHandler_UpdateSettings(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockSettingsService)

	body := `{"orgName":"BiblioENSPY","theme":"dark","maxLoans":5,"loanDurationDays":21}`

	var tests = []struct {
		name         string
		role         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok. teacher",
			role: "TEACHER",
			mockBehavior: func(r *service_mocks.MockSettingsService) {
				r.EXPECT().
					UpdateSettings(gomock.Any(), model.Settings{
						OrgName:          "BiblioENSPY",
						Theme:            "dark",
						MaxLoans:         5,
						LoanDurationDays: 21,
					}).
					Return(nil)
			},
			body:     body,
			response: response{expectedCode: http.StatusNoContent},
		},
		{
			name:         "err. student cannot change settings",
			role:         "STUDENT",
			mockBehavior: func(r *service_mocks.MockSettingsService) {},
			body:         body,
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"insufficient role"}`,
			},
		},
		{
			name:         "err. non-positive maxLoans",
			role:         "TEACHER",
			mockBehavior: func(r *service_mocks.MockSettingsService) {},
			body:         `{"orgName":"BiblioENSPY","theme":"dark","maxLoans":0,"loanDurationDays":21}`,
			response:     response{expectedCode: http.StatusBadRequest},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, h, m := newTestRouter(t)
			e := h.NewRouter()

			r := httptest.NewRequest(http.MethodPatch, "/api/v1/settings", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.Header.Set("Authorization", bearerToken(t, "alice", tt.role))
			w := httptest.NewRecorder()

			tt.mockBehavior(m.settings)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}
