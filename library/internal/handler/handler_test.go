package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkenzhe/library-service/library/internal/errs"
	"github.com/dkenzhe/library-service/library/internal/handler"
	"github.com/dkenzhe/library-service/library/internal/model"
	"github.com/dkenzhe/library-service/pkg/validate"

	service_mocks "github.com/dkenzhe/library-service/library/internal/handler/mocks"
)

func newTestRouter(t *testing.T) (*echo.Echo, *service_mocks.MockLibraryService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	svc := service_mocks.NewMockLibraryService(c)
	log := zap.NewExample().Named("test")
	h := handler.New(svc, log)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.POST("/register", h.Register)
	e.GET("/users", h.ListUsers)
	e.GET("/users/:id", h.GetUser)
	return e, svc
}

func TestHandler_Register(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok. email normalized before service call",
			body: `{"name":"Al","email":" A@B.COM ","password":"Abcdef1","role":"STUDENT"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					Register(context.Background(), model.RegisterInput{
						Name: "Al", Email: "a@b.com", Password: "Abcdef1", Role: model.RoleStudent,
					}).
					Return(model.User{
						ID: 1, Name: "Al", Email: "a@b.com", Role: model.RoleStudent,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"name":"Al","email":"a@b.com","role":"STUDENT","createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}`,
			},
		},
		{
			name:         "err. weak password reported per field",
			body:         `{"name":"Al","email":"a@b.com","password":"abcdef1","role":"STUDENT"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":{"errors":[{"field":"password","message":"must be 6-128 characters with at least one lowercase letter, one uppercase letter and one digit"}]}}`,
			},
		},
		{
			name: "err. duplicate email",
			body: `{"name":"Al","email":"a@b.com","password":"Abcdef1","role":"STUDENT"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					Register(context.Background(), gomock.Any()).
					Return(model.User{}, errs.ErrEmailTaken)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"email is already registered"}`,
			},
		},
		{
			name: "err. internal",
			body: `{"name":"Al","email":"a@b.com","password":"Abcdef1","role":"STUDENT"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					Register(context.Background(), gomock.Any()).
					Return(model.User{}, errors.New("db internal"))
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
			e, svc := newTestRouter(t)

			r := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ListUsers(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok. defaults applied when params absent",
			target: "/users",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					ListUsers(context.Background(), model.UserQuery{Page: 1, Limit: 10}).
					Return(model.ListUsers{
						Paging: model.Paging{Page: 1, PageSize: 10, TotalElements: 1},
						Items: []model.User{
							{ID: 7, Name: "Al", Email: "a@b.com", Role: model.RoleStudent},
						},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":10,"totalElements":1,"items":[{"id":7,"name":"Al","email":"a@b.com","role":"STUDENT","createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}]}`,
			},
		},
		{
			name:         "err. page must parse before defaulting",
			target:       "/users?page=abc",
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":{"errors":[{"field":"page","message":"must be a positive integer"}]}}`,
			},
		},
		{
			name:         "err. limit above cap",
			target:       "/users?limit=150",
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":{"errors":[{"field":"limit","message":"must be an integer between 1 and 100"}]}}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetUser(t *testing.T) {
	t.Parallel()

	t.Run("err. id must be a positive integer", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestRouter(t)

		r := httptest.NewRequest(http.MethodGet, "/users/-5", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t,
			`{"message":{"errors":[{"field":"id","message":"must be a positive integer"}]}}`,
			strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("err. not found", func(t *testing.T) {
		t.Parallel()
		e, svc := newTestRouter(t)
		svc.EXPECT().
			GetUser(context.Background(), 7).
			Return(model.User{}, errs.ErrNotFound)

		r := httptest.NewRequest(http.MethodGet, "/users/7", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
