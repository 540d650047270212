package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/auth"
	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/service/admins"
	"github.com/Domenick1991/cinemabooking/internal/service/foods"
	"github.com/Domenick1991/cinemabooking/internal/service/movies"
	"github.com/Domenick1991/cinemabooking/internal/service/orders"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-secret"

type testServer struct {
	engine   *gin.Engine
	movies   *MockMovieUseCase
	foods    *MockFoodUseCase
	bookings *MockBookingUseCase
	orders   *MockOrderUseCase
	admins   *MockAdminUseCase
	buddies  *MockBuddyUseCase
}

func newTestServer(t *testing.T, swaggerDir string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		movies:   &MockMovieUseCase{},
		foods:    &MockFoodUseCase{},
		bookings: &MockBookingUseCase{},
		orders:   &MockOrderUseCase{},
		admins:   &MockAdminUseCase{},
		buddies:  &MockBuddyUseCase{},
	}
	s.engine = NewRouter(Handlers{
		Movies:   NewMovieHandler(s.movies),
		Foods:    NewFoodHandler(s.foods),
		Bookings: NewBookingHandler(s.bookings),
		Orders:   NewOrderHandler(s.orders),
		Admins:   NewAdminHandler(s.admins),
		Buddies:  NewBuddyHandler(s.buddies, nil),
	}, RouterConfig{JWTSecret: testSecret, SwaggerDir: swaggerDir})
	return s
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func adminToken(t *testing.T, id int64) string {
	t.Helper()
	tok, err := auth.NewAccessToken(testSecret, id, "admin@example.com", time.Hour)
	require.NoError(t, err)
	return tok.Token
}

func TestRouter_Healthz(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do("GET", "/healthz", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_Swagger(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, swaggerDocFile), []byte(`{"swagger":"2.0"}`), 0o644))
	s := newTestServer(t, dir)

	w := s.do("GET", "/swagger/"+swaggerDocFile, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"swagger":"2.0"}`, w.Body.String())

	w = s.do("GET", "/docs/index.html", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger")
}

func TestRouter_PublicMovies(t *testing.T) {
	s := newTestServer(t, "")
	list := []domain.Movie{{ID: 1, Title: "Dune", Status: domain.MovieStatusNowShowing}}

	s.movies.On("List", mock.Anything).Return(list, nil).Once()
	s.movies.On("GetByID", mock.Anything, int64(1)).Return(&list[0], nil).Once()
	s.movies.On("GetBySlug", mock.Anything, "dune").Return(&list[0], nil).Once()
	s.movies.On("ListByStatus", mock.Anything, "NowShowing").Return(list, nil).Once()
	s.movies.On("ListByStatus", mock.Anything, "Archived").Return(nil, fmt.Errorf("%w: unknown", domain.ErrValidation)).Once()
	s.movies.On("GetByID", mock.Anything, int64(2)).Return(nil, domain.ErrNotFound).Once()

	assert.Equal(t, http.StatusOK, s.do("GET", "/api/movies", nil, "").Code)
	assert.Equal(t, http.StatusOK, s.do("GET", "/api/movies/1", nil, "").Code)
	assert.Equal(t, http.StatusOK, s.do("GET", "/api/movies/slug/dune", nil, "").Code)
	assert.Equal(t, http.StatusOK, s.do("GET", "/api/movies/status/NowShowing", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/api/movies/status/Archived", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/movies/2", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/api/movies/abc", nil, "").Code)
	s.movies.AssertExpectations(t)
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	s := newTestServer(t, "")
	other, err := auth.NewAccessToken("other-secret", 1, "x@example.com", time.Hour)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "garbage"},
		{"wrong secret", other.Token},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do("POST", "/api/admin/movies", map[string]any{"title": "X"}, tc.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
	s.movies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRouter_AdminMovies(t *testing.T) {
	s := newTestServer(t, "")
	token := adminToken(t, 1)

	input := movies.CreateMovieInput{Title: "Dune", DurationMinutes: 155, ReleaseDate: "2025-06-01"}
	created := &domain.Movie{ID: 5, Title: "Dune", Slug: "dune", Status: domain.MovieStatusNowShowing}
	s.movies.On("Create", mock.Anything, input).Return(created, nil).Once()
	s.movies.On("Delete", mock.Anything, int64(5)).Return(nil).Once()
	s.movies.On("RefreshStatuses", mock.Anything).Return(3, nil).Once()

	w := s.do("POST", "/api/admin/movies", input, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var got domain.Movie
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.MovieStatusNowShowing, got.Status)

	assert.Equal(t, http.StatusNoContent, s.do("DELETE", "/api/admin/movies/5", nil, token).Code)

	w = s.do("POST", "/api/admin/movies/refresh-status", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"changed":3}`, w.Body.String())
	s.movies.AssertExpectations(t)
}

func TestRouter_AdminMovieUpdateIgnoresStatus(t *testing.T) {
	s := newTestServer(t, "")
	token := adminToken(t, 1)

	title := "Dune: Part Two"
	s.movies.On("Update", mock.Anything, int64(5), movies.UpdateMovieInput{Title: &title}).
		Return(&domain.Movie{ID: 5, Title: title, Status: domain.MovieStatusUpcoming}, nil).Once()

	w := s.do("PUT", "/api/admin/movies/5", map[string]any{"title": title, "status": "Ended"}, token)

	assert.Equal(t, http.StatusOK, w.Code)
	s.movies.AssertExpectations(t)
}

func TestRouter_Foods(t *testing.T) {
	s := newTestServer(t, "")
	token := adminToken(t, 1)

	s.foods.On("ListAvailable", mock.Anything).Return([]domain.Food{{ID: 1, Available: true}}, nil).Once()
	s.foods.On("List", mock.Anything).Return([]domain.Food{{ID: 1}, {ID: 2}}, nil).Once()
	s.foods.On("Create", mock.Anything, foods.CreateFoodInput{Name: "Popcorn", Category: "snacks", PriceCents: 450}).
		Return(&domain.Food{ID: 3, Name: "Popcorn"}, nil).Once()
	s.foods.On("Delete", mock.Anything, int64(3)).Return(domain.ErrNotFound).Once()

	assert.Equal(t, http.StatusOK, s.do("GET", "/api/foods", nil, "").Code)
	assert.Equal(t, http.StatusOK, s.do("GET", "/api/admin/foods", nil, token).Code)
	assert.Equal(t, http.StatusCreated, s.do("POST", "/api/admin/foods",
		foods.CreateFoodInput{Name: "Popcorn", Category: "snacks", PriceCents: 450}, token).Code)
	assert.Equal(t, http.StatusNotFound, s.do("DELETE", "/api/admin/foods/3", nil, token).Code)
	s.foods.AssertExpectations(t)
}

func TestRouter_Orders(t *testing.T) {
	s := newTestServer(t, "")
	token := adminToken(t, 1)

	input := orders.CreateOrderInput{
		CustomerName: "Ann",
		Email:        "ann@example.com",
		Items:        []orders.OrderItemInput{{FoodID: 1, Quantity: 2}},
	}
	s.orders.On("CreateOrder", mock.Anything, input).Return(&domain.Order{ID: 8, TotalCents: 900}, nil).Once()
	s.orders.On("GetByID", mock.Anything, int64(8)).Return(&domain.Order{ID: 8}, nil).Once()
	s.orders.On("UpdateStatus", mock.Anything, int64(8), "DELIVERED").Return(nil, domain.ErrInvalidTransition).Once()
	s.orders.On("UpdateStatus", mock.Anything, int64(8), "PREPARING").Return(&domain.Order{ID: 8, Status: domain.OrderStatusPreparing}, nil).Once()

	assert.Equal(t, http.StatusCreated, s.do("POST", "/api/orders", input, "").Code)
	assert.Equal(t, http.StatusOK, s.do("GET", "/api/orders/8", nil, "").Code)
	assert.Equal(t, http.StatusConflict, s.do("PATCH", "/api/admin/orders/8/status", map[string]string{"status": "DELIVERED"}, token).Code)
	assert.Equal(t, http.StatusOK, s.do("PATCH", "/api/admin/orders/8/status", map[string]string{"status": "PREPARING"}, token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do("PATCH", "/api/admin/orders/8/status", map[string]string{}, token).Code)
	s.orders.AssertExpectations(t)
}

func TestRouter_LoginAndAccounts(t *testing.T) {
	s := newTestServer(t, "")
	token := adminToken(t, 7)

	s.admins.On("Login", mock.Anything, admins.LoginInput{Email: "a@example.com", Password: "bad"}).
		Return(nil, domain.ErrUnauthorized).Once()
	s.admins.On("Login", mock.Anything, admins.LoginInput{Email: "a@example.com", Password: "good-password"}).
		Return(&auth.AccessToken{Token: "jwt"}, nil).Once()
	s.admins.On("Delete", mock.Anything, int64(7), int64(7)).Return(fmt.Errorf("%w: self", domain.ErrValidation)).Once()
	s.admins.On("Delete", mock.Anything, int64(7), int64(9)).Return(nil).Once()
	s.admins.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict).Once()

	w := s.do("POST", "/api/auth/login", admins.LoginInput{Email: "a@example.com", Password: "bad"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, w.Body.String())

	w = s.do("POST", "/api/auth/login", admins.LoginInput{Email: "a@example.com", Password: "good-password"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"jwt"`)

	assert.Equal(t, http.StatusBadRequest, s.do("DELETE", "/api/admin/accounts/7", nil, token).Code)
	assert.Equal(t, http.StatusNoContent, s.do("DELETE", "/api/admin/accounts/9", nil, token).Code)
	assert.Equal(t, http.StatusConflict, s.do("POST", "/api/admin/accounts",
		admins.CreateAdminInput{Name: "B", Email: "a@example.com", Password: "longenough"}, token).Code)
	s.admins.AssertExpectations(t)
}

func TestRouter_AdminBuddies(t *testing.T) {
	s := newTestServer(t, "")
	token := adminToken(t, 1)

	s.buddies.On("List", mock.Anything).Return([]domain.BuddyRequest{{ID: 1}}, nil).Once()
	s.buddies.On("GetByID", mock.Anything, int64(1)).Return(&domain.BuddyRequest{ID: 1}, nil).Once()

	assert.Equal(t, http.StatusOK, s.do("GET", "/api/admin/buddies", nil, token).Code)
	assert.Equal(t, http.StatusOK, s.do("GET", "/api/admin/buddies/1", nil, token).Code)
	s.buddies.AssertExpectations(t)
}

func TestRouter_InternalErrorsAreHidden(t *testing.T) {
	s := newTestServer(t, "")

	s.foods.On("ListAvailable", mock.Anything).Return([]domain.Food(nil), errors.New("pq: connection refused")).Once()

	w := s.do("GET", "/api/foods", nil, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("%w: bad", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrSeatTaken, http.StatusConflict},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
