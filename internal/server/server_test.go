package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM handle backed by sqlmock with ping monitoring
// enabled so health checks can be exercised.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return gormDB, mock
}

func TestHealthCheck_Healthy(t *testing.T) {
	gormDB, dbMock := setupMockDB(t)
	dbMock.ExpectPing()

	s := &Server{config: testConfig(), db: gormDB}
	app := fiber.New()
	app.Get("/api/health", s.HealthCheck)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "disabled", body["redis"])
	assert.Equal(t, "test", body["environment"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	gormDB, dbMock := setupMockDB(t)
	dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))

	s := &Server{config: testConfig(), db: gormDB}
	app := fiber.New()
	app.Get("/api/health", s.HealthCheck)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ERROR", body["status"])
	assert.Equal(t, "disconnected", body["database"])
}

// TestRouteProtection wires the full route table and verifies which endpoints
// demand a bearer token.
func TestRouteProtection(t *testing.T) {
	gormDB, _ := setupMockDB(t)
	postRepo := new(MockPostRepository)
	postRepo.On("List", mock.Anything, mock.Anything).
		Return([]models.Post{}, int64(0), nil).Maybe()
	postRepo.On("GetBySlug", mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound).Maybe()

	s := &Server{
		config:   testConfig(),
		db:       gormDB,
		userRepo: new(MockUserRepository),
		postRepo: postRepo,
	}
	app := fiber.New()
	s.SetupRoutes(app)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"Public Listing", http.MethodGet, "/api/posts", http.StatusOK},
		{"Public Post By Slug", http.MethodGet, "/api/posts/some-slug", http.StatusNotFound},
		{"Admin Listing Needs Token", http.MethodGet, "/api/posts/admin", http.StatusUnauthorized},
		{"Create Needs Token", http.MethodPost, "/api/posts", http.StatusUnauthorized},
		{"Update Needs Token", http.MethodPut, "/api/posts/1", http.StatusUnauthorized},
		{"Delete Needs Token", http.MethodDelete, "/api/posts/1", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

// The /admin segment is a static route registered before /:slug, so an
// authenticated admin listing must never be treated as a slug lookup.
func TestAdminRouteNotShadowedBySlug(t *testing.T) {
	gormDB, _ := setupMockDB(t)

	admin := &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}
	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", mock.Anything, uint(1)).Return(admin, nil)

	postRepo := new(MockPostRepository)
	postRepo.On("List", mock.Anything, mock.Anything).
		Return([]models.Post{{ID: 1, Title: "Draft", Published: false}}, int64(1), nil)

	s := &Server{
		config:   testConfig(),
		db:       gormDB,
		userRepo: userRepo,
		postRepo: postRepo,
	}
	app := fiber.New()
	s.SetupRoutes(app)

	token, err := s.generateToken(admin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodePostPage(t, resp)
	require.Len(t, page.Posts, 1)
	assert.False(t, page.Posts[0].Published)
}
