package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- parseListQuery ---

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected repository.ListParams
	}{
		{"Defaults", "", repository.ListParams{Page: 1, Limit: 10}},
		{"Explicit", "page=3&limit=20", repository.ListParams{Page: 3, Limit: 20}},
		{"Zero Page Clamped", "page=0", repository.ListParams{Page: 1, Limit: 10}},
		{"Negative Page Clamped", "page=-5", repository.ListParams{Page: 1, Limit: 10}},
		{"Zero Limit Falls Back", "limit=0", repository.ListParams{Page: 1, Limit: 10}},
		{"Oversized Limit Capped", "limit=9999", repository.ListParams{Page: 1, Limit: 100}},
		{"Non-Numeric Ignored", "page=abc&limit=xyz", repository.ListParams{Page: 1, Limit: 10}},
		{"Search Trimmed", "search=%20%20hello%20%20", repository.ListParams{Page: 1, Limit: 10, Search: "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got repository.ListParams
			app.Get("/posts", func(c *fiber.Ctx) error {
				got = parseListQuery(c)
				return c.SendStatus(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/posts?"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expected, got)
		})
	}
}

// --- buildPostPage ---

func TestBuildPostPage(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		page       int
		limit      int
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"Exact Multiple", 20, 1, 10, 2, true, false},
		{"Partial Last Page", 25, 3, 10, 3, false, true},
		{"Middle Page", 25, 2, 10, 3, true, true},
		{"Single Page", 7, 1, 10, 1, false, false},
		{"Empty", 0, 1, 10, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := buildPostPage([]models.Post{}, tt.total, repository.ListParams{Page: tt.page, Limit: tt.limit})
			assert.Equal(t, tt.page, page.Pagination.CurrentPage)
			assert.Equal(t, tt.totalPages, page.Pagination.TotalPages)
			assert.Equal(t, tt.total, page.Pagination.TotalPosts)
			assert.Equal(t, tt.hasNext, page.Pagination.HasNext)
			assert.Equal(t, tt.hasPrev, page.Pagination.HasPrev)
		})
	}
}

func TestBuildPostPage_JSONShape(t *testing.T) {
	page := buildPostPage([]models.Post{}, 25, repository.ListParams{Page: 2, Limit: 10})
	b, err := json.Marshal(page)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	meta, ok := raw["pagination"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"currentPage", "totalPages", "totalPosts", "hasNext", "hasPrev"} {
		assert.Contains(t, meta, key)
	}
}

// --- parseID ---

func TestParseID(t *testing.T) {
	tests := []struct {
		name           string
		param          string
		expectedStatus int
	}{
		{"Valid", "7", http.StatusOK},
		{"Zero", "0", http.StatusBadRequest},
		{"Negative", "-1", http.StatusBadRequest},
		{"Non-Numeric", "abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			s := &Server{}
			app.Get("/items/:id", func(c *fiber.Ctx) error {
				id, err := s.parseID(c, "id")
				if err != nil {
					return nil
				}
				return c.JSON(fiber.Map{"id": id})
			})

			req := httptest.NewRequest(http.MethodGet, "/items/"+tt.param, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

// --- validateStruct ---

func TestValidateStruct(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := postRequest{Title: "T", Content: "C", Author: "A"}
		assert.Nil(t, validateStruct(&req))
	})

	t.Run("Missing Required Fields", func(t *testing.T) {
		req := postRequest{}
		msgs := validateStruct(&req)
		assert.Contains(t, msgs, "title is required")
		assert.Contains(t, msgs, "content is required")
		assert.Contains(t, msgs, "author is required")
	})

	t.Run("Email And Length Messages", func(t *testing.T) {
		req := registerRequest{Username: "ab", Email: "nope", Password: "short"}
		msgs := validateStruct(&req)
		assert.Contains(t, msgs, "username must be at least 3 characters")
		assert.Contains(t, msgs, "email must be a valid email address")
		assert.Contains(t, msgs, "password must be at least 8 characters")
	})
}
