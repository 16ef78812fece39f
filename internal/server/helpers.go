package server

import (
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxPageSize = 100

var validate = validator.New()

// parseListQuery extracts page/limit/search query parameters, clamping
// out-of-range values instead of rejecting them: page < 1 becomes 1,
// limit < 1 falls back to the default, limit > maxPageSize is capped.
func parseListQuery(c *fiber.Ctx) repository.ListParams {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	limit := c.QueryInt("limit", repository.DefaultPageSize)
	if limit < 1 {
		limit = repository.DefaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return repository.ListParams{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
	}
}

// buildPostPage assembles the listing envelope with pagination metadata.
func buildPostPage(posts []models.Post, total int64, params repository.ListParams) models.PostPage {
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	return models.PostPage{
		Posts: posts,
		Pagination: models.Pagination{
			CurrentPage: params.Page,
			TotalPages:  totalPages,
			TotalPosts:  total,
			HasNext:     params.Page < totalPages,
			HasPrev:     params.Page > 1,
		},
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// validateStruct runs validator tags on a request body and converts failures
// into field-level messages the client can show next to inputs.
func validateStruct(v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return messages
}
