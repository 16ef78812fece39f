package server

import (
	"errors"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// postRequest is the body for creating or replacing a post.
type postRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Excerpt   string `json:"excerpt"`
	Slug      string `json:"slug"`
	Author    string `json:"author" validate:"required"`
	Published bool   `json:"published"`
}

// resolveSlug returns the slug to store: the caller-supplied one when present
// (validated for URL safety), otherwise one derived from the title with a
// timestamp suffix.
func resolveSlug(c *fiber.Ctx, req *postRequest) (string, error) {
	if req.Slug == "" {
		return validation.GenerateSlug(req.Title), nil
	}
	if err := validation.ValidateSlug(req.Slug); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error(), "slug"))
		return "", errResponseWritten
	}
	return req.Slug, nil
}

// GetPosts handles GET /api/posts
// @Summary List published posts
// @Description Paginated listing of published posts with optional case-insensitive search over title and content
// @Tags posts
// @Produce json
// @Param page query int false "1-based page number"
// @Param limit query int false "page size (max 100)"
// @Param search query string false "substring filter"
// @Success 200 {object} models.PostPage
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	params := parseListQuery(c)

	posts, total, err := s.postRepo.List(c.Context(), params)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(buildPostPage(posts, total, params))
}

// GetAdminPosts handles GET /api/posts/admin, listing posts regardless of
// publication state. Requires the admin role.
func (s *Server) GetAdminPosts(c *fiber.Ctx) error {
	params := parseListQuery(c)
	params.IncludeUnpublished = true

	posts, total, err := s.postRepo.List(c.Context(), params)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(buildPostPage(posts, total, params))
}

// GetPost handles GET /api/posts/:slug
func (s *Server) GetPost(c *fiber.Ctx) error {
	slug := c.Params("slug")

	post, err := s.postRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if msgs := validateStruct(&req); msgs != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Validation failed", msgs...))
	}

	slug, err := resolveSlug(c, &req)
	if err != nil {
		return nil
	}

	post := &models.Post{
		Title:     req.Title,
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		Slug:      slug,
		Author:    req.Author,
		Published: req.Published,
	}

	if err := s.postRepo.Create(c.Context(), post); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewDuplicateSlugError())
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	middleware.PostsCreated.Inc()

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id, replacing the listed fields wholesale.
// The slug is regenerated from the title when not supplied.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if msgs := validateStruct(&req); msgs != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Validation failed", msgs...))
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	slug, err := resolveSlug(c, &req)
	if err != nil {
		return nil
	}

	previousSlug := post.Slug
	post.Title = req.Title
	post.Content = req.Content
	post.Excerpt = req.Excerpt
	post.Slug = slug
	post.Author = req.Author
	post.Published = req.Published

	if err := s.postRepo.Update(c.Context(), post, previousSlug); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewDuplicateSlugError())
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if err := s.postRepo.Delete(c.Context(), post); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
