// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateSlug is returned when a write violates the unique constraint on posts.slug.
var ErrDuplicateSlug = errors.New("slug already exists")

// DefaultPageSize is the listing page size when the client does not supply one.
const DefaultPageSize = 10

// ListParams describes a filtered, paginated post listing request.
// Page is 1-based; callers are expected to clamp both bounds beforehand.
type ListParams struct {
	Page               int
	Limit              int
	Search             string
	IncludeUnpublished bool
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, params ListParams) ([]models.Post, int64, error)
	Update(ctx context.Context, post *models.Post, previousSlug string) error
	Delete(ctx context.Context, post *models.Post) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// isDuplicateKey reports whether err is a unique constraint violation
// (SQLSTATE 23505, or GORM's translated form).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	cache.InvalidateFrontPage(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostSlugKey(slug), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// listPage is the cached shape of a front-page listing.
type listPage struct {
	Posts []models.Post `json:"posts"`
	Total int64         `json:"total"`
}

// List returns one page of posts plus the exact total count under the same
// filter predicate. The count query re-issues the predicate without ordering
// or pagination. Ordering is fixed: newest first.
func (r *postRepository) List(ctx context.Context, params ListParams) ([]models.Post, int64, error) {
	if r.isFrontPage(params) {
		var page listPage
		err := cache.Aside(ctx, cache.FrontPageKey(), &page, cache.FrontPageTTL, func() error {
			posts, total, ferr := r.list(ctx, params)
			if ferr != nil {
				return ferr
			}
			page = listPage{Posts: posts, Total: total}
			return nil
		})
		if err != nil {
			return nil, 0, err
		}
		return page.Posts, page.Total, nil
	}

	return r.list(ctx, params)
}

func (r *postRepository) isFrontPage(params ListParams) bool {
	return !params.IncludeUnpublished &&
		params.Page == 1 &&
		params.Limit == DefaultPageSize &&
		params.Search == ""
}

// likeEscaper neutralizes LIKE metacharacters so a search term is matched
// as a literal substring rather than a pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *postRepository) list(ctx context.Context, params ListParams) ([]models.Post, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Post{})
		if !params.IncludeUnpublished {
			q = q.Where("published = ?", true)
		}
		if params.Search != "" {
			like := "%" + escapeLike(params.Search) + "%"
			q = q.Where("title ILIKE ? OR content ILIKE ?", like, like)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []models.Post{}
	err := filtered().
		Order("created_at DESC").
		Limit(params.Limit).
		Offset((params.Page - 1) * params.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post, previousSlug string) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if previousSlug != "" && previousSlug != post.Slug {
		cache.InvalidatePost(ctx, previousSlug)
	}
	cache.InvalidatePost(ctx, post.Slug)
	cache.InvalidateFrontPage(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, post.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidatePost(ctx, post.Slug)
	cache.InvalidateFrontPage(ctx)
	return nil
}
