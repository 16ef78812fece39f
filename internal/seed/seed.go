// Package seed populates the database with development fixtures.
package seed

import (
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options controls how much data Run generates.
type Options struct {
	Posts         int
	AdminPassword string
}

// DefaultOptions returns the settings used by the seed command.
func DefaultOptions() Options {
	return Options{
		Posts:         25,
		AdminPassword: "admin-password",
	}
}

// Run inserts a default admin user, a regular user, and a batch of fake posts.
// Existing users (matched by username) are left untouched.
func Run(db *gorm.DB, opts Options) error {
	if err := seedUsers(db, opts); err != nil {
		return err
	}
	if err := seedPosts(db, opts); err != nil {
		return err
	}
	return nil
}

func seedUsers(db *gorm.DB, opts Options) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	users := []models.User{
		{Username: "admin", Email: "admin@example.com", PasswordHash: string(hash), Role: models.RoleAdmin},
		{Username: "author", Email: "author@example.com", PasswordHash: string(hash), Role: models.RoleUser},
	}

	for i := range users {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).Create(&users[i]).Error
		if err != nil {
			return fmt.Errorf("seeding user %s: %w", users[i].Username, err)
		}
	}

	middleware.Logger.Info("Seeded users", slog.Int("count", len(users)))
	return nil
}

func seedPosts(db *gorm.DB, opts Options) error {
	created := 0
	for i := 0; i < opts.Posts; i++ {
		title := strings.TrimSuffix(gofakeit.Sentence(gofakeit.Number(3, 7)), ".")
		post := models.Post{
			Title:     title,
			Content:   gofakeit.Paragraph(3, 5, 12, "\n\n"),
			Excerpt:   gofakeit.Sentence(12),
			Slug:      validation.GenerateSlug(title) + fmt.Sprintf("-%d", i),
			Author:    gofakeit.Name(),
			Published: gofakeit.Bool(),
		}
		if err := db.Create(&post).Error; err != nil {
			return fmt.Errorf("seeding post %d: %w", i, err)
		}
		created++
	}

	middleware.Logger.Info("Seeded posts", slog.Int("count", created))
	return nil
}
