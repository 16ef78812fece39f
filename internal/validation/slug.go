// Package validation contains input validation helpers shared by handlers.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slugStripRegex    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRegex    = regexp.MustCompile(`\s+`)
	slugCollapseRegex = regexp.MustCompile(`-+`)
	slugFormatRegex   = regexp.MustCompile(`^[a-z0-9-]{1,255}$`)
)

// SlugifyTitle derives the URL-safe base of a slug from a post title:
// lowercase, strip everything outside [a-z0-9\s-], turn whitespace runs into
// single hyphens, collapse repeated hyphens, and trim leading/trailing hyphens.
func SlugifyTitle(title string) string {
	s := strings.ToLower(title)
	s = slugStripRegex.ReplaceAllString(s, "")
	s = slugSpaceRegex.ReplaceAllString(s, "-")
	s = slugCollapseRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GenerateSlug produces a slug for the given title with a wall-clock millisecond
// suffix to disambiguate identical titles. Uniqueness is ultimately enforced by
// the database's unique constraint; a same-millisecond collision surfaces as a
// duplicate-slug error to the caller.
func GenerateSlug(title string) string {
	return GenerateSlugAt(title, time.Now())
}

// GenerateSlugAt is GenerateSlug with an explicit timestamp.
func GenerateSlugAt(title string, now time.Time) string {
	base := SlugifyTitle(title)
	suffix := strconv.FormatInt(now.UnixMilli(), 10)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// reservedSlugs are path segments under /api/posts that belong to routes,
// so a post may never claim them.
var reservedSlugs = map[string]struct{}{
	"admin":  {},
	"search": {},
}

// ValidateSlug checks a caller-supplied slug for URL safety and reserved names.
func ValidateSlug(slug string) error {
	if !slugFormatRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 1-255 characters and contain only lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}
	if _, exists := reservedSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}
	return nil
}
