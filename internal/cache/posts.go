package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	postSlugKeyPrefix = "post:slug:%s"
	// frontPageKey caches the default unauthenticated listing (page 1, no search).
	frontPageKey = "posts:front"
)

const (
	PostTTL      = 30 * time.Minute
	FrontPageTTL = 2 * time.Minute
)

func PostSlugKey(slug string) string {
	return fmt.Sprintf(postSlugKeyPrefix, slug)
}

func FrontPageKey() string {
	return frontPageKey
}

func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostSlugKey(slug))
}

func InvalidateFrontPage(ctx context.Context) {
	Invalidate(ctx, frontPageKey)
}
