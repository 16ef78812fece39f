package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	t.Cleanup(func() { client = nil })
	require.NotNil(t, client, "miniredis should be reachable")
	return mr
}

func TestGetSetJSON_RoundTrip(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "thing:1", cachedThing{Name: "a", Count: 2}, time.Minute))

	var got cachedThing
	found, err := GetJSON(ctx, "thing:1", &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedThing{Name: "a", Count: 2}, got)
}

func TestGetJSON_Miss(t *testing.T) {
	withMiniredis(t)

	var got cachedThing
	found, err := GetJSON(context.Background(), "missing", &got)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_NilClientIsMiss(t *testing.T) {
	client = nil

	var got cachedThing
	found, err := GetJSON(context.Background(), "anything", &got)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestAside_FetchesOnceThenServesFromCache(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			*dest = cachedThing{Name: "fetched", Count: calls}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "aside:1", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "fetched", first.Name)

	var second cachedThing
	require.NoError(t, Aside(ctx, "aside:1", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls, "second read should hit the cache")
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorPropagates(t *testing.T) {
	withMiniredis(t)

	wantErr := errors.New("db down")
	var dest cachedThing
	err := Aside(context.Background(), "aside:err", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestAside_NilClientAlwaysFetches(t *testing.T) {
	client = nil

	calls := 0
	var dest cachedThing
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), "aside:nil", &dest, time.Minute, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}

func TestInvalidate(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostSlugKey("my-post-1700000000000"), cachedThing{Name: "post"}, time.Minute))
	require.True(t, mr.Exists(PostSlugKey("my-post-1700000000000")))

	InvalidatePost(ctx, "my-post-1700000000000")
	assert.False(t, mr.Exists(PostSlugKey("my-post-1700000000000")))
}

func TestInvalidateFrontPage(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, FrontPageKey(), cachedThing{Name: "page"}, time.Minute))
	InvalidateFrontPage(ctx)
	assert.False(t, mr.Exists(FrontPageKey()))
}
