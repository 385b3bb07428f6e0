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

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	InitRedis(mr.Addr())
	t.Cleanup(func() { client = nil })
	require.NotNil(t, client, "miniredis should be reachable")
	return mr
}

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestAside_MissThenHit(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedValue) func() error {
		return func() error {
			fetches++
			*dest = cachedValue{Name: "from-db", Count: 7}
			return nil
		}
	}

	var first cachedValue
	require.NoError(t, Aside(ctx, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "from-db", first.Name)
	assert.True(t, mr.Exists("k"))

	var second cachedValue
	require.NoError(t, Aside(ctx, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read must be served from cache")
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	var v cachedValue
	wantErr := errors.New("db down")
	err := Aside(ctx, "k", &v, time.Minute, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, mr.Exists("k"))
}

func TestAside_NilClientDegradesToFetch(t *testing.T) {
	client = nil

	fetched := false
	var v cachedValue
	err := Aside(context.Background(), "k", &v, time.Minute, func() error {
		fetched = true
		v = cachedValue{Name: "direct"}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, "direct", v.Name)
}

func TestInvalidate(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(PostKey("p1"), `{}`))
	require.NoError(t, mr.Set(FirstFeedKey, `[]`))

	InvalidatePost(ctx, "p1")
	InvalidateFeed(ctx)

	assert.False(t, mr.Exists(PostKey("p1")))
	assert.False(t, mr.Exists(FirstFeedKey))
}

func TestInitRedis_UnreachableLeavesCacheDisabled(t *testing.T) {
	InitRedis("127.0.0.1:1")
	assert.Nil(t, GetClient())
}
