package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
)

// fakeRedis implements the handful of commands the cache repository issues.
type fakeRedis struct {
	redis.Cmdable
	values   map[string]string
	ttls     map[string]time.Duration
	unlinked []string
	err      error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Unlink(_ context.Context, keys ...string) *redis.IntCmd {
	f.unlinked = append(f.unlinked, keys...)
	for _, key := range keys {
		delete(f.values, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestCacheRepositoryRoundTripUsesPrefix(t *testing.T) {
	client := newFakeRedis()
	repo := NewCacheRepository(client, "innouni:")
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "dash:stats:7", map[string]int{"active": 3}, time.Minute))
	assert.Equal(t, `{"active":3}`, client.values["innouni:dash:stats:7"])
	assert.Equal(t, time.Minute, client.ttls["innouni:dash:stats:7"])

	var out map[string]int
	require.NoError(t, repo.Get(ctx, "dash:stats:7", &out))
	assert.Equal(t, 3, out["active"])
}

func TestCacheRepositoryMissAndFailure(t *testing.T) {
	client := newFakeRedis()
	repo := NewCacheRepository(client, "")
	var out map[string]int

	err := repo.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	client.err = errors.New("i/o timeout")
	err = repo.Get(context.Background(), "absent", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)

	client.err = nil
	client.values["corrupt"] = "{"
	require.Error(t, repo.Get(context.Background(), "corrupt", &out))
}

func TestCacheRepositoryDelete(t *testing.T) {
	client := newFakeRedis()
	repo := NewCacheRepository(client, "p:")
	client.values["p:a"] = "1"

	require.NoError(t, repo.Delete(context.Background()))
	assert.Empty(t, client.unlinked)

	require.NoError(t, repo.Delete(context.Background(), "a", "b"))
	assert.Equal(t, []string{"p:a", "p:b"}, client.unlinked)
	assert.NotContains(t, client.values, "p:a")
}
