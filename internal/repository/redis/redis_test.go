package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/imageboard/internal/repository"
)

func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := New("redis://"+s.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, s
}

func TestNew_BadURL(t *testing.T) {
	_, err := New("not a url", "")
	assert.Error(t, err)
}

func TestStore_ReadMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Read(context.Background(), "threads.json")

	assert.ErrorIs(t, err, repository.ErrNoDocument)
}

func TestStore_WriteThenRead(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "threads.json", []byte("[]\n")))

	data, err := store.Read(ctx, "threads.json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	raw, err := s.Get(DefaultPrefix + "threads.json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", raw)
	assert.Zero(t, s.TTL(DefaultPrefix+"threads.json"))
}

func TestNewWithClient_CustomPrefix(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewWithClient(client, "board:")
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Write(context.Background(), "upload_history.json", []byte("[]")))

	assert.True(t, s.Exists("board:upload_history.json"))
}
