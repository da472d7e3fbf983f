package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiai/config"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found, "missing key should not be found")

	require.NoError(t, s.Set(ctx, "greeting", "hello"))
	value, found, err := s.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", value)

	require.NoError(t, s.Set(ctx, "greeting", "olá"))
	value, _, err = s.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "olá", value, "set should replace the previous value")

	require.NoError(t, s.Set(ctx, "empty", ""))
	value, found, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, found, "empty string is a stored value")
	assert.Equal(t, "", value)

	require.NoError(t, s.Remove(ctx, "greeting"))
	_, found, err = s.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.False(t, found, "removed key should not be found")

	require.NoError(t, s.Remove(ctx, "never-set"), "removing a missing key is not an error")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)

	require.NoError(t, s.Close())
	_, _, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	t.Run("persists across reopen", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "kept", "yes"))
		require.NoError(t, s.Close())

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		value, found, err := reopened.Get(ctx, "kept")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "yes", value)
	})

	t.Run("file is user only", func(t *testing.T) {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{trunc"), 0600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Get(ctx, "multiAI_chats_v2")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "multiAI_chats_v2", "[]"))
	v, found, err := s.Get(ctx, "multiAI_chats_v2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", v)

	aside, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, aside, 1)
	data, err := os.ReadFile(aside[0])
	require.NoError(t, err)
	assert.Equal(t, "{trunc", string(data))
}

func TestFileStoreCorruptedWhileOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, os.WriteFile(path, []byte("{trunc"), 0600))

	require.NoError(t, s.Set(ctx, "multiAI_chats_v2", "[]"))
	require.NoError(t, s.Set(ctx, "multiAI_current_chat_v2", "x"))
	require.NoError(t, s.Remove(ctx, "missing"))

	v, found, err := s.Get(ctx, "multiAI_current_chat_v2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "x", v)
}

func TestOpenSurvivesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "store.json"), []byte("{trunc"), 0600))

	s, err := Open(context.Background(), config.StorageConfig{}, dir)
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Get(context.Background(), "multiAI_settings_v2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("MULTIAI_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MULTIAI_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	s := NewRedisStore(client, "multiai-test:"+t.Name()+":", 0)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSupabaseStore(t *testing.T) {
	url := os.Getenv("MULTIAI_TEST_SUPABASE_URL")
	key := os.Getenv("MULTIAI_TEST_SUPABASE_KEY")
	if url == "" || key == "" {
		t.Skip("MULTIAI_TEST_SUPABASE_URL / MULTIAI_TEST_SUPABASE_KEY not set")
	}

	s, err := NewSupabaseStore(url, key, "multiai-test:")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSupabaseStoreHonorsCancelledContext(t *testing.T) {
	// Nothing listens on this address; a request would fail differently
	s, err := NewSupabaseStore("http://127.0.0.1:1", "anon-key", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	assert.ErrorIs(t, s.Remove(ctx, "k"), context.Canceled)
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		storeType StoreType
		opts      []Option
		wantErr   error
	}{
		{name: "memory", storeType: StoreTypeMemory},
		{name: "file", storeType: StoreTypeFile, opts: []Option{WithPath(filepath.Join(dir, "s.json"))}},
		{name: "sqlite", storeType: StoreTypeSQLite, opts: []Option{WithPath(filepath.Join(dir, "s.db"))}},
		{name: "file without path", storeType: StoreTypeFile, wantErr: ErrInvalidConfig},
		{name: "sqlite without path", storeType: StoreTypeSQLite, wantErr: ErrInvalidConfig},
		{name: "redis without client", storeType: StoreTypeRedis, wantErr: ErrInvalidConfig},
		{name: "supabase without credentials", storeType: StoreTypeSupabase, wantErr: ErrInvalidConfig},
		{name: "unknown", storeType: StoreType("etcd"), wantErr: ErrInvalidStoreType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.storeType, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.NoError(t, s.Close())
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{}, dir)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s, "empty backend defaults to file")
	require.NoError(t, s.Close())

	s, err = Open(ctx, config.StorageConfig{Backend: "sqlite"}, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	assert.FileExists(t, filepath.Join(dir, "kv.db"))
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.StorageConfig{Backend: "redis"}, dir)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Open(ctx, config.StorageConfig{Backend: "bogus"}, dir)
	assert.ErrorIs(t, err, ErrInvalidStoreType)
}
