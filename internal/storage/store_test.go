package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyAndPrefix(t *testing.T) {
	assert.Equal(t, "Forecast/La_Terrazza/2025/a.xlsx", Key("Forecast", "/La_Terrazza/", "2025", "a.xlsx"))
	assert.Equal(t, "Forecast/La_Terrazza/2025/", Prefix("Forecast", "La_Terrazza", "2025"))
	assert.Equal(t, "", Prefix())
	assert.Equal(t, "a.xlsx", ObjectInfo{Key: "x/y/a.xlsx"}.Name())
}

func exerciseStore(t *testing.T, s ObjectStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "Forecast/Lavagnini/2025/b.xlsx", []byte("bb")))
	require.NoError(t, s.Put(ctx, "Forecast/Lavagnini/2025/a.xlsx", []byte("a")))
	require.NoError(t, s.Put(ctx, "Forecast/Lavagnini/2024/old.xlsx", []byte("old")))
	require.NoError(t, s.Put(ctx, "History_Baseline/Lavagnini/2024/base.xlsx", []byte("base")))

	objs, err := s.List(ctx, "Forecast/Lavagnini/2025/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "Forecast/Lavagnini/2025/a.xlsx", objs[0].Key)
	assert.Equal(t, int64(1), objs[0].Size)
	assert.False(t, objs[1].LastModified.IsZero())

	objs, err = s.List(ctx, "Forecast/")
	require.NoError(t, err)
	assert.Len(t, objs, 3)

	objs, err = s.List(ctx, "Forecast/Missing/2025/")
	require.NoError(t, err)
	assert.Empty(t, objs)

	data, err := s.Get(ctx, "Forecast/Lavagnini/2025/b.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []byte("bb"), data)

	require.NoError(t, s.Put(ctx, "Forecast/Lavagnini/2025/b.xlsx", []byte("replaced")))
	data, err = s.Get(ctx, "Forecast/Lavagnini/2025/b.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), data)

	_, err = s.Get(ctx, "Forecast/Lavagnini/2025/none.xlsx")
	assert.True(t, IsNotFound(err))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.PutAt("k", []byte("v"), ts)
	objs, err := s.List(context.Background(), "k")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.True(t, ts.Equal(objs[0].LastModified))

	s.Delete("k")
	assert.Equal(t, 4, s.Len())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put(context.Background(), "k", buf))
	buf[0] = 'z'

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root, nil)
	require.NoError(t, err)
	exerciseStore(t, s)

	_, err = os.Stat(filepath.Join(root, "Forecast", "Lavagnini", "2025", "a.xlsx"))
	assert.NoError(t, err)
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	err = s.Put(context.Background(), "../outside.txt", []byte("x"))
	assert.Error(t, err)

	_, err = s.Get(context.Background(), "")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Root: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(ctx, Options{Backend: "ftp"}, nil)
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: "gcs"}, nil)
	assert.Error(t, err, "bucket is required")
}
