package integrity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mod-sync/core/database"
	"mod-sync/core/history"
	"mod-sync/core/inventory"
	"mod-sync/core/modhash"
	"mod-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	mods   string
	cache  *inventory.CacheStore
	ledger *history.Store
	client *mocks.Client
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	return &env{
		mods:   filepath.Join(t.TempDir(), "mods"),
		cache:  inventory.NewCacheStore(t.TempDir(), zap.NewNop()),
		ledger: history.NewStore(db, zap.NewNop()),
		client: new(mocks.Client),
	}
}

func (e *env) options(withMirror bool) Options {
	opts := Options{
		ModsFolder: e.mods,
		Backups:    true,
		Cache:      e.cache,
		History:    e.ledger,
		Bucket:     "mods",
		Expected: func(context.Context) ([]string, error) {
			return []string{"FS25_a"}, nil
		},
	}
	if withMirror {
		opts.Storage = e.client
	}
	return opts
}

func TestService_CheckAll(t *testing.T) {
	e := newEnv(t)
	svc := NewService(e.options(true), zap.NewNop())
	ctx := context.Background()

	e.client.On("BucketExists", mock.Anything, "mods").Return(false, nil).Once()

	report := svc.CheckAll(ctx, false)
	assert.False(t, report.Healthy())
	assert.Equal(t, "issues", report["structure"].Status)
	assert.Equal(t, "ok", report["temp"].Status)
	assert.Equal(t, "ok", report["cache"].Status)
	assert.Equal(t, "issues", report["history"].Status)
	assert.Equal(t, "issues", report["mirror"].Status)

	e.client.On("BucketExists", mock.Anything, "mods").Return(false, nil).Twice()
	e.client.On("MakeBucket", mock.Anything, "mods", mock.Anything).Return(nil).Once()

	report = svc.CheckAll(ctx, true)
	assert.Equal(t, "fixed", report["structure"].Status)
	assert.Equal(t, "fixed", report["history"].Status)
	assert.Equal(t, "fixed", report["mirror"].Status)
	assert.DirExists(t, filepath.Join(e.mods, "_backup"))

	e.client.On("BucketExists", mock.Anything, "mods").Return(true, nil)
	e.client.On("ListObjects", mock.Anything, "mods", mock.Anything).Return(objects("FS25_a.zip"))

	report = svc.CheckAll(ctx, false)
	assert.True(t, report.Healthy(), "%+v", report)
	e.client.AssertExpectations(t)
}

func TestService_CheckAll_MirrorDisabled(t *testing.T) {
	e := newEnv(t)
	svc := NewService(e.options(false), zap.NewNop())

	report := svc.CheckAll(context.Background(), false)
	assert.Equal(t, "skipped", report["mirror"].Status)

	_, err := svc.CheckMirror(context.Background())
	assert.ErrorIs(t, err, ErrMirrorDisabled)
	assert.ErrorIs(t, svc.FixMirror(context.Background()), ErrMirrorDisabled)
}

func TestService_HistoryDisabled(t *testing.T) {
	e := newEnv(t)
	opts := e.options(false)
	opts.History = history.NewStore(nil, zap.NewNop())
	svc := NewService(opts, zap.NewNop())

	_, err := svc.CheckHistory()
	assert.ErrorIs(t, err, history.ErrUnavailable)
	assert.Equal(t, "skipped", svc.CheckAll(context.Background(), false)["history"].Status)
}

func TestService_Temp(t *testing.T) {
	e := newEnv(t)
	svc := NewService(e.options(false), zap.NewNop())
	require.NoError(t, os.MkdirAll(e.mods, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.mods, "FS25_a.zip.tmp"), []byte("partial"), 0o644))

	report := svc.CheckAll(context.Background(), true)
	assert.Equal(t, "fixed", report["temp"].Status)
	assert.NoFileExists(t, filepath.Join(e.mods, "FS25_a.zip.tmp"))
}

func TestService_FixCache(t *testing.T) {
	t.Run("Corrupt", func(t *testing.T) {
		e := newEnv(t)
		svc := NewService(e.options(false), zap.NewNop())
		require.NoError(t, os.WriteFile(e.cache.Path(), []byte("garbage"), 0o644))

		report, err := svc.CheckCache()
		require.NoError(t, err)
		require.Equal(t, "corrupt", report.Status)

		require.NoError(t, svc.FixCache(report))

		report, err = svc.CheckCache()
		require.NoError(t, err)
		assert.Equal(t, "ok", report.Status)
		assert.Zero(t, report.Entries)
	})

	t.Run("Stale", func(t *testing.T) {
		e := newEnv(t)
		svc := NewService(e.options(false), zap.NewNop())
		require.NoError(t, os.MkdirAll(e.mods, 0o755))

		keep := filepath.Join(e.mods, "FS25_keep.zip")
		require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))
		info, err := os.Stat(keep)
		require.NoError(t, err)

		e.cache.Update(keep, info.Size(), info.ModTime(), "aa", modhash.AlgorithmMD5, "1.0")
		e.cache.Update(filepath.Join(e.mods, "FS25_gone.zip"), 3, info.ModTime(), "bb", modhash.AlgorithmMD5, "1.0")
		e.cache.Save()

		report, err := svc.CheckCache()
		require.NoError(t, err)
		require.Equal(t, "stale", report.Status)
		require.NoError(t, svc.FixCache(report))

		report, err = svc.CheckCache()
		require.NoError(t, err)
		assert.Equal(t, "ok", report.Status)
		assert.Equal(t, 1, report.Entries)
		_, ok := e.cache.Get("FS25_keep.zip")
		assert.True(t, ok)
	})
}

func TestService_CheckMirror_ExpectedError(t *testing.T) {
	e := newEnv(t)
	opts := e.options(true)
	opts.Expected = func(context.Context) ([]string, error) { return nil, assert.AnError }
	svc := NewService(opts, zap.NewNop())

	_, err := svc.CheckMirror(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	e.client.AssertNotCalled(t, "BucketExists", mock.Anything, mock.Anything)
}

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}
