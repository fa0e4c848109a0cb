package mirror

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mod-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var notFound = minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}

func writeArchive(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestPush(t *testing.T) {
	mods := t.TempDir()
	writeArchive(t, mods, "FS25_new.zip", "new archive")
	writeArchive(t, mods, "FS25_same.zip", "same")
	writeArchive(t, mods, "notes.txt", "ignored")

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "mods").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "mods", minio.MakeBucketOptions{Region: "eu"}).Return(nil)
	client.On("StatObject", mock.Anything, "mods", "fs25/FS25_new.zip", mock.Anything).Return(minio.ObjectInfo{}, notFound)
	client.On("StatObject", mock.Anything, "mods", "fs25/FS25_same.zip", mock.Anything).Return(minio.ObjectInfo{Size: 4}, nil)
	client.On("PutObject", mock.Anything, "mods", "fs25/FS25_new.zip", mock.Anything, int64(11), mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.ContentType == "application/zip"
	})).Return(minio.UploadInfo{}, nil)

	m := New(client, "mods", "fs25", "eu", zap.NewNop())
	result, err := m.Push(context.Background(), mods, nil, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"FS25_new"}, result.Uploaded)
	assert.Equal(t, []string{"FS25_same"}, result.Skipped)
	assert.Empty(t, result.Failed)
	assert.Equal(t, int64(11), result.Bytes)
	client.AssertExpectations(t)
}

func TestPush_NamesAndForce(t *testing.T) {
	mods := t.TempDir()
	writeArchive(t, mods, "FS25_a.zip", "aaaa")

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "mods").Return(true, nil)
	client.On("PutObject", mock.Anything, "mods", "FS25_a.zip", mock.Anything, int64(4), mock.Anything).Return(minio.UploadInfo{}, nil)

	m := New(client, "mods", "", "", nil)
	result, err := m.Push(context.Background(), mods, []string{"FS25_a", "FS25_absent"}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"FS25_a"}, result.Uploaded)
	assert.Equal(t, []string{"FS25_absent"}, result.Missing)
	client.AssertNotCalled(t, "StatObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestPush_Failures(t *testing.T) {
	mods := t.TempDir()
	writeArchive(t, mods, "FS25_a.zip", "aaaa")
	writeArchive(t, mods, "FS25_b.zip", "bbbb")

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "mods").Return(true, nil)
	client.On("StatObject", mock.Anything, "mods", "FS25_a.zip", mock.Anything).Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "AccessDenied"})
	client.On("StatObject", mock.Anything, "mods", "FS25_b.zip", mock.Anything).Return(minio.ObjectInfo{}, notFound)
	client.On("PutObject", mock.Anything, "mods", "FS25_b.zip", mock.Anything, int64(4), mock.Anything).Return(minio.UploadInfo{}, assert.AnError)

	m := New(client, "mods", "", "", zap.NewNop())
	result, err := m.Push(context.Background(), mods, nil, false)
	require.NoError(t, err)

	assert.Empty(t, result.Uploaded)
	assert.Len(t, result.Failed, 2)
	assert.Contains(t, result.Failed["FS25_b"], "upload FS25_b.zip")
}

func TestPush_BucketError(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "mods").Return(false, assert.AnError)

	_, err := New(client, "mods", "", "", nil).Push(context.Background(), t.TempDir(), nil, false)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPrune(t *testing.T) {
	listing := func() <-chan minio.ObjectInfo {
		return objects("fs25/FS25_keep.zip", "fs25/fs25_KEEPTOO.zip", "fs25/FS25_old.zip", "fs25/readme.md")
	}

	t.Run("Dry Run", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "mods", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
			return o.Prefix == "fs25/" && o.Recursive
		})).Return(listing())

		keys, err := New(client, "mods", "fs25", "", nil).Prune(context.Background(), []string{"FS25_keep", "FS25_keepToo"}, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"fs25/FS25_old.zip"}, keys)
		client.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Remove", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "mods", mock.Anything).Return(listing())
		client.On("RemoveObjects", mock.Anything, "mods", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			ch := args.Get(2).(<-chan minio.ObjectInfo)
			var got []string
			for obj := range ch {
				got = append(got, obj.Key)
			}
			assert.Equal(t, []string{"fs25/FS25_old.zip"}, got)
		})

		keys, err := New(client, "mods", "fs25", "", nil).Prune(context.Background(), []string{"FS25_keep", "FS25_keepToo"}, false)
		require.NoError(t, err)
		assert.Len(t, keys, 1)
		client.AssertExpectations(t)
	})

	t.Run("Remove Error", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "mods", mock.Anything).Return(listing())
		errCh := make(chan minio.RemoveObjectError, 1)
		errCh <- minio.RemoveObjectError{ObjectName: "fs25/FS25_old.zip", Err: assert.AnError}
		close(errCh)
		client.On("RemoveObjects", mock.Anything, "mods", mock.Anything, mock.Anything).Return((<-chan minio.RemoveObjectError)(errCh))

		_, err := New(client, "mods", "fs25", "", nil).Prune(context.Background(), []string{"FS25_keep", "FS25_keepToo"}, false)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
