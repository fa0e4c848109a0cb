package transfer

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mod-sync/core/modhash"
	"mod-sync/core/reconcile"
	"mod-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu     sync.Mutex
	events []Progress
}

func (r *recorder) record(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

func (r *recorder) phases(name string) []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Phase
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e.Phase)
		}
	}
	return out
}

func (r *recorder) count(name string, phase Phase) int {
	n := 0
	for _, p := range r.phases(name) {
		if p == phase {
			n++
		}
	}
	return n
}

func (r *recorder) messages(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e.Message)
		}
	}
	return out
}

// identity mirrors modhash.Compute for in-memory content.
func identity(body []byte, name string) string {
	sum := md5.Sum(append(append([]byte{}, body...), []byte(name)...))
	return hex.EncodeToString(sum[:])
}

func result(name, hash string) reconcile.Result {
	return reconcile.Result{
		Remote: reconcile.RemoteMod{Name: name, Version: "1.0.0.0", Hash: hash},
		Status: reconcile.StatusMissing,
	}
}

func newTestEngine(t *testing.T, baseURL string, mutate func(*Options)) (*Engine, string) {
	t.Helper()
	folder := t.TempDir()
	opts := Options{
		ModsFolder:     folder,
		Algorithm:      modhash.AlgorithmMD5,
		MaxConcurrent:  3,
		RetryDelay:     time.Millisecond,
		AttemptTimeout: 5 * time.Second,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewEngine(opts, NewHTTPSource(baseURL, nil), zap.NewNop()), folder
}

func TestTransfer_SuccessWithVerification(t *testing.T) {
	body := bytes.Repeat([]byte("mod-bytes-"), 5000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mods/cropA.zip", r.URL.Path)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	engine, folder := newTestEngine(t, srv.URL+"/mods/", nil)
	rec := &recorder{}

	out := engine.Transfer(context.Background(), result("cropA", strings.ToUpper(identity(body, "cropA"))), rec.record)

	require.True(t, out.Success, "err: %v", out.Err)
	assert.Equal(t, PhaseComplete, out.Phase)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, int64(len(body)), out.Bytes)
	assert.Equal(t, identity(body, "cropA"), out.Hash)
	assert.Equal(t, filepath.Join(folder, "cropA.zip"), out.Path)

	installed, err := os.ReadFile(filepath.Join(folder, "cropA.zip"))
	require.NoError(t, err)
	assert.Equal(t, body, installed)
	assert.NoFileExists(t, filepath.Join(folder, "cropA.zip.tmp"))

	msgs := rec.messages("cropA")
	assert.Equal(t, "Starting download...", msgs[0])
	assert.Equal(t, "Downloading (attempt 1)...", msgs[1])
	assert.Contains(t, msgs, "Downloading...")
	assert.Equal(t, "Verifying...", msgs[len(msgs)-2])
	assert.Equal(t, "Complete", msgs[len(msgs)-1])
	assert.Equal(t, 1, rec.count("cropA", PhaseComplete))
}

func TestTransfer_RetriesThenSucceeds(t *testing.T) {
	body := []byte("third time lucky")
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	engine, _ := newTestEngine(t, srv.URL, nil)
	rec := &recorder{}

	out := engine.Transfer(context.Background(), result("cropA", identity(body, "cropA")), rec.record)

	require.True(t, out.Success, "err: %v", out.Err)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 2, rec.count("cropA", PhaseRetryFailed))
	assert.Equal(t, 1, rec.count("cropA", PhaseComplete))
	assert.Contains(t, rec.messages("cropA")[2], "Retry 1 failed: ")
}

func TestTransfer_AllAttemptsFail(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	engine, folder := newTestEngine(t, srv.URL, nil)
	rec := &recorder{}

	out := engine.Transfer(context.Background(), result("cropA", "aa"), rec.record)

	assert.False(t, out.Success)
	assert.Equal(t, PhaseDownloadFailed, out.Phase)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	var statusErr *StatusError
	require.True(t, errors.As(out.Err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	assert.Equal(t, 2, rec.count("cropA", PhaseRetryFailed))
	msgs := rec.messages("cropA")
	assert.Equal(t, "Download failed", msgs[len(msgs)-1])
	assert.NoFileExists(t, filepath.Join(folder, "cropA.zip"))
	assert.NoFileExists(t, filepath.Join(folder, "cropA.zip.tmp"))
}

func TestTransfer_HashMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tampered"))
	}))
	defer srv.Close()

	t.Run("existing file unchanged", func(t *testing.T) {
		engine, folder := newTestEngine(t, srv.URL, nil)
		final := filepath.Join(folder, "cropA.zip")
		require.NoError(t, os.WriteFile(final, []byte("original"), 0o644))

		rec := &recorder{}
		out := engine.Transfer(context.Background(), result("cropA", "abc"), rec.record)

		assert.False(t, out.Success)
		assert.Equal(t, PhaseHashMismatch, out.Phase)
		assert.ErrorIs(t, out.Err, ErrHashMismatch)
		data, err := os.ReadFile(final)
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))
		assert.NoFileExists(t, final+TempSuffix)

		msgs := rec.messages("cropA")
		assert.Equal(t, "Hash verification failed", msgs[len(msgs)-1])
	})

	t.Run("absent file stays absent", func(t *testing.T) {
		engine, folder := newTestEngine(t, srv.URL, nil)

		out := engine.Transfer(context.Background(), result("cropA", "abc"), nil)

		assert.Equal(t, PhaseHashMismatch, out.Phase)
		assert.NoFileExists(t, filepath.Join(folder, "cropA.zip"))
		assert.NoFileExists(t, filepath.Join(folder, "cropA.zip.tmp"))
	})
}

func TestTransfer_HashingDisabledSkipsVerification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("anything"))
	}))
	defer srv.Close()

	engine, _ := newTestEngine(t, srv.URL, func(o *Options) { o.Algorithm = modhash.AlgorithmNone })
	rec := &recorder{}

	out := engine.Transfer(context.Background(), result("cropA", "does-not-match"), rec.record)

	require.True(t, out.Success)
	assert.Empty(t, out.Hash)
	assert.Equal(t, 0, rec.count("cropA", PhaseVerifying))
}

func TestTransfer_Backup(t *testing.T) {
	body := []byte("new archive")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	fixed := time.Date(2024, 3, 9, 14, 5, 6, 0, time.Local)

	t.Run("enabled", func(t *testing.T) {
		engine, folder := newTestEngine(t, srv.URL, func(o *Options) { o.BackupOnOverwrite = true })
		engine.now = func() time.Time { return fixed }
		require.NoError(t, os.WriteFile(filepath.Join(folder, "cropA.zip"), []byte("old"), 0o644))

		out := engine.Transfer(context.Background(), result("cropA", identity(body, "cropA")), nil)
		require.True(t, out.Success)

		backup := filepath.Join(folder, BackupDirName, "cropA-20240309-140506.zip")
		data, err := os.ReadFile(backup)
		require.NoError(t, err)
		assert.Equal(t, "old", string(data))
		assert.Equal(t, backup, BackupPath(folder, "cropA", fixed))
	})

	t.Run("disabled", func(t *testing.T) {
		engine, folder := newTestEngine(t, srv.URL, nil)
		require.NoError(t, os.WriteFile(filepath.Join(folder, "cropA.zip"), []byte("old"), 0o644))

		out := engine.Transfer(context.Background(), result("cropA", identity(body, "cropA")), nil)
		require.True(t, out.Success)
		assert.NoDirExists(t, filepath.Join(folder, BackupDirName))
	})

	t.Run("no existing file", func(t *testing.T) {
		engine, folder := newTestEngine(t, srv.URL, func(o *Options) { o.BackupOnOverwrite = true })

		out := engine.Transfer(context.Background(), result("cropA", identity(body, "cropA")), nil)
		require.True(t, out.Success)
		assert.NoDirExists(t, filepath.Join(folder, BackupDirName))
	})
}

func TestTransfer_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	engine, _ := newTestEngine(t, srv.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	out := engine.Transfer(ctx, result("cropA", ""), rec.record)

	assert.False(t, out.Success)
	assert.Equal(t, PhaseError, out.Phase)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Equal(t, []Phase{PhaseError}, rec.phases("cropA"))
}

func TestTransferAll_BoundedConcurrencyAndOrder(t *testing.T) {
	var inFlight, peak int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		_, _ = w.Write([]byte(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".zip")))
	}))
	defer srv.Close()

	engine, folder := newTestEngine(t, srv.URL, func(o *Options) { o.MaxConcurrent = 2 })

	var results []reconcile.Result
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("mod%d", i)
		results = append(results, result(name, identity([]byte(name), name)))
	}

	rec := &recorder{}
	outcomes := engine.TransferAll(context.Background(), results, rec.record)

	require.Len(t, outcomes, 6)
	for i, out := range outcomes {
		assert.Equal(t, results[i].Remote.Name, out.Name)
		assert.True(t, out.Success, "mod %s: %v", out.Name, out.Err)
		assert.FileExists(t, filepath.Join(folder, out.Name+".zip"))
		assert.Equal(t, 1, rec.count(out.Name, PhaseComplete))
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(1))
}

func TestTransferAll_FailuresReleasePermits(t *testing.T) {
	good := []byte("good archive")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gone.zip":
			http.NotFound(w, r)
		case "/tampered.zip":
			_, _ = w.Write([]byte("not what the manifest says"))
		default:
			_, _ = w.Write(good)
		}
	}))
	defer srv.Close()

	engine, folder := newTestEngine(t, srv.URL, func(o *Options) {
		o.MaxConcurrent = 1
		o.MaxAttempts = 2
	})

	results := []reconcile.Result{
		result("gone", ""),
		result("tampered", identity([]byte("expected"), "tampered")),
		result("good", identity(good, "good")),
	}

	done := make(chan []Outcome, 1)
	go func() { done <- engine.TransferAll(context.Background(), results, nil) }()

	var outcomes []Outcome
	select {
	case outcomes = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("transfer pass stalled after failures")
	}

	require.Len(t, outcomes, 3)
	assert.Equal(t, PhaseDownloadFailed, outcomes[0].Phase)
	assert.Equal(t, 2, outcomes[0].Attempts)
	assert.Equal(t, PhaseHashMismatch, outcomes[1].Phase)
	assert.ErrorIs(t, outcomes[1].Err, ErrHashMismatch)
	require.True(t, outcomes[2].Success, "err: %v", outcomes[2].Err)
	assert.FileExists(t, filepath.Join(folder, "good.zip"))
	assert.NoFileExists(t, filepath.Join(folder, "tampered.zip"))

	// Every permit is back: a single transfer still gets one immediately.
	out := engine.Transfer(context.Background(), result("good", identity(good, "good")), nil)
	assert.True(t, out.Success)
}

func TestTransfer_RefusesUnsafeNames(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	tests := []string{
		"../escaped",
		"..",
		"sub/cropA",
		`sub\cropA`,
		"/abs/cropA",
		"",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			mods := filepath.Join(root, "mods")
			engine, _ := newTestEngine(t, srv.URL, func(o *Options) {
				o.ModsFolder = mods
				o.BackupOnOverwrite = true
			})

			rec := &recorder{}
			out := engine.Transfer(context.Background(), result(name, ""), rec.record)

			assert.False(t, out.Success)
			assert.Equal(t, PhaseError, out.Phase)
			assert.ErrorIs(t, out.Err, ErrUnsafeName)
			assert.Empty(t, out.Path)
			assert.Equal(t, []Phase{PhaseError}, rec.phases(name))
			assert.NoFileExists(t, filepath.Join(root, "escaped.zip"))
			assert.NoDirExists(t, mods)
		})
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestTransferAll_Empty(t *testing.T) {
	engine, _ := newTestEngine(t, "http://127.0.0.1:1", nil)
	assert.Empty(t, engine.TransferAll(context.Background(), nil, nil))
}

func TestTransfer_ObjectSource(t *testing.T) {
	body := []byte("mirrored archive")
	client := new(mocks.Client)
	client.On("StatObject", mock.Anything, "mods", "fs25/cropA.zip", mock.Anything).
		Return(minio.ObjectInfo{Key: "fs25/cropA.zip", Size: int64(len(body))}, nil)
	client.On("GetObject", mock.Anything, "mods", "fs25/cropA.zip", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(body)), nil)

	folder := t.TempDir()
	engine := NewEngine(Options{ModsFolder: folder, RetryDelay: time.Millisecond},
		NewObjectSource(client, "mods", "fs25"), zap.NewNop())

	out := engine.Transfer(context.Background(), result("cropA", identity(body, "cropA")), nil)

	require.True(t, out.Success, "err: %v", out.Err)
	assert.Equal(t, int64(len(body)), out.Bytes)
	client.AssertExpectations(t)
}

func TestObjectSource_StatError(t *testing.T) {
	client := new(mocks.Client)
	client.On("StatObject", mock.Anything, "mods", "cropA.zip", mock.Anything).
		Return(minio.ObjectInfo{}, errors.New("no such key"))

	src := NewObjectSource(client, "mods", "")
	_, _, err := src.Open(context.Background(), "cropA")

	assert.ErrorContains(t, err, "no such key")
	assert.Equal(t, "mods/cropA.zip", src.Location("cropA"))
	client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHTTPSource_Location(t *testing.T) {
	src := NewHTTPSource("http://10.0.0.5:8080/mods/", nil)
	assert.Equal(t, "http://10.0.0.5:8080/mods/FS25_crop%20A.zip", src.Location("FS25_crop A"))
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, DefaultMaxConcurrent, opts.MaxConcurrent)
	assert.Equal(t, DefaultMaxAttempts, opts.MaxAttempts)
	assert.Equal(t, DefaultRetryDelay, opts.RetryDelay)
	assert.Equal(t, DefaultAttemptTimeout, opts.AttemptTimeout)
	assert.Equal(t, DefaultChunkSize, opts.ChunkSize)
	assert.Equal(t, modhash.AlgorithmMD5, opts.Algorithm)
}

func TestPhase_Terminal(t *testing.T) {
	assert.True(t, PhaseComplete.Terminal())
	assert.True(t, PhaseHashMismatch.Terminal())
	assert.False(t, PhaseRetryFailed.Terminal())
	assert.False(t, PhaseDownloading.Terminal())
}
