package selfupdate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const releasesJSON = `[
  {"tag_name": "v1.3.0-beta", "name": "Beta", "prerelease": true, "html_url": "https://example.test/beta"},
  {"tag_name": "v1.2.0", "name": "One Two", "html_url": "https://example.test/1.2.0"},
  {"tag_name": "v2.0.0", "name": "Draft", "draft": true},
  {"tag_name": "nightly", "name": "Nightly"},
  {"tag_name": "1.10.1", "name": "One Ten", "html_url": "https://example.test/1.10.1"},
  {"tag_name": "v1.9", "name": "One Nine"}
]`

func newReleaseServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, "/repos/owner/repo/releases", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) Config {
	return Config{Owner: "owner", Repo: "repo", BaseURL: baseURL, CacheTTL: time.Hour}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"v1.2.3", "v1.2.3"},
		{"1.2.3", "v1.2.3"},
		{"V1.2", "v1.2.0"},
		{"1", "v1.0.0"},
		{"v1.2.0-beta.1", "v1.2.0"},
		{"1.0.0+build5", "v1.0.0"},
		{"1.2.3.4", "v1.2.3"},
		{"nightly", ""},
		{"", ""},
		{"v", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.tag))
		})
	}
}

func TestNewer(t *testing.T) {
	assert.True(t, Newer("v1.10.0", "1.9.0"))
	assert.False(t, Newer("v1.2.0", "1.2.0"))
	assert.False(t, Newer("v1.2.0-rc1", "1.2.0"))
	assert.False(t, Newer("v1.0.0", "dev"))
	assert.False(t, Newer("garbage", "1.0.0"))
}

func TestClient_LatestRelease(t *testing.T) {
	srv := newReleaseServer(t, releasesJSON, nil)

	rel, err := NewClient(testConfig(srv.URL), srv.Client()).LatestRelease(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.10.1", rel.TagName)
	assert.Equal(t, "https://example.test/1.10.1", rel.HTMLURL)
}

func TestClient_LatestRelease_Errors(t *testing.T) {
	t.Run("only unstable releases", func(t *testing.T) {
		srv := newReleaseServer(t, `[{"tag_name":"v3.0.0","draft":true},{"tag_name":"v3.1.0","prerelease":true}]`, nil)

		_, err := NewClient(testConfig(srv.URL), srv.Client()).LatestRelease(context.Background())
		assert.ErrorIs(t, err, ErrNoRelease)
	})

	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := NewClient(testConfig(srv.URL), srv.Client()).LatestRelease(context.Background())
		assert.ErrorContains(t, err, "unexpected status 403")
	})

	t.Run("bad json", func(t *testing.T) {
		srv := newReleaseServer(t, `{"message":"nope"`, nil)

		_, err := NewClient(testConfig(srv.URL), srv.Client()).LatestRelease(context.Background())
		assert.ErrorContains(t, err, "decoding releases")
	})
}

func TestChecker_Check(t *testing.T) {
	srv := newReleaseServer(t, releasesJSON, nil)
	client := NewClient(testConfig(srv.URL), srv.Client())

	tests := []struct {
		current   string
		available bool
	}{
		{"1.2.0", true},
		{"v1.10.1", false},
		{"2.0.0", false},
		{"dev", false},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			res, err := NewChecker(client, tt.current, time.Hour, zap.NewNop()).Check(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "1.10.1", res.Latest)
			assert.Equal(t, tt.current, res.Current)
			assert.Equal(t, tt.available, res.Available)
		})
	}
}

func TestChecker_Memoises(t *testing.T) {
	var hits int32
	srv := newReleaseServer(t, releasesJSON, &hits)

	checker := NewChecker(NewClient(testConfig(srv.URL), srv.Client()), "1.0.0", time.Hour, zap.NewNop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	checker.now = func() time.Time { return now }

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := checker.Check(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	now = now.Add(59 * time.Minute)
	_, err := checker.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	now = now.Add(2 * time.Minute)
	_, err = checker.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	checker.ClearCache()
	_, err = checker.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestChecker_Watch(t *testing.T) {
	srv := newReleaseServer(t, releasesJSON, nil)
	checker := NewChecker(NewClient(testConfig(srv.URL), srv.Client()), "1.0.0", 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	results := checker.Watch(ctx, 10*time.Millisecond)

	for i := 0; i < 2; i++ {
		select {
		case res := <-results:
			assert.True(t, res.Available)
			assert.Equal(t, "1.10.1", res.Latest)
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not publish")
		}
	}

	cancel()
	for range results {
	}
}
