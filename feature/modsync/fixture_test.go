package modsync

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"mod-sync/core/database"
	"mod-sync/core/history"
	"mod-sync/core/inventory"
	"mod-sync/core/manifest"
	"mod-sync/core/modhash"
	"mod-sync/core/reconcile"
	"mod-sync/core/transfer"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// server plays the dedicated server: stats feed plus mod downloads.
type server struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	mods     []reconcile.RemoteMod
	archives map[string][]byte
	feedCode int
	// gate, when set, blocks archive downloads until closed.
	gate chan struct{}
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{t: t, archives: make(map[string][]byte), feedCode: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/feed/dedicated-server-stats.xml", s.serveFeed)
	mux.HandleFunc("/mods/", s.serveArchive)

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

// publish adds a mod to the feed. A nil archive lists the mod without serving it.
func (s *server) publish(name, version string, archive []byte, withHash bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mod := reconcile.RemoteMod{Name: name, Author: "Tester", Version: version, Title: name}
	if archive != nil {
		s.archives[name] = archive
		if withHash {
			mod.Hash = strings.ToUpper(hashBytes(s.t, name, archive))
		}
	}
	s.mods = append(s.mods, mod)
}

func (s *server) serveFeed(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.feedCode != http.StatusOK {
		w.WriteHeader(s.feedCode)
		return
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?><Server name="test"><Mods>`)
	b.WriteString(`<Mod name="pdlc_highlandsFishing" author="Giants" version="1.0.0.0" hash="00">DLC</Mod>`)
	for _, m := range s.mods {
		fmt.Fprintf(&b, `<Mod name="%s" author="%s" version="%s" hash="%s">%s</Mod>`, m.Name, m.Author, m.Version, m.Hash, m.Title)
	}
	b.WriteString(`</Mods></Server>`)
	_, _ = w.Write([]byte(b.String()))
}

func (s *server) serveArchive(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/mods/"), ".zip")

	s.mu.Lock()
	data, ok := s.archives[name]
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	_, _ = w.Write(data)
}

func (s *server) feedURL() string {
	return s.srv.URL + "/feed/dedicated-server-stats.xml?code=test"
}

// buildArchive returns a mod zip declaring version.
func buildArchive(t *testing.T, version, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(inventory.DescriptorName)
	require.NoError(t, err)
	_, err = fmt.Fprintf(w, `<?xml version="1.0" encoding="utf-8"?><modDesc><version>%s</version></modDesc>`, version)
	require.NoError(t, err)

	w, err = zw.Create("payload.i3d")
	require.NoError(t, err)
	_, err = w.Write([]byte(payload))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func hashBytes(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".zip")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	h, err := modhash.Compute(path, name, modhash.AlgorithmMD5)
	require.NoError(t, err)
	return h
}

type fixture struct {
	server  *server
	modsDir string
	service *Service
	ledger  *history.Store
}

func newFixture(t *testing.T, opts ...func(*transfer.Options)) *fixture {
	t.Helper()

	srv := newServer(t)
	modsDir := filepath.Join(t.TempDir(), "mods")

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	ledger := history.NewStore(db, zap.NewNop())
	require.NoError(t, ledger.Migrate())

	options := transfer.Options{
		ModsFolder:        modsDir,
		Algorithm:         modhash.AlgorithmMD5,
		BackupOnOverwrite: true,
		MaxConcurrent:     2,
		MaxAttempts:       2,
		RetryDelay:        time.Millisecond,
		AttemptTimeout:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	engine := transfer.NewEngine(options, transfer.NewHTTPSource(srv.srv.URL+"/mods", srv.srv.Client()), zap.NewNop())

	scanner := inventory.NewScanner(inventory.NewCacheStore(t.TempDir(), zap.NewNop()), zap.NewNop())
	fetcher := manifest.NewFetcher(srv.srv.Client(), nil, zap.NewNop())

	svc := NewService(fetcher, srv.feedURL(), scanner, engine, ledger, zap.NewNop())
	t.Cleanup(svc.Shutdown)

	return &fixture{server: srv, modsDir: modsDir, service: svc, ledger: ledger}
}

// install places archive in the mods folder as name.zip.
func (f *fixture) install(t *testing.T, name string, archive []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.modsDir, 0o755))
	path := filepath.Join(f.modsDir, name+".zip")
	require.NoError(t, os.WriteFile(path, archive, 0o644))
	return path
}
