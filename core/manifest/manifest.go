package manifest

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mod-sync/core/reconcile"

	"go.uber.org/zap"
)

var (
	// ErrManifestFetch is returned when the manifest cannot be downloaded.
	ErrManifestFetch = errors.New("failed to fetch server mods")
	// ErrManifestParse is returned when the manifest document is malformed.
	ErrManifestParse = errors.New("failed to parse server mods")
)

// DefaultTimeout bounds one manifest request.
const DefaultTimeout = 30 * time.Second

// DefaultExcludePrefixes lists name prefixes of platform content that is never
// downloaded from the server.
var DefaultExcludePrefixes = []string{"pdlc_"}

// maxManifestSize caps the document read from the server.
const maxManifestSize = 16 << 20

type modElement struct {
	Name    string `xml:"name,attr"`
	Author  string `xml:"author,attr"`
	Version string `xml:"version,attr"`
	Hash    string `xml:"hash,attr"`
	Title   string `xml:",chardata"`
}

type modsElement struct {
	Mods []modElement `xml:"Mod"`
}

// Parse reads the server stats document and returns the mods listed in the
// first <Mods> element. Entries with an empty name or an excluded prefix are
// dropped, as are later duplicates of a name (case-insensitive) and names
// that are not a plain file name.
func Parse(r io.Reader, excludePrefixes []string) ([]reconcile.RemoteMod, error) {
	mods, _, err := parse(r, excludePrefixes)
	return mods, err
}

// parse is Parse that also returns the names rejected as unsafe.
func parse(r io.Reader, excludePrefixes []string) ([]reconcile.RemoteMod, []string, error) {
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: no <Mods> element", ErrManifestParse)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Mods" {
			continue
		}

		var el modsElement
		if err := dec.DecodeElement(&el, &start); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
		}
		mods, unsafe := collect(el.Mods, excludePrefixes)
		return mods, unsafe, nil
	}
}

func collect(elements []modElement, excludePrefixes []string) ([]reconcile.RemoteMod, []string) {
	mods := make([]reconcile.RemoteMod, 0, len(elements))
	seen := make(map[string]struct{}, len(elements))
	var unsafe []string

	for _, m := range elements {
		name := strings.TrimSpace(m.Name)
		if name == "" || excluded(name, excludePrefixes) {
			continue
		}
		if !reconcile.LocalName(name) {
			unsafe = append(unsafe, name)
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		mods = append(mods, reconcile.RemoteMod{
			Name:    name,
			Author:  m.Author,
			Version: strings.TrimSpace(m.Version),
			Hash:    strings.TrimSpace(m.Hash),
			Title:   strings.TrimSpace(m.Title),
		})
	}
	return mods, unsafe
}

func excluded(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Fetcher downloads and parses the server manifest.
type Fetcher struct {
	client          *http.Client
	excludePrefixes []string
	timeout         time.Duration
	logger          *zap.Logger
}

// NewFetcher creates a fetcher. A nil client uses http.DefaultClient and a nil
// exclude list uses DefaultExcludePrefixes.
func NewFetcher(client *http.Client, excludePrefixes []string, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if excludePrefixes == nil {
		excludePrefixes = DefaultExcludePrefixes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:          client,
		excludePrefixes: excludePrefixes,
		timeout:         DefaultTimeout,
		logger:          logger,
	}
}

// Fetch downloads the manifest at url. Transport failures and non-2xx answers
// wrap ErrManifestFetch; malformed documents wrap ErrManifestParse.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]reconcile.RemoteMod, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestFetch, err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrManifestFetch, resp.Status)
	}

	mods, unsafe, err := parse(io.LimitReader(resp.Body, maxManifestSize), f.excludePrefixes)
	if err != nil {
		return nil, err
	}
	for _, name := range unsafe {
		f.logger.Warn("Ignoring server mod with unsafe name", zap.String("mod", name))
	}

	f.logger.Debug("Fetched server manifest", zap.Int("mods", len(mods)))
	return mods, nil
}
