package selfupdate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// perPage is the number of releases requested from the API.
	perPage = 30

	// maxResponseBytes caps the JSON document read from the API.
	maxResponseBytes = 10 << 20
)

// ErrNoRelease is returned when the repository has no stable release.
var ErrNoRelease = errors.New("no stable release published")

// Release is a published GitHub release.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// Client queries the GitHub releases API of one repository.
type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	userAgent  string
}

// NewClient creates a release client from cfg. A nil httpClient uses a
// client with a 30 second timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.github.com"
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		userAgent:  "mod-sync",
	}
}

// LatestRelease returns the stable release with the highest version tag.
// Drafts, pre-releases and tags that are not versions are ignored.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.baseURL, c.owner, c.repo, perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing releases: unexpected status %d", resp.StatusCode)
	}

	var releases []Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&releases); err != nil {
		return nil, fmt.Errorf("decoding releases: %w", err)
	}

	stable := slices.DeleteFunc(releases, func(r Release) bool {
		return r.Draft || r.Prerelease || Normalize(r.TagName) == ""
	})
	if len(stable) == 0 {
		return nil, ErrNoRelease
	}

	slices.SortStableFunc(stable, func(a, b Release) int {
		return semver.Compare(Normalize(b.TagName), Normalize(a.TagName))
	})
	latest := stable[0]
	return &latest, nil
}

// Normalize converts a release tag or build version to canonical semver.
// A leading "v" is optional and anything after the first "-" or "+" is
// dropped, so "v1.2.0-beta" and "1.2" both compare as release versions. At
// most three numeric components are kept. Returns "" when tag is not a
// version.
func Normalize(tag string) string {
	v := strings.TrimSpace(tag)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return ""
	}

	parts := strings.Split(v, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}

	canonical := "v" + strings.Join(parts, ".")
	if !semver.IsValid(canonical) {
		return ""
	}
	return semver.Canonical(canonical)
}

// Newer reports whether latest is a higher version than current. Either side
// failing to parse yields false.
func Newer(latest, current string) bool {
	l, c := Normalize(latest), Normalize(current)
	if l == "" || c == "" {
		return false
	}
	return semver.Compare(l, c) > 0
}
