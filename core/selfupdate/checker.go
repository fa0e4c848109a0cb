package selfupdate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Result describes the outcome of an update check.
type Result struct {
	Current   string    `json:"current"`
	Latest    string    `json:"latest"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Available bool      `json:"available"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker compares the running version with the latest release. Fetched
// releases are reused for the cache TTL and concurrent checks share a single
// request.
type Checker struct {
	client  *Client
	current string
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.RWMutex
	cached    *Release
	checkedAt time.Time
	sf        singleflight.Group
}

// NewChecker creates a checker for the running version current.
func NewChecker(client *Client, current string, ttl time.Duration, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		client:  client,
		current: current,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Check returns the latest release compared with the running version.
func (c *Checker) Check(ctx context.Context) (Result, error) {
	rel, checkedAt, err := c.latest(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Current:   c.current,
		Latest:    rel.TagName,
		Name:      rel.Name,
		URL:       rel.HTMLURL,
		Available: Newer(rel.TagName, c.current),
		CheckedAt: checkedAt,
	}, nil
}

func (c *Checker) latest(ctx context.Context) (*Release, time.Time, error) {
	if rel, at, ok := c.fresh(); ok {
		return rel, at, nil
	}

	type fetched struct {
		rel *Release
		at  time.Time
	}

	v, err, _ := c.sf.Do("latest", func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		if rel, at, ok := c.fresh(); ok {
			return fetched{rel, at}, nil
		}

		c.logger.Info("Checking for updates", zap.String("current", c.current))
		rel, err := c.client.LatestRelease(ctx)
		if err != nil {
			return nil, err
		}

		at := c.now()
		c.mu.Lock()
		c.cached = rel
		c.checkedAt = at
		c.mu.Unlock()

		c.logger.Info("Latest release found", zap.String("version", rel.TagName))
		return fetched{rel, at}, nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}

	f := v.(fetched)
	return f.rel, f.at, nil
}

func (c *Checker) fresh() (*Release, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cached == nil || c.ttl <= 0 {
		return nil, time.Time{}, false
	}
	if c.now().Sub(c.checkedAt) >= c.ttl {
		return nil, time.Time{}, false
	}
	return c.cached, c.checkedAt, true
}

// ClearCache forgets the memoised release.
func (c *Checker) ClearCache() {
	c.mu.Lock()
	c.cached = nil
	c.checkedAt = time.Time{}
	c.mu.Unlock()
}

// Watch checks immediately and then every interval until ctx is done,
// publishing each successful result. Failed checks are logged and skipped.
// The returned channel is closed when the watcher stops.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			res, err := c.Check(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Warn("Update check failed", zap.Error(err))
			} else {
				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
