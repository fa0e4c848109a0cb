package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"mod-sync/core/inventory"
	"mod-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel uploads.
const DefaultConcurrency = 4

// Mirror manages the archives in one bucket prefix.
type Mirror struct {
	client      storage.Client
	bucket      string
	prefix      string
	region      string
	concurrency int
	logger      *zap.Logger
}

// New creates a mirror over bucket/prefix.
func New(client storage.Client, bucket, prefix, region string, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{
		client:      client,
		bucket:      bucket,
		prefix:      prefix,
		region:      region,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
}

// PushResult summarizes one push.
type PushResult struct {
	Uploaded []string          `json:"uploaded"`
	Skipped  []string          `json:"skipped"`
	Missing  []string          `json:"missing"`
	Failed   map[string]string `json:"failed"`
	Bytes    int64             `json:"bytes"`
}

// Push uploads the archives of names from modsFolder. A nil names slice pushes
// every archive in the folder. Objects whose size already matches the local
// file are skipped unless force is set. Names without a local archive are
// reported as missing.
func (m *Mirror) Push(ctx context.Context, modsFolder string, names []string, force bool) (*PushResult, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return nil, err
	}

	if names == nil {
		local, err := localArchives(modsFolder)
		if err != nil {
			return nil, err
		}
		names = local
	}

	result := &PushResult{
		Uploaded: []string{},
		Skipped:  []string{},
		Missing:  []string{},
		Failed:   map[string]string{},
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for _, name := range names {
		g.Go(func() error {
			outcome, n, err := m.pushOne(gctx, modsFolder, name, force)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed[name] = err.Error()
				m.logger.Warn("Failed to upload archive", zap.String("mod", name), zap.Error(err))
			case outcome == "missing":
				result.Missing = append(result.Missing, name)
			case outcome == "skipped":
				result.Skipped = append(result.Skipped, name)
			default:
				result.Uploaded = append(result.Uploaded, name)
				result.Bytes += n
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Uploaded)
	sort.Strings(result.Skipped)
	sort.Strings(result.Missing)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	m.logger.Info("Mirror push finished",
		zap.Int("uploaded", len(result.Uploaded)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("missing", len(result.Missing)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (m *Mirror) pushOne(ctx context.Context, modsFolder, name string, force bool) (string, int64, error) {
	path := filepath.Join(modsFolder, name+inventory.ArchiveExt)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "missing", 0, nil
	}
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}

	key := storage.ObjectKey(m.prefix, name)
	if !force {
		obj, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
		if err == nil && obj.Size == info.Size() {
			return "skipped", 0, nil
		}
		if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return "", 0, fmt.Errorf("stat %s: %w", key, err)
		}
	}

	if _, err := m.client.PutObject(ctx, m.bucket, key, f, info.Size(), minio.PutObjectOptions{ContentType: "application/zip"}); err != nil {
		return "", 0, fmt.Errorf("upload %s: %w", key, err)
	}
	return "uploaded", info.Size(), nil
}

func (m *Mirror) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", m.bucket, err)
	}
	m.logger.Info("Created mirror bucket", zap.String("bucket", m.bucket))
	return nil
}

// Prune deletes archives under the prefix whose mod is not in keep
// (case-insensitive). With dryRun set nothing is deleted. It returns the
// object keys selected for removal.
func (m *Mirror) Prune(ctx context.Context, keep []string, dryRun bool) ([]string, error) {
	wanted := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		wanted[strings.ToLower(storage.ObjectKey(m.prefix, name))] = struct{}{}
	}

	listPrefix := strings.Trim(m.prefix, "/")
	if listPrefix != "" {
		listPrefix += "/"
	}

	var stale []minio.ObjectInfo
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: listPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list mirror: %w", obj.Err)
		}
		if !strings.HasSuffix(strings.ToLower(obj.Key), inventory.ArchiveExt) {
			continue
		}
		if _, ok := wanted[strings.ToLower(obj.Key)]; !ok {
			stale = append(stale, minio.ObjectInfo{Key: obj.Key})
		}
	}

	keys := make([]string, len(stale))
	for i, obj := range stale {
		keys[i] = obj.Key
	}
	sort.Strings(keys)

	if dryRun || len(stale) == 0 {
		return keys, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(stale))
	for _, obj := range stale {
		objectsCh <- obj
	}
	close(objectsCh)

	var errs []error
	for rerr := range m.client.RemoveObjects(ctx, m.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("remove %s: %w", rerr.ObjectName, rerr.Err))
	}
	if len(errs) > 0 {
		return keys, errors.Join(errs...)
	}

	m.logger.Info("Pruned mirror", zap.Int("removed", len(keys)))
	return keys, nil
}

// localArchives returns the mod names of the archives in folder.
func localArchives(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list mods folder: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), inventory.ArchiveExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return names, nil
}
