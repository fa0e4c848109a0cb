package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mod-sync/core/inventory"
	"mod-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// MirrorReport describes the object-storage mirror.
type MirrorReport struct {
	Bucket       string   `json:"bucket"`
	Prefix       string   `json:"prefix"`
	BucketExists bool     `json:"bucket_exists"`
	Objects      int      `json:"objects"`
	Missing      []string `json:"missing"`
	Status       string   `json:"status"` // "ok", "missing_bucket", "incomplete"
}

// CheckMirror checks that the bucket exists and holds an archive for every
// expected mod name.
func CheckMirror(ctx context.Context, client storage.Client, bucket, prefix string, expected []string) (*MirrorReport, error) {
	report := &MirrorReport{
		Bucket:  bucket,
		Prefix:  prefix,
		Missing: []string{},
		Status:  "ok",
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.BucketExists = exists
	if !exists {
		report.Status = "missing_bucket"
		report.Missing = append(report.Missing, expected...)
		return report, nil
	}

	listPrefix := strings.Trim(prefix, "/")
	if listPrefix != "" {
		listPrefix += "/"
	}

	present := make(map[string]struct{})
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: listPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list mirror: %w", obj.Err)
		}
		if !strings.HasSuffix(strings.ToLower(obj.Key), inventory.ArchiveExt) {
			continue
		}
		report.Objects++
		present[strings.ToLower(obj.Key)] = struct{}{}
	}

	for _, name := range expected {
		if _, ok := present[strings.ToLower(storage.ObjectKey(prefix, name))]; !ok {
			report.Missing = append(report.Missing, name)
		}
	}
	sort.Strings(report.Missing)

	if len(report.Missing) > 0 {
		report.Status = "incomplete"
	}
	return report, nil
}

// FixMirror creates the bucket when it is missing.
func FixMirror(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Created missing bucket", zap.String("bucket", bucket))
	return nil
}
