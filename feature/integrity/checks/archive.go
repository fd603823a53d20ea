package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"payment-integrator/core/reconcile"
	"payment-integrator/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ArchiveReport describes the run-report archive in object storage.
type ArchiveReport struct {
	Bucket       string    `json:"bucket"`
	BucketExists bool      `json:"bucket_exists"`
	Reports      int       `json:"reports"`
	LatestReport string    `json:"latest_report,omitempty"`
	LatestAt     time.Time `json:"latest_at,omitempty"`
	// Latest is the decoded content of LatestReport.
	Latest *reconcile.Result `json:"latest,omitempty"`
}

// CheckArchive verifies that bucket exists, counts the archived run reports under prefix
// and reads back the most recent one.
func CheckArchive(ctx context.Context, client storage.Client, bucket, prefix string) (*ArchiveReport, error) {
	report := &ArchiveReport{Bucket: bucket}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.BucketExists = exists
	if !exists {
		return report, nil
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archived reports: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		report.Reports++
		if obj.LastModified.After(report.LatestAt) {
			report.LatestAt = obj.LastModified
			report.LatestReport = obj.Key
		}
	}

	if report.LatestReport != "" {
		latest, err := reconcile.LoadArchivedResult(ctx, client, bucket, report.LatestReport)
		if err != nil {
			return nil, err
		}
		report.Latest = latest
	}

	return report, nil
}

// FixArchive creates the archive bucket.
func FixArchive(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	if err := storage.EnsureBucket(ctx, client, bucket, region); err != nil {
		logger.Error("Failed to create archive bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Archive bucket ready", zap.String("bucket", bucket))
	return nil
}
