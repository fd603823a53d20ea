// Package storage provides an abstraction layer for S3-compatible object storage.
//
// It wraps the MinIO Go client behind the Client interface so the report archive
// can be tested with the mock in core/storage/mocks. Both AWS S3 and self-hosted
// MinIO are supported.
//
// # Operations
//
//   - BucketExists / MakeBucket: EnsureBucket creates the archive bucket on first use.
//   - PutObject: uploads a run report.
//   - ListObjects / GetObject: the integrity archive check lists reports and decodes the latest.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
