package reconcile

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"payment-integrator/core/storage"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
)

// ArchiveReporter uploads the JSON encoded result of every reported run to object storage.
type ArchiveReporter struct {
	client storage.Client
	bucket string
	prefix string
}

// NewArchiveReporter creates an ArchiveReporter writing under bucket/prefix.
func NewArchiveReporter(client storage.Client, bucket, prefix string) *ArchiveReporter {
	return &ArchiveReporter{client: client, bucket: bucket, prefix: prefix}
}

// ObjectName returns the key a result is archived under.
func (a *ArchiveReporter) ObjectName(res *Result) string {
	return path.Join(a.prefix, res.RunID+".json")
}

func (a *ArchiveReporter) Report(ctx context.Context, res *Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	name := a.ObjectName(res)
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to archive run report %s: %w", name, err)
	}
	return nil
}

// LoadArchivedResult downloads and decodes an archived run report.
func LoadArchivedResult(ctx context.Context, client storage.Client, bucket, name string) (*Result, error) {
	obj, err := client.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download run report %s: %w", name, err)
	}
	defer obj.Close()

	var res Result
	if err := json.NewDecoder(obj).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode run report %s: %w", name, err)
	}
	return &res, nil
}
