package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/adventure-ai/internal/domain/similarity"
)

// DecodeSnapshot reads and validates a JSON catalog snapshot.
func DecodeSnapshot(r io.Reader) (similarity.Snapshot, error) {
	var snap similarity.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return similarity.Snapshot{}, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	if err := validateSnapshot(snap); err != nil {
		return similarity.Snapshot{}, err
	}
	return snap, nil
}

// LoadSnapshotFile reads a snapshot from the local filesystem.
func LoadSnapshotFile(path string) (similarity.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return similarity.Snapshot{}, fmt.Errorf("open catalog snapshot: %w", err)
	}
	defer f.Close()
	return DecodeSnapshot(f)
}

func validateSnapshot(snap similarity.Snapshot) error {
	seen := make(map[int64]struct{}, len(snap.Adventures))
	for _, rec := range snap.Adventures {
		if rec.ID <= 0 {
			return fmt.Errorf("catalog snapshot: adventure id must be positive, got %d", rec.ID)
		}
		if strings.TrimSpace(rec.Title) == "" {
			return fmt.Errorf("catalog snapshot: adventure %d has an empty title", rec.ID)
		}
		if _, dup := seen[rec.ID]; dup {
			return fmt.Errorf("catalog snapshot: duplicate adventure id %d", rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}
	for id := range snap.Neighbors {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("catalog snapshot: neighbors listed for unknown adventure %d", id)
		}
	}
	return nil
}

// ObjectSnapshotSource fetches a snapshot from an S3 compatible bucket (R2, MinIO).
type ObjectSnapshotSource struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewObjectSnapshotSource constructs the source.
func NewObjectSnapshotSource(endpoint, accessKey, secretKey, bucket, region, key string, logger *slog.Logger) (*ObjectSnapshotSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return nil, errors.New("catalog snapshot bucket and key are required")
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectSnapshotSource{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger.With("component", "catalog.snapshot.object"),
	}, nil
}

// Load downloads and decodes the snapshot object.
func (s *ObjectSnapshotSource) Load(ctx context.Context) (similarity.Snapshot, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return similarity.Snapshot{}, fmt.Errorf("get catalog snapshot: %w", err)
	}
	defer obj.Close()
	info, err := obj.Stat()
	if err != nil {
		return similarity.Snapshot{}, fmt.Errorf("stat catalog snapshot: %w", err)
	}
	s.logger.Info("catalog snapshot downloaded", "bucket", s.bucket, "key", s.key, "size", info.Size, "etag", info.ETag)
	return DecodeSnapshot(obj)
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}
