package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"courtview/internal/config"
)

// minioStorage serves assets from an S3-compatible bucket (MinIO, AWS S3, etc.).
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIO creates an asset store backed by an existing bucket.
// Unlike an upload store it never creates the bucket: a missing one is a misconfiguration.
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("asset bucket is required")
	}

	tr, err := minio.DefaultTransport(cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("create minio transport: %w", err)
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(tr),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{client: cli, bucket: cfg.Bucket, prefix: cfg.Prefix}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ms.Ping(ctx); err != nil {
		return nil, err
	}
	return ms, nil
}

func (m *minioStorage) objectName(key string) string {
	if m.prefix == "" {
		return key
	}
	return path.Join(m.prefix, key)
}

// Get streams an object along with its info; the body is not buffered.
func (m *minioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	ctx, span := tracer.Start(ctx, "storage.minio.get", trace.WithAttributes(
		attribute.String("asset.key", key),
		attribute.String("asset.bucket", m.bucket),
	))
	defer span.End()

	obj, err := m.client.GetObject(ctx, m.bucket, m.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		span.RecordError(err)
		return nil, ObjectInfo{}, classifyMinIO(key, err)
	}
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		span.RecordError(err)
		return nil, ObjectInfo{}, classifyMinIO(key, err)
	}

	info := ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         `"` + st.ETag + `"`,
		ContentType:  st.ContentType,
		LastModified: st.LastModified.UTC(),
	}
	span.SetAttributes(attribute.Int64("asset.size", info.Size))
	return obj, info, nil
}

// Ping verifies the bucket exists and is reachable.
func (m *minioStorage) Ping(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", m.bucket)
	}
	return nil
}

func classifyMinIO(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "InvalidObjectName":
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	default:
		return fmt.Errorf("%s: %w: %v", key, ErrUnreadable, err)
	}
}
