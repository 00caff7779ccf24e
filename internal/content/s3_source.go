package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the bucket connection settings.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	URLExpiry time.Duration
}

// S3Source serves lessons from an S3-compatible bucket using the same object keys
// as the HTTP layout. Audio is shared through presigned links.
type S3Source struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
}

// NewS3Source connects to the bucket described by cfg.
func NewS3Source(cfg S3Config) (*S3Source, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 source: endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &S3Source{client: client, bucket: cfg.Bucket, urlExpiry: expiry}, nil
}

func (s *S3Source) Text(ctx context.Context, key string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", s.mapErr(err)
	}
	defer obj.Close()

	// GetObject is lazy; errors such as a missing key surface on the first read.
	body, err := io.ReadAll(io.LimitReader(obj, maxTextSize))
	if err != nil {
		return "", s.mapErr(err)
	}

	return strings.TrimSpace(string(body)), nil
}

func (s *S3Source) AudioURL(ctx context.Context, key string) (string, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return "", s.mapErr(err)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func (s *S3Source) mapErr(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
