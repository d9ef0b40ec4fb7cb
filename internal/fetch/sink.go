// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pdiddy/docufetch/pkg/types"
)

// Sink stores downloaded files under slash-separated relative names.
type Sink interface {
	// Put stores data under name and returns the location recorded in the
	// dedup store.
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// NewSink returns the sink selected by cfg.
func NewSink(ctx context.Context, cfg types.DownloadConfig) (Sink, error) {
	switch cfg.Sink {
	case types.SinkFile, "":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file sink: no download directory configured")
		}
		return &FileSink{Root: cfg.Dir}, nil
	case types.SinkMinio:
		return NewMinioSink(ctx, cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown download sink %q", cfg.Sink)
	}
}

// FileSink writes files below Root. A file is written to a temporary name
// and renamed into place, so a partial download never appears under its
// final name.
type FileSink struct {
	Root string
}

func (s *FileSink) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	dest := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", filepath.Dir(dest), err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, bytes.NewReader(data))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return dest, nil
}

// MinioSink stores files as objects in an S3-compatible bucket.
type MinioSink struct {
	client *minio.Client
	bucket string
}

// NewMinioSink connects to the object store and creates the bucket if it
// does not exist.
func NewMinioSink(ctx context.Context, cfg types.MinioConfig) (*MinioSink, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio sink: endpoint and bucket are required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}
	return &MinioSink{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioSink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	return "s3://" + path.Join(s.bucket, name), nil
}
