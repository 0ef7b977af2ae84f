package openmusic

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// FileStorage persists uploaded files and resolves them to URLs clients can
// fetch. The backend is chosen once at startup, never per request.
type FileStorage interface {
	Save(ctx context.Context, r io.Reader, size int64, path, contentType string) error
	URL(ctx context.Context, path string) (string, error)
}

// LocalStorage writes under a directory that the server exposes at /uploads.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

func (l *LocalStorage) Dir() string { return l.dir }

func (l *LocalStorage) Save(ctx context.Context, r io.Reader, size int64, path, contentType string) error {
	full := filepath.Join(l.dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(full)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return err
	}
	return nil
}

func (l *LocalStorage) URL(ctx context.Context, path string) (string, error) {
	return "/uploads/" + path, nil
}

// MinIOStorage keeps uploads in an object-store bucket and hands out
// presigned GET URLs.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

func NewMinIOStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIOStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinIOStorage{client: client, bucket: bucket}, nil
}

func (m *MinIOStorage) Save(ctx context.Context, r io.Reader, size int64, path, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, path, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *MinIOStorage) URL(ctx context.Context, path string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, path, 24*time.Hour, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
