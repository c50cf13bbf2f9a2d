package objstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tucarro/tucarro/internal/common/config"
	"github.com/tucarro/tucarro/internal/common/middleware"
)

// Uploader 对象存储端口（车辆照片）。
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, objectURL string) error
}

// MinioUploader 基于 MinIO 的实现，上传调用经过熔断器保护。
type MinioUploader struct {
	client  *minio.Client
	cfg     config.MinioConfig
	breaker *middleware.CircuitBreaker
}

func NewMinioUploader(cfg config.MinioConfig) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioUploader{
		client:  client,
		cfg:     cfg,
		breaker: middleware.NewCircuitBreaker("minio", 5, 30*time.Second),
	}, nil
}

// Upload 上传对象并返回可访问 URL，文件名用 uuid 重命名避免冲突。
func (m *MinioUploader) Upload(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	if m == nil || m.client == nil {
		return "", fmt.Errorf("minio client is nil")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectName := uuid.NewString() + ext

	err := m.breaker.Call(ctx, func() error {
		exists, err := m.client.BucketExists(ctx, m.cfg.Bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket existence: %w", err)
		}
		if !exists {
			if err := m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket: %w", err)
			}
		}

		_, err = m.client.PutObject(ctx, m.cfg.Bucket, objectName, r, size, minio.PutObjectOptions{
			ContentType: contentTypeFor(ext),
		})
		if err != nil {
			return fmt.Errorf("failed to upload object: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	scheme := "http"
	if m.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, m.cfg.Endpoint, m.cfg.Bucket, objectName), nil
}

// Delete 按 URL 删除对象，URL 不属于本 bucket 时静默跳过。
func (m *MinioUploader) Delete(ctx context.Context, objectURL string) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("minio client is nil")
	}
	marker := "/" + m.cfg.Bucket + "/"
	idx := strings.Index(objectURL, marker)
	if idx < 0 {
		return nil
	}
	objectName := objectURL[idx+len(marker):]
	if objectName == "" {
		return nil
	}
	return m.breaker.Call(ctx, func() error {
		return m.client.RemoveObject(ctx, m.cfg.Bucket, objectName, minio.RemoveObjectOptions{})
	})
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
