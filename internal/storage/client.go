// Package storage holds task attachment bytes in MinIO, one bucket
// per project.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/intellimanage/platform/internal/config"
)

// ErrDisabled is returned when object storage is not configured.
var ErrDisabled = fmt.Errorf("object storage not configured")

// Client wraps MinIO. With no endpoint configured every operation
// returns ErrDisabled, so attachments degrade cleanly in development.
type Client struct {
	mc      *minio.Client
	enabled bool
}

// NewClient creates a storage client from config.
func NewClient(cfg config.StorageConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return &Client{enabled: false}, nil
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &Client{mc: mc, enabled: true}, nil
}

// Enabled reports whether the storage client is configured.
func (c *Client) Enabled() bool { return c.enabled }

// BucketForProject returns the bucket name for a project.
// MinIO/S3: lowercase, digits, hyphens; 3-63 chars.
func BucketForProject(projectID string) string {
	return "project-" + strings.ToLower(projectID)
}

// EnsureBucket creates the project bucket if it does not exist.
func (c *Client) EnsureBucket(ctx context.Context, projectID string) error {
	if !c.enabled {
		return ErrDisabled
	}
	bucket := BucketForProject(projectID)
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

// PutObject uploads an attachment object to the project bucket.
func (c *Client) PutObject(ctx context.Context, projectID, key string, reader io.Reader, size int64, contentType string) error {
	if !c.enabled {
		return ErrDisabled
	}
	if err := c.EnsureBucket(ctx, projectID); err != nil {
		return err
	}
	_, err := c.mc.PutObject(ctx, BucketForProject(projectID), key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// GetObjectResult holds the reader and metadata for a downloaded
// object.
type GetObjectResult struct {
	Reader       io.ReadCloser
	ContentType  string
	Size         int64
	LastModified time.Time
}

// GetObject downloads an attachment object from the project bucket.
func (c *Client) GetObject(ctx context.Context, projectID, key string) (*GetObjectResult, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}
	obj, err := c.mc.GetObject(ctx, BucketForProject(projectID), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, err
	}
	return &GetObjectResult{
		Reader:       obj,
		ContentType:  info.ContentType,
		Size:         info.Size,
		LastModified: info.LastModified,
	}, nil
}

// DeleteObject removes an attachment object from the project bucket.
func (c *Client) DeleteObject(ctx context.Context, projectID, key string) error {
	if !c.enabled {
		return ErrDisabled
	}
	return c.mc.RemoveObject(ctx, BucketForProject(projectID), key, minio.RemoveObjectOptions{})
}
