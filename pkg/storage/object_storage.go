// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/amd-aig/workflow-engine/pkg/logger/log"
)

// ObjectStorageBackend implements StorageBackend against any
// S3-compatible object store (MinIO, AWS S3), the same client setup as
// pkg/snapshot's S3Store. Every file lands at files/<fileID>; a second,
// tiny index object records the workload/filename it was uploaded
// under so ExistsByWorkloadAndFilename doesn't require a list scan.
type ObjectStorageBackend struct {
	client     *minio.Client
	bucket     string
	urlExpires time.Duration
}

// NewObjectStorageBackend creates a new object storage backend.
func NewObjectStorageBackend(cfg *ObjectStorageConfig) (*ObjectStorageBackend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("object storage config is missing")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object storage bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	expires := 7 * 24 * time.Hour
	if cfg.URLExpires != "" {
		if d, err := time.ParseDuration(cfg.URLExpires); err == nil {
			expires = d
		}
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	log.Infof("Initialized object storage backend: bucket=%s endpoint=%s", cfg.Bucket, cfg.Endpoint)

	return &ObjectStorageBackend{client: client, bucket: cfg.Bucket, urlExpires: expires}, nil
}

func (b *ObjectStorageBackend) objectKey(fileID string) string {
	return "files/" + fileID
}

func (b *ObjectStorageBackend) indexKey(workloadUID, fileName string) string {
	return "index/" + workloadUID + "/" + fileName
}

// Store uploads the content and, when a workload/filename pair is
// present, a sibling index object used by ExistsByWorkloadAndFilename.
func (b *ObjectStorageBackend) Store(ctx context.Context, req *StoreRequest) (*StoreResponse, error) {
	key := b.objectKey(req.FileID)
	_, err := b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(req.Content), int64(len(req.Content)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
		UserMetadata: map[string]string{
			"workload-uid": req.WorkloadUID,
			"file-name":    req.FileName,
			"file-type":    req.FileType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	if req.WorkloadUID != "" && req.FileName != "" {
		idxKey := b.indexKey(req.WorkloadUID, req.FileName)
		if _, err := b.client.PutObject(ctx, b.bucket, idxKey, bytes.NewReader([]byte(req.FileID)), int64(len(req.FileID)), minio.PutObjectOptions{}); err != nil {
			return nil, fmt.Errorf("failed to write index entry %s: %w", idxKey, err)
		}
	}

	return &StoreResponse{
		FileID:      req.FileID,
		StoragePath: key,
		StorageType: "object_storage",
		Size:        int64(len(req.Content)),
		MD5:         fmt.Sprintf("%x", md5.Sum(req.Content)),
		Metadata: map[string]interface{}{
			"compressed": req.Compressed,
			"bucket":     b.bucket,
		},
	}, nil
}

func (b *ObjectStorageBackend) Retrieve(ctx context.Context, req *RetrieveRequest) (*RetrieveResponse, error) {
	key := req.StoragePath
	if key == "" {
		key = b.objectKey(req.FileID)
	}

	opts := minio.GetObjectOptions{}
	if req.Offset > 0 || req.Length > 0 {
		var rangeErr error
		if req.Length > 0 {
			rangeErr = opts.SetRange(req.Offset, req.Offset+req.Length-1)
		} else {
			rangeErr = opts.SetRange(req.Offset, -1)
		}
		if rangeErr != nil {
			return nil, rangeErr
		}
	}

	obj, err := b.client.GetObject(ctx, b.bucket, key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return &RetrieveResponse{
		Content: content,
		Size:    int64(len(content)),
		MD5:     fmt.Sprintf("%x", md5.Sum(content)),
	}, nil
}

func (b *ObjectStorageBackend) Delete(ctx context.Context, fileID string) error {
	key := b.objectKey(fileID)
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (b *ObjectStorageBackend) GenerateDownloadURL(ctx context.Context, fileID string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = b.urlExpires
	}
	u, err := b.client.PresignedGetObject(ctx, b.bucket, b.objectKey(fileID), expires, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", fileID, err)
	}
	return u.String(), nil
}

func (b *ObjectStorageBackend) GetStorageType() string {
	return "object_storage"
}

func (b *ObjectStorageBackend) Exists(ctx context.Context, fileID string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, b.objectKey(fileID), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *ObjectStorageBackend) ExistsByWorkloadAndFilename(ctx context.Context, workloadUID string, fileName string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, b.indexKey(workloadUID, fileName), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
