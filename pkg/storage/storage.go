// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package storage

import (
	"context"
	"time"
)

// StoreRequest describes a file to persist into a storage backend.
type StoreRequest struct {
	FileID      string
	WorkloadUID string
	FileName    string
	FileType    string
	Content     []byte
	Compressed  bool
	Metadata    map[string]string
}

// StoreResponse reports where and how a file was persisted.
type StoreResponse struct {
	FileID      string
	StoragePath string
	StorageType string
	Size        int64
	MD5         string
	Metadata    map[string]interface{}
}

// RetrieveRequest names a file to read back, optionally restricted to a
// byte range of its content.
type RetrieveRequest struct {
	FileID      string
	StoragePath string
	Offset      int64
	Length      int64
}

// RetrieveResponse carries the bytes read back from a storage backend.
type RetrieveResponse struct {
	Content    []byte
	Size       int64
	Compressed bool
	MD5        string
}

// StorageBackend is the common interface every storage strategy
// (database, object storage, or the auto-selecting wrapper) implements.
type StorageBackend interface {
	Store(ctx context.Context, req *StoreRequest) (*StoreResponse, error)
	Retrieve(ctx context.Context, req *RetrieveRequest) (*RetrieveResponse, error)
	Delete(ctx context.Context, fileID string) error
	GenerateDownloadURL(ctx context.Context, fileID string, expires time.Duration) (string, error)
	GetStorageType() string
	Exists(ctx context.Context, fileID string) (bool, error)
	ExistsByWorkloadAndFilename(ctx context.Context, workloadUID string, fileName string) (bool, error)
}

// DatabaseConfig tunes the Postgres-backed chunked blob storage strategy.
type DatabaseConfig struct {
	Compression         bool
	ChunkSize           int64
	MaxFileSize         int64
	MaxConcurrentChunks int
}

// ObjectStorageConfig configures an S3-compatible object storage backend.
type ObjectStorageConfig struct {
	Type       string
	Endpoint   string
	Bucket     string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Region     string
	URLExpires string
}

// AutoSelectConfig tunes the size-based strategy picked by the "auto"
// StorageConfig.Strategy: files at or above SizeThreshold go to object
// storage, smaller files go to the database backend.
type AutoSelectConfig struct {
	Enabled       bool
	SizeThreshold int64
}

// StorageConfig selects and configures one of the three storage
// strategies a flash-uploaded file's bytes may land in: a fixed
// "database" backend, a fixed "object_storage" backend, or an "auto"
// backend that picks between the two by content size.
type StorageConfig struct {
	Strategy string
	Database *DatabaseConfig
	Object   *ObjectStorageConfig
	Auto     *AutoSelectConfig
}
