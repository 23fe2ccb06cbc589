// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// NewStorageBackend builds the StorageBackend named by cfg.Strategy. db
// is only consulted by the "database" and "auto" strategies.
func NewStorageBackend(db *sql.DB, cfg *StorageConfig) (StorageBackend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is nil")
	}

	switch cfg.Strategy {
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database connection is required")
		}
		dbCfg := cfg.Database
		if dbCfg == nil {
			dbCfg = &DatabaseConfig{}
		}
		return NewDatabaseStorageBackend(db, dbCfg)
	case "object_storage":
		if cfg.Object == nil {
			return nil, fmt.Errorf("object storage config is missing")
		}
		return NewObjectStorageBackend(cfg.Object)
	case "auto":
		if cfg.Auto == nil {
			return nil, fmt.Errorf("auto selection config is missing")
		}
		if !cfg.Auto.Enabled {
			return nil, fmt.Errorf("auto selection config is missing or disabled")
		}
		return NewAutoSelectBackend(db, cfg)
	default:
		return nil, fmt.Errorf("unknown storage strategy: %s", cfg.Strategy)
	}
}

// AutoSelectBackend routes small files to a database backend and large
// files to an object storage backend, falling back to whichever of the
// two is actually configured.
type AutoSelectBackend struct {
	objectBackend   StorageBackend
	databaseBackend StorageBackend
	sizeThreshold   int64
}

// NewAutoSelectBackend builds the database and/or object storage
// backends named by cfg and wraps them behind size-based selection.
func NewAutoSelectBackend(db *sql.DB, cfg *StorageConfig) (*AutoSelectBackend, error) {
	if cfg == nil || cfg.Auto == nil {
		return nil, fmt.Errorf("auto selection config is missing")
	}

	var dbBackend StorageBackend
	if db != nil && cfg.Database != nil {
		b, err := NewDatabaseStorageBackend(db, cfg.Database)
		if err != nil {
			return nil, err
		}
		dbBackend = b
	}

	var objBackend StorageBackend
	if cfg.Object != nil {
		b, err := NewObjectStorageBackend(cfg.Object)
		if err != nil {
			return nil, err
		}
		objBackend = b
	}

	if dbBackend == nil && objBackend == nil {
		return nil, fmt.Errorf("auto select requires at least one of database or object storage to be configured")
	}

	return &AutoSelectBackend{
		objectBackend:   objBackend,
		databaseBackend: dbBackend,
		sizeThreshold:   cfg.Auto.SizeThreshold,
	}, nil
}

func (a *AutoSelectBackend) backends() []StorageBackend {
	return []StorageBackend{a.databaseBackend, a.objectBackend}
}

// selectBackend picks the backend a file of the given size would be
// stored in, preferring database for sizes under the threshold and
// falling back to whichever single backend is configured.
func (a *AutoSelectBackend) selectBackend(size int64) StorageBackend {
	if size >= a.sizeThreshold {
		if a.objectBackend != nil {
			return a.objectBackend
		}
		return a.databaseBackend
	}
	if a.databaseBackend != nil {
		return a.databaseBackend
	}
	return a.objectBackend
}

func (a *AutoSelectBackend) Store(ctx context.Context, req *StoreRequest) (*StoreResponse, error) {
	backend := a.selectBackend(int64(len(req.Content)))
	if backend == nil {
		return nil, fmt.Errorf("no storage backend available")
	}
	return backend.Store(ctx, req)
}

func (a *AutoSelectBackend) Retrieve(ctx context.Context, req *RetrieveRequest) (*RetrieveResponse, error) {
	for _, backend := range a.backends() {
		if backend == nil {
			continue
		}
		if exists, err := backend.Exists(ctx, req.FileID); err == nil && exists {
			return backend.Retrieve(ctx, req)
		}
	}
	return nil, fmt.Errorf("file not found in any backend: %s", req.FileID)
}

func (a *AutoSelectBackend) Delete(ctx context.Context, fileID string) error {
	var lastErr error
	deleted := false
	for _, backend := range a.backends() {
		if backend == nil {
			continue
		}
		exists, err := backend.Exists(ctx, fileID)
		if err != nil {
			lastErr = err
			continue
		}
		if !exists {
			continue
		}
		if err := backend.Delete(ctx, fileID); err != nil {
			return err
		}
		deleted = true
	}
	if !deleted && lastErr != nil {
		return lastErr
	}
	return nil
}

func (a *AutoSelectBackend) GenerateDownloadURL(ctx context.Context, fileID string, expires time.Duration) (string, error) {
	for _, backend := range a.backends() {
		if backend == nil {
			continue
		}
		if exists, err := backend.Exists(ctx, fileID); err == nil && exists {
			return backend.GenerateDownloadURL(ctx, fileID, expires)
		}
	}
	return "", fmt.Errorf("file not found in any backend: %s", fileID)
}

func (a *AutoSelectBackend) GetStorageType() string {
	return "auto"
}

func (a *AutoSelectBackend) Exists(ctx context.Context, fileID string) (bool, error) {
	for _, backend := range a.backends() {
		if backend == nil {
			continue
		}
		exists, err := backend.Exists(ctx, fileID)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}

func (a *AutoSelectBackend) ExistsByWorkloadAndFilename(ctx context.Context, workloadUID string, fileName string) (bool, error) {
	for _, backend := range a.backends() {
		if backend == nil {
			continue
		}
		exists, err := backend.ExistsByWorkloadAndFilename(ctx, workloadUID, fileName)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}
