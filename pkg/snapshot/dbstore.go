// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amd-aig/workflow-engine/pkg/storage"
)

// StoreTypeDatabase identifies the DBStore backend.
const StoreTypeDatabase StoreType = "database"

// ManifestStore is the small leased key/value dependency DBStore uses to
// remember which relative paths were saved under a storage key, since
// storage.StorageBackend addresses files by opaque FileID and has no
// prefix-listing operation of its own. A repository.TextRepository
// satisfies this interface without adaptation.
type ManifestStore interface {
	Put(ctx context.Context, id, value string) error
	Get(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// DBStore adapts a storage.StorageBackend (the database / object-storage
// / auto-select size-based strategies in pkg/storage) into a Store, for
// destinations that don't need S3 or local-filesystem semantics: small
// Text content and dev/test harnesses that would rather not stand up
// MinIO or a scratch directory just to exercise the move-dispatch path.
type DBStore struct {
	backend  storage.StorageBackend
	manifest ManifestStore
}

// NewDBStore builds a DBStore over backend, tracking directory listings
// in manifest.
func NewDBStore(backend storage.StorageBackend, manifest ManifestStore) *DBStore {
	return &DBStore{backend: backend, manifest: manifest}
}

func (d *DBStore) Type() StoreType { return StoreTypeDatabase }

func fileID(storageKey, relPath string) string {
	return storageKey + "/" + relPath
}

func manifestKey(storageKey string) string {
	return "snapshot-manifest/" + storageKey
}

func (d *DBStore) Save(ctx context.Context, storageKey string, files []FileEntry) error {
	paths, err := d.loadManifest(ctx, storageKey)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(paths))
	for _, p := range paths {
		known[p] = true
	}

	for _, f := range files {
		if _, err := d.backend.Store(ctx, &storage.StoreRequest{
			FileID:      fileID(storageKey, f.RelPath),
			WorkloadUID: storageKey,
			FileName:    f.RelPath,
			Content:     f.Content,
		}); err != nil {
			return fmt.Errorf("snapshot: storing %s/%s: %w", storageKey, f.RelPath, err)
		}
		if !known[f.RelPath] {
			paths = append(paths, f.RelPath)
			known[f.RelPath] = true
		}
	}
	return d.saveManifest(ctx, storageKey, paths)
}

func (d *DBStore) Load(ctx context.Context, storageKey string) ([]FileEntry, error) {
	paths, err := d.loadManifest(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	out := make([]FileEntry, 0, len(paths))
	for _, p := range paths {
		content, err := d.LoadFile(ctx, storageKey, p)
		if err != nil {
			return nil, err
		}
		out = append(out, FileEntry{RelPath: p, Content: content, Size: int64(len(content))})
	}
	return out, nil
}

func (d *DBStore) LoadFile(ctx context.Context, storageKey string, relPath string) ([]byte, error) {
	resp, err := d.backend.Retrieve(ctx, &storage.RetrieveRequest{FileID: fileID(storageKey, relPath)})
	if err != nil {
		return nil, fmt.Errorf("snapshot: retrieving %s/%s: %w", storageKey, relPath, err)
	}
	return resp.Content, nil
}

func (d *DBStore) Delete(ctx context.Context, storageKey string) error {
	paths, err := d.loadManifest(ctx, storageKey)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := d.backend.Delete(ctx, fileID(storageKey, p)); err != nil {
			return err
		}
	}
	return d.manifest.Delete(ctx, manifestKey(storageKey))
}

func (d *DBStore) Exists(ctx context.Context, storageKey string) (bool, error) {
	paths, err := d.loadManifest(ctx, storageKey)
	if err != nil {
		return false, err
	}
	return len(paths) > 0, nil
}

// loadManifest returns an empty list rather than an error when no
// manifest has been saved yet for storageKey, matching Store's contract
// that Exists/Load on an unknown key is a normal "nothing here" case.
func (d *DBStore) loadManifest(ctx context.Context, storageKey string) ([]string, error) {
	raw, err := d.manifest.Get(ctx, manifestKey(storageKey))
	if err != nil {
		return nil, nil
	}
	var paths []string
	if raw == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil, fmt.Errorf("snapshot: decoding manifest for %q: %w", storageKey, err)
	}
	return paths, nil
}

func (d *DBStore) saveManifest(ctx context.Context, storageKey string, paths []string) error {
	b, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	return d.manifest.Put(ctx, manifestKey(storageKey), string(b))
}
