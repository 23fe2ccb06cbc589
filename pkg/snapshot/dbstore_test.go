// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amd-aig/workflow-engine/pkg/storage"
)

// stubBackend is an in-memory storage.StorageBackend.
type stubBackend struct {
	byID map[string][]byte
}

func newStubBackend() *stubBackend {
	return &stubBackend{byID: map[string][]byte{}}
}

func (b *stubBackend) Store(_ context.Context, req *storage.StoreRequest) (*storage.StoreResponse, error) {
	b.byID[req.FileID] = req.Content
	return &storage.StoreResponse{FileID: req.FileID, Size: int64(len(req.Content))}, nil
}

func (b *stubBackend) Retrieve(_ context.Context, req *storage.RetrieveRequest) (*storage.RetrieveResponse, error) {
	content, ok := b.byID[req.FileID]
	if !ok {
		return nil, assert.AnError
	}
	return &storage.RetrieveResponse{Content: content, Size: int64(len(content))}, nil
}

func (b *stubBackend) Delete(_ context.Context, fileID string) error {
	delete(b.byID, fileID)
	return nil
}

func (b *stubBackend) GenerateDownloadURL(_ context.Context, fileID string, _ time.Duration) (string, error) {
	return "stub://" + fileID, nil
}

func (b *stubBackend) GetStorageType() string { return "stub" }

func (b *stubBackend) Exists(_ context.Context, fileID string) (bool, error) {
	_, ok := b.byID[fileID]
	return ok, nil
}

func (b *stubBackend) ExistsByWorkloadAndFilename(_ context.Context, _ string, _ string) (bool, error) {
	return false, nil
}

// stubManifest is an in-memory ManifestStore.
type stubManifest struct {
	byID map[string]string
}

func newStubManifest() *stubManifest {
	return &stubManifest{byID: map[string]string{}}
}

func (m *stubManifest) Put(_ context.Context, id, value string) error {
	m.byID[id] = value
	return nil
}

func (m *stubManifest) Get(_ context.Context, id string) (string, error) {
	v, ok := m.byID[id]
	if !ok {
		return "", assert.AnError
	}
	return v, nil
}

func (m *stubManifest) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func TestDBStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewDBStore(newStubBackend(), newStubManifest())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "wl-1/fp-1", []FileEntry{
		{RelPath: "train.py", Content: []byte("print('hi')")},
		{RelPath: "config.yaml", Content: []byte("lr: 0.1")},
	}))

	files, err := store.Load(ctx, "wl-1/fp-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	byPath := map[string][]byte{}
	for _, f := range files {
		byPath[f.RelPath] = f.Content
	}
	assert.Equal(t, []byte("print('hi')"), byPath["train.py"])
	assert.Equal(t, []byte("lr: 0.1"), byPath["config.yaml"])
}

func TestDBStore_LoadFile_Single(t *testing.T) {
	store := NewDBStore(newStubBackend(), newStubManifest())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "wl-2/fp-1", []FileEntry{
		{RelPath: "blob", Content: []byte("the-bytes")},
	}))

	content, err := store.LoadFile(ctx, "wl-2/fp-1", "blob")
	require.NoError(t, err)
	assert.Equal(t, []byte("the-bytes"), content)
}

func TestDBStore_Exists(t *testing.T) {
	store := NewDBStore(newStubBackend(), newStubManifest())
	ctx := context.Background()

	exists, err := store.Exists(ctx, "wl-3/fp-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Save(ctx, "wl-3/fp-1", []FileEntry{{RelPath: "blob", Content: []byte("x")}}))

	exists, err = store.Exists(ctx, "wl-3/fp-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDBStore_Delete_RemovesAllFilesAndManifest(t *testing.T) {
	backend := newStubBackend()
	store := NewDBStore(backend, newStubManifest())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "wl-4/fp-1", []FileEntry{
		{RelPath: "a", Content: []byte("1")},
		{RelPath: "b", Content: []byte("2")},
	}))
	require.NoError(t, store.Delete(ctx, "wl-4/fp-1"))

	exists, err := store.Exists(ctx, "wl-4/fp-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, backend.byID)
}

func TestDBStore_Save_ReSavingSamePathOverwrites(t *testing.T) {
	store := NewDBStore(newStubBackend(), newStubManifest())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "wl-5/fp-1", []FileEntry{{RelPath: "blob", Content: []byte("v1")}}))
	require.NoError(t, store.Save(ctx, "wl-5/fp-1", []FileEntry{{RelPath: "blob", Content: []byte("v2")}}))

	files, err := store.Load(ctx, "wl-5/fp-1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, []byte("v2"), files[0].Content)
}
